package cfd

import (
	"fmt"
	"time"
)

// BuildOccupancy walks every day from the first to the last transition of a
// sequence, inclusive, and counts the item once per day under the status
// active on that day.
func BuildOccupancy(seq Sequence, m *Matrix) error {
	if len(seq.Ordered) == 0 {
		return ErrEmptyItemHistory
	}

	first := seq.First().Date
	last := seq.Last().Date

	var active string
	hasActive := false
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := FormatDay(day)
		if status, ok := seq.ByDate[key]; ok {
			active = status
			hasActive = true
		}
		if !hasActive {
			return fmt.Errorf("%w: %s", ErrUnknownStatusReference, key)
		}
		m.Increment(key, active)
	}
	return nil
}

// ExtendTail keeps counting an item under its last status from the day after
// its last transition through anchor, inclusive. It returns the number of
// days added, which is zero when the history already reaches the anchor.
func ExtendTail(last Transition, anchor time.Time, m *Matrix) int {
	start := Day(last.Date).AddDate(0, 0, 1)
	end := Day(anchor)
	if start.After(end) {
		return 0
	}

	added := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		m.Increment(FormatDay(day), last.Status)
		added++
	}
	return added
}
