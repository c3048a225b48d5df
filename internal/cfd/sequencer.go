package cfd

import (
	"fmt"
	"slices"
)

// Sequence is one item's history in walk order.
type Sequence struct {
	// Ordered holds the transitions ascending by day, then by Seq.
	Ordered []Transition
	// ByDate maps a YYYY-MM-DD day to the status active at its end.
	// When several transitions share a day, the last one in Ordered wins.
	ByDate map[string]string
}

// First returns the earliest transition.
func (s Sequence) First() Transition {
	return s.Ordered[0]
}

// Last returns the latest transition.
func (s Sequence) Last() Transition {
	return s.Ordered[len(s.Ordered)-1]
}

// SequenceItem orders an item's transitions chronologically and builds the
// reverse day lookup. The item itself is not modified.
func SequenceItem(item Item) (Sequence, error) {
	if len(item.Transitions) == 0 {
		return Sequence{}, fmt.Errorf("%s: %w", item.Key, ErrEmptyItemHistory)
	}

	ordered := make([]Transition, len(item.Transitions))
	for i, tr := range item.Transitions {
		tr.Date = Day(tr.Date)
		ordered[i] = tr
	}
	slices.SortStableFunc(ordered, func(a, b Transition) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Seq - b.Seq
	})

	byDate := make(map[string]string, len(ordered))
	for _, tr := range ordered {
		byDate[FormatDay(tr.Date)] = tr.Status
	}

	return Sequence{Ordered: ordered, ByDate: byDate}, nil
}
