package jira

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// StatusChange is one status field change taken from a changelog.
type StatusChange struct {
	FromStatus string
	ToStatus   string
	Time       time.Time
	// Seq is the change's position in chronological changelog order.
	Seq int
}

// CalendarDate returns the YYYY-MM-DD part of a Jira timestamp, as seen in the
// offset Jira reported it in.
func CalendarDate(s string) (string, error) {
	t, err := ParseTime(s)
	if err == nil {
		return t.Format("2006-01-02"), nil
	}
	// Fall back to the raw date prefix for variants like RFC 3339.
	if idx := strings.IndexByte(s, 'T'); idx == 10 {
		if _, perr := time.Parse("2006-01-02", s[:idx]); perr == nil {
			return s[:idx], nil
		}
	}
	return "", fmt.Errorf("unparseable Jira timestamp %q: %w", s, err)
}

// StatusChanges extracts all status changes from a changelog in chronological
// order. Entries with equal timestamps keep Jira's order. Entries with an
// unparseable timestamp are skipped.
func StatusChanges(histories []HistoryDTO) []StatusChange {
	type stamped struct {
		at time.Time
		h  HistoryDTO
	}

	entries := make([]stamped, 0, len(histories))
	for _, h := range histories {
		t, err := ParseTime(h.Created)
		if err != nil {
			continue
		}
		entries = append(entries, stamped{at: t, h: h})
	}
	slices.SortStableFunc(entries, func(a, b stamped) int {
		return a.at.Compare(b.at)
	})

	var changes []StatusChange
	for _, e := range entries {
		for _, itm := range e.h.Items {
			if !strings.EqualFold(itm.Field, "status") {
				continue
			}
			changes = append(changes, StatusChange{
				FromStatus: itm.FromString,
				ToStatus:   itm.ToString,
				Time:       e.at,
				Seq:        len(changes),
			})
		}
	}
	return changes
}
