package cfd

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// InitialStatus is the synthetic status every item holds from its creation date.
const InitialStatus = "Initial"

// DateLayout is the calendar-day format used for matrix rows and all date strings.
const DateLayout = "2006-01-02"

var (
	// ErrEmptyItemHistory is returned when an item carries no transitions at all,
	// so no lifetime (first and last day) can be derived for it.
	ErrEmptyItemHistory = errors.New("item has no status history")
	// ErrUnknownStatusReference signals that the occupancy walk reached a day
	// without an active status. This cannot happen for a well-formed sequence.
	ErrUnknownStatusReference = errors.New("no active status on walked day")
	// ErrMalformedDate is returned when a date string is not YYYY-MM-DD.
	ErrMalformedDate = errors.New("malformed date")
)

// Transition marks the calendar day an item first reached a status.
type Transition struct {
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
	// Seq orders transitions sharing the same day (lower happened first).
	Seq int `json:"seq"`
}

// Item is a tracked unit of work with its status history.
type Item struct {
	Key         string       `json:"key"`
	Transitions []Transition `json:"transitions"`
}

// Day truncates t to its calendar day (as seen in t's own location) and
// returns that day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return t, nil
}

// FormatDay renders a calendar day as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// ItemsFromDateMap converts the {key -> {status -> YYYY-MM-DD}} shape into
// items. Because the source mapping is unordered, transitions sharing a day
// are sequenced deterministically: Initial first, then by status name.
// Items are returned sorted by key.
func ItemsFromDateMap(raw map[string]map[string]string) ([]Item, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		statuses := raw[key]
		transitions := make([]Transition, 0, len(statuses))
		for status, date := range statuses {
			day, err := ParseDay(date)
			if err != nil {
				return nil, fmt.Errorf("item %s, status %q: %w", key, status, err)
			}
			transitions = append(transitions, Transition{Status: status, Date: day})
		}

		slices.SortFunc(transitions, func(a, b Transition) int {
			if c := a.Date.Compare(b.Date); c != 0 {
				return c
			}
			if a.Status == InitialStatus {
				return -1
			}
			if b.Status == InitialStatus {
				return 1
			}
			if a.Status < b.Status {
				return -1
			}
			if a.Status > b.Status {
				return 1
			}
			return 0
		})
		for i := range transitions {
			transitions[i].Seq = i
		}

		items = append(items, Item{Key: key, Transitions: transitions})
	}
	return items, nil
}
