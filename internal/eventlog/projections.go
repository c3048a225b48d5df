package eventlog

import (
	"fmt"
	"sort"

	"jira-cfd/internal/cfd"
)

// FromItems flattens items into log events. The first transition of each
// item is recorded as its creation event.
func FromItems(items []cfd.Item) []IssueEvent {
	var events []IssueEvent
	for _, item := range items {
		for i, tr := range item.Transitions {
			eventType := Transitioned
			if i == 0 {
				eventType = Created
			}
			events = append(events, IssueEvent{
				IssueKey:  item.Key,
				EventType: eventType,
				Status:    tr.Status,
				Date:      cfd.FormatDay(tr.Date),
				Seq:       tr.Seq,
			})
		}
	}
	return events
}

// BuildItems reconstructs items from a log, sorted by key with transitions in
// (date, seq) order.
func BuildItems(events []IssueEvent) ([]cfd.Item, error) {
	byKey := make(map[string][]cfd.Transition)
	for _, e := range events {
		day, err := cfd.ParseDay(e.Date)
		if err != nil {
			return nil, fmt.Errorf("event for %s: %w", e.IssueKey, err)
		}
		byKey[e.IssueKey] = append(byKey[e.IssueKey], cfd.Transition{
			Status: e.Status,
			Date:   day,
			Seq:    e.Seq,
		})
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]cfd.Item, 0, len(keys))
	for _, k := range keys {
		trs := byKey[k]
		sort.SliceStable(trs, func(i, j int) bool {
			if !trs[i].Date.Equal(trs[j].Date) {
				return trs[i].Date.Before(trs[j].Date)
			}
			return trs[i].Seq < trs[j].Seq
		})
		items = append(items, cfd.Item{Key: k, Transitions: trs})
	}
	return items, nil
}
