package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/jira"
)

type fakeClient struct {
	mu         sync.Mutex
	issues     []jira.IssueDTO
	changelogs map[string][]jira.HistoryDTO
	failKey    string
	calls      int
}

func (f *fakeClient) SearchIssues(_ context.Context, _ string, _ []string) ([]jira.IssueDTO, error) {
	return f.issues, nil
}

func (f *fakeClient) Count(_ context.Context, _ string) (int, error) {
	return len(f.issues), nil
}

func (f *fakeClient) GetChangelog(_ context.Context, key string) ([]jira.HistoryDTO, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if key == f.failKey {
		return nil, errors.New("boom")
	}
	return f.changelogs[key], nil
}

func issue(key, created string) jira.IssueDTO {
	dto := jira.IssueDTO{Key: key}
	dto.Fields.Created = created
	return dto
}

func statusHistory(created, from, to string) jira.HistoryDTO {
	return jira.HistoryDTO{
		Created: created,
		Items:   []jira.ItemDTO{{Field: "status", FromString: from, ToString: to}},
	}
}

func TestCollector_Collect(t *testing.T) {
	client := &fakeClient{
		issues: []jira.IssueDTO{
			issue("SEC-1", "2024-01-01T08:00:00.000+0000"),
			issue("SEC-2", "2024-01-02T08:00:00.000+0000"),
		},
		changelogs: map[string][]jira.HistoryDTO{
			"SEC-1": {
				statusHistory("2024-01-03T08:00:00.000+0000", "Open", "Triage"),
				statusHistory("2024-01-04T08:00:00.000+0000", "Triage", "Waiting"),
				statusHistory("2024-01-05T08:00:00.000+0000", "Waiting", "Triage"),
				statusHistory("2024-01-06T08:00:00.000+0000", "Triage", "closed"),
			},
		},
	}

	c := NewCollector(client, Options{Statuses: []string{"Triage", "Closed"}, Workers: 2})
	items, err := c.Collect(context.Background(), "project = SEC")
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(items) != 2 || items[0].Key != "SEC-1" || items[1].Key != "SEC-2" {
		t.Fatalf("Expected items in search order, got %+v", items)
	}

	got := items[0].Transitions
	want := []struct {
		status string
		date   string
	}{
		{cfd.InitialStatus, "2024-01-01"},
		{"Triage", "2024-01-03"}, // first entry is kept, the re-entry on 01-05 is not
		{"Closed", "2024-01-06"}, // configured spelling wins
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d transitions, got %+v", len(want), got)
	}
	for i, w := range want {
		if got[i].Status != w.status || cfd.FormatDay(got[i].Date) != w.date {
			t.Errorf("transition %d = %s@%s, want %s@%s", i, got[i].Status, cfd.FormatDay(got[i].Date), w.status, w.date)
		}
	}
	if got[1].Seq >= got[2].Seq || got[0].Seq != 0 {
		t.Errorf("Seq must follow changelog order: %+v", got)
	}

	if len(items[1].Transitions) != 1 {
		t.Errorf("Issue without changelog should only carry its initial status, got %+v", items[1].Transitions)
	}
}

func TestCollector_CollectPropagatesErrors(t *testing.T) {
	client := &fakeClient{
		issues:  []jira.IssueDTO{issue("SEC-1", "2024-01-01T08:00:00.000+0000")},
		failKey: "SEC-1",
	}

	_, err := NewCollector(client, Options{}).Collect(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected changelog error to abort collection")
	}
}

func TestCollector_BuildItemBadCreated(t *testing.T) {
	c := NewCollector(&fakeClient{}, Options{})
	if _, err := c.BuildItem(issue("SEC-9", "soon"), nil); err == nil {
		t.Fatal("Expected an error for an unparseable creation date")
	}
}

func TestCollector_TracksEverythingWithoutStatusList(t *testing.T) {
	c := NewCollector(&fakeClient{}, Options{InitialStatus: "Created"})
	item, err := c.BuildItem(issue("SEC-1", "2024-01-01T08:00:00.000+0000"), []jira.HistoryDTO{
		statusHistory("2024-01-01T09:00:00.000+0000", "Open", "In Progress"),
	})
	if err != nil {
		t.Fatalf("BuildItem failed: %v", err)
	}
	if len(item.Transitions) != 2 || item.Transitions[0].Status != "Created" || item.Transitions[1].Status != "In Progress" {
		t.Errorf("Unexpected transitions %+v", item.Transitions)
	}
}

func TestLoadItemsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	content := `{"SEC-1": {"Initial": "2024-01-01", "Triage": "2024-01-03"}, "SEC-2": {}}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	items, err := LoadItemsFile(path)
	if err != nil {
		t.Fatalf("LoadItemsFile failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if len(items[1].Transitions) != 0 {
		t.Errorf("Empty mappings must be kept for the empty history policy, got %+v", items[1])
	}
}

func TestParseItems_RejectsBadShape(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not an object", `[1, 2]`},
		{"status not an object", `{"SEC-1": "2024-01-01"}`},
		{"date not a string", `{"SEC-1": {"Initial": 20240101}}`},
		{"date wrong format", `{"SEC-1": {"Initial": "01/01/2024"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseItems([]byte(tt.doc)); err == nil {
				t.Errorf("Expected %s to be rejected", tt.doc)
			}
		})
	}
}
