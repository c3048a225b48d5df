package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"jira-cfd/internal/jira"
)

func TestCountCommand(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/3/search/jql" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body jira.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		queries = append(queries, body.JQL)

		resp := jira.SearchResponse{}
		if body.NextPageToken == "" {
			for i := 0; i < 1000; i++ {
				resp.Issues = append(resp.Issues, jira.IssueDTO{Key: fmt.Sprintf("SEC-%d", i)})
			}
			resp.NextPageToken = "next"
		} else {
			resp.Issues = []jira.IssueDTO{{Key: "SEC-1000"}, {Key: "SEC-1001"}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	dataPath := t.TempDir()
	t.Setenv("DATA_PATH", dataPath)
	t.Setenv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	t.Setenv("JIRA_URL", srv.URL)
	t.Setenv("JIRA_USERNAME", "bot@example.com")
	t.Setenv("JIRA_TOKEN", "secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"count", "--jql", "project = SEC ORDER BY created DESC"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("count failed: %v", err)
	}

	if !strings.HasPrefix(out.String(), "1,002 issues match \"project = SEC\"") {
		t.Errorf("Unexpected output %q", out.String())
	}
	for _, q := range queries {
		if q != "project = SEC" {
			t.Errorf("Query sent with ordering: %q", q)
		}
	}
}

func TestCountCommand_RequiresJira(t *testing.T) {
	dataPath := t.TempDir()
	t.Setenv("DATA_PATH", dataPath)
	t.Setenv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	t.Setenv("JIRA_URL", "")

	rootCmd.SetArgs([]string{"count", "--jql", "project = SEC"})
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "JIRA_URL") {
		t.Errorf("Expected missing settings error, got %v", err)
	}
}
