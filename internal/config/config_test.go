package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"jira-cfd/internal/cfd"

	"github.com/joho/godotenv"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `JIRA_JQL='project = SECURITY AND issuetype = "Security Incident"'`
	path := filepath.Join(t.TempDir(), ".env.test")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `project = SECURITY AND issuetype = "Security Incident"`
	if env["JIRA_JQL"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["JIRA_JQL"])
	}
}

func TestFromEnv(t *testing.T) {
	dataPath := t.TempDir()
	t.Setenv("DATA_PATH", dataPath)
	t.Setenv("JIRA_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_USERNAME", "bot@example.com")
	t.Setenv("JIRA_TOKEN", "secret")
	t.Setenv("JIRA_REQUEST_DELAY_MS", "250")
	t.Setenv("EMPTY_HISTORY_POLICY", "skip")
	t.Setenv("CHANGELOG_WORKERS", "8")
	t.Setenv("WORKFLOW_FILE", "")

	cfg, err := FromEnv("")
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Jira.RequestDelay != 250*time.Millisecond {
		t.Errorf("RequestDelay = %v", cfg.Jira.RequestDelay)
	}
	if cfg.EmptyHistoryPolicy != cfd.PolicySkip {
		t.Errorf("EmptyHistoryPolicy = %q", cfg.EmptyHistoryPolicy)
	}
	if cfg.ChangelogWorkers != 8 {
		t.Errorf("ChangelogWorkers = %d", cfg.ChangelogWorkers)
	}
	if cfg.CacheDir != filepath.Join(dataPath, "cache") {
		t.Errorf("CacheDir = %s", cfg.CacheDir)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		t.Errorf("Output directory not created: %v", err)
	}
	if !reflect.DeepEqual(cfg.Workflow, DefaultWorkflow()) {
		t.Errorf("Expected default workflow, got %+v", cfg.Workflow)
	}
}

func TestFromEnv_BadPolicy(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("EMPTY_HISTORY_POLICY", "retry")

	if _, err := FromEnv(""); err == nil {
		t.Fatal("Expected an error for an unknown policy")
	}
}

func TestLoadWorkflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	content := "statuses:\n  - To Do\n  - In Progress\n  - Done\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	wf, err := LoadWorkflow(path)
	if err != nil {
		t.Fatalf("LoadWorkflow failed: %v", err)
	}
	if wf.InitialStatus != cfd.InitialStatus {
		t.Errorf("InitialStatus = %q, want default", wf.InitialStatus)
	}
	want := []string{"Initial", "To Do", "In Progress", "Done"}
	if got := wf.ColumnOrder(); !reflect.DeepEqual(got, want) {
		t.Errorf("ColumnOrder = %v, want %v", got, want)
	}
}

func TestLoadWorkflow_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	content := "initial_status: Created\nstatuses: [Open, open]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWorkflow(path); err == nil {
		t.Fatal("Expected duplicate statuses to be rejected")
	}
}
