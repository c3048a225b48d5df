package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/config"
	"jira-cfd/internal/eventlog"

	"github.com/xuri/excelize/v2"
)

func TestBuildCommand_FromInputFile(t *testing.T) {
	dataPath := t.TempDir()
	t.Setenv("DATA_PATH", dataPath)
	t.Setenv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	t.Setenv("JIRA_URL", "")

	input := filepath.Join(dataPath, "incidents.json")
	doc := `{"SEC-1": {"Initial": "2024-01-01", "Triage": "2024-01-03"}, "SEC-2": {}}`
	if err := os.WriteFile(input, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	xlsxPath := filepath.Join(dataPath, "cfd.xlsx")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"build", "--input", input, "--anchor", "2024-01-05", "--skip-empty", "--xlsx", xlsxPath, "--rows", "0"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	csvData, err := os.ReadFile(filepath.Join(dataPath, "output", "incidents.csv"))
	if err != nil {
		t.Fatalf("default CSV missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	if len(lines) != 6 {
		t.Fatalf("Expected header plus 5 days, got %d lines:\n%s", len(lines), csvData)
	}
	if lines[0] != "Date,Initial,Triage" || lines[5] != "2024-01-05,1,1" {
		t.Errorf("Unexpected CSV:\n%s", csvData)
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("workbook missing: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("CFD")
	if err != nil || len(rows) != 6 {
		t.Errorf("Unexpected workbook rows %v, %v", rows, err)
	}

	if !strings.Contains(out.String(), "2024-01-05") {
		t.Errorf("Terminal table missing:\n%s", out.String())
	}
}

func TestLoadBuildItems_OrderedQuerySharesCache(t *testing.T) {
	cacheDir := t.TempDir()
	day, err := cfd.ParseDay("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	seed := eventlog.NewLogProvider(nil, eventlog.NewEventStore(), cacheDir)
	items := []cfd.Item{{Key: "SEC-1", Transitions: []cfd.Transition{{Status: "Initial", Date: day}}}}
	if err := seed.Store(eventlog.SourceID("project = SEC"), items); err != nil {
		t.Fatal(err)
	}

	prevCfg, prevOpts := cfg, buildOpts
	t.Cleanup(func() { cfg, buildOpts = prevCfg, prevOpts })
	cfg = &config.AppConfig{CacheDir: cacheDir, JQL: config.DefaultJQL}
	buildOpts.input, buildOpts.source, buildOpts.refresh = "", "", false
	buildOpts.jql = "project = SEC ORDER BY created DESC"

	got, name, err := loadBuildItems(buildCmd)
	if err != nil {
		t.Fatalf("loadBuildItems failed: %v", err)
	}
	if name != eventlog.SourceID("project = SEC") {
		t.Errorf("Unexpected source %q", name)
	}
	if len(got) != 1 || got[0].Key != "SEC-1" {
		t.Errorf("Expected the cached item, got %+v", got)
	}
}
