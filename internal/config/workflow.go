package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"jira-cfd/internal/cfd"

	"gopkg.in/yaml.v3"
)

// IncidentStatuses are the statuses of the security incident workflow, in
// process order.
var IncidentStatuses = []string{
	"Triage",
	"Contain/mitigate",
	"Eradicate/remediate",
	"Recovery",
	"Lessons learned",
	"Closed",
}

// Workflow names the statuses that are tracked and their display order.
type Workflow struct {
	// InitialStatus is the column name used for an item's creation day.
	InitialStatus string `yaml:"initial_status"`
	// Statuses are the tracked statuses in process order. Transitions into
	// any other status are ignored. Empty tracks every status.
	Statuses []string `yaml:"statuses"`
}

// DefaultWorkflow returns the security incident workflow.
func DefaultWorkflow() Workflow {
	return Workflow{
		InitialStatus: cfd.InitialStatus,
		Statuses:      slices.Clone(IncidentStatuses),
	}
}

// LoadWorkflow reads a YAML workflow file.
func LoadWorkflow(path string) (Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Workflow{}, fmt.Errorf("failed to read workflow file: %w", err)
	}

	var wf Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return Workflow{}, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}
	if wf.InitialStatus == "" {
		wf.InitialStatus = cfd.InitialStatus
	}
	if err := wf.Validate(); err != nil {
		return Workflow{}, fmt.Errorf("invalid workflow file %s: %w", path, err)
	}
	return wf, nil
}

// Validate rejects blank and duplicate status names.
func (w Workflow) Validate() error {
	seen := map[string]bool{strings.ToLower(w.InitialStatus): true}
	for _, s := range w.Statuses {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("blank status name")
		}
		if seen[strings.ToLower(s)] {
			return fmt.Errorf("duplicate status %q", s)
		}
		seen[strings.ToLower(s)] = true
	}
	return nil
}

// ColumnOrder is the preferred matrix column order: the initial status first,
// then the tracked statuses.
func (w Workflow) ColumnOrder() []string {
	return append([]string{w.InitialStatus}, w.Statuses...)
}
