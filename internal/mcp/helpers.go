package mcp

import (
	"jira-cfd/internal/cfd"
)

// WrapResponse puts a tool payload into the common response envelope.
func WrapResponse(data any, sourceID string, diagnostics map[string]any, warnings []string) map[string]any {
	res := map[string]any{
		"data": data,
	}
	if sourceID != "" {
		res["context"] = map[string]any{"source_id": sourceID}
	}
	if len(diagnostics) > 0 {
		res["diagnostics"] = diagnostics
	}
	if len(warnings) > 0 {
		res["warnings"] = warnings
	}
	return res
}

// tailTable keeps the last n days of a table. n <= 0 keeps everything.
func tailTable(t cfd.Table, n int) cfd.Table {
	if n <= 0 || len(t.Dates) <= n {
		return t
	}
	start := len(t.Dates) - n
	return cfd.Table{
		Dates:    t.Dates[start:],
		Statuses: t.Statuses,
		Counts:   t.Counts[start:],
	}
}
