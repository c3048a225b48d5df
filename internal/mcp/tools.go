package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolNameBuildCFD    = "build_cfd"
	ToolNameItemHistory = "get_item_history"
	ToolNameListSources = "list_sources"
)

var (
	// ErrNoSource is returned when neither a JQL query nor a source ID is given.
	ErrNoSource = errors.New("either jql or source_id is required")
	// ErrNoIssueKey is returned when get_item_history is called without a key.
	ErrNoIssueKey = errors.New("issue_key is required")
)

// BuildCFDInput is the input schema for build_cfd.
type BuildCFDInput struct {
	JQL       string `json:"jql,omitempty"        jsonschema:"JQL query selecting the items; fetched from Jira when not cached"`
	SourceID  string `json:"source_id,omitempty"  jsonschema:"ID of an already cached source (see list_sources)"`
	Anchor    string `json:"anchor,omitempty"     jsonschema:"last day of the diagram as YYYY-MM-DD (default: today)"`
	SkipEmpty bool   `json:"skip_empty,omitempty" jsonschema:"skip items without status history instead of failing"`
	Refresh   bool   `json:"refresh,omitempty"    jsonschema:"fetch the JQL query again even if it is cached"`
	Mermaid   bool   `json:"mermaid,omitempty"    jsonschema:"attach a Mermaid chart of the diagram"`
	LastDays  int    `json:"last_days,omitempty"  jsonschema:"only return the last N days of the table"`
}

// ItemHistoryInput is the input schema for get_item_history.
type ItemHistoryInput struct {
	SourceID string `json:"source_id" jsonschema:"ID of a cached source"`
	IssueKey string `json:"issue_key" jsonschema:"Jira issue key, e.g. SECURITY-42"`
}

// ListSourcesInput is the (empty) input schema for list_sources.
type ListSourcesInput struct{}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

const (
	buildCFDDescription = "Reconstruct the cumulative flow diagram (daily item count per status) for a JQL query or a cached source. " +
		"Counts are forward-carried: each status column keeps its last value on days no item touches it, so it does not drop when an item leaves the status. " +
		"Every item is counted from its first recorded day until the anchor day. " +
		"Returns the dense table {dates, statuses, counts} plus diagnostics for skipped items."

	itemHistoryDescription = "Return the recorded status transitions of one cached item in chronological order."

	listSourcesDescription = "List the cached sources that build_cfd can use without contacting Jira."
)
