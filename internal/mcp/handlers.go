package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/eventlog"
	"jira-cfd/internal/visuals"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

type cfdResponse struct {
	Anchor string    `json:"anchor"`
	Items  int       `json:"items"`
	Table  cfd.Table `json:"table"`
	Chart  string    `json:"chart,omitempty"`
}

type historyEntry struct {
	Status string `json:"status"`
	Date   string `json:"date"`
	Seq    int    `json:"seq"`
	Kind   string `json:"kind"`
}

type sourceEntry struct {
	SourceID string `json:"source_id"`
	Events   int    `json:"events,omitempty"`
}

func (s *Server) handleBuildCFD(ctx context.Context, _ *mcpsdk.CallToolRequest, in BuildCFDInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Provider == nil {
		return errorResult(errors.New("no history provider configured"))
	}

	jql := eventlog.NormalizeJQL(in.JQL)
	sourceID := strings.TrimSpace(in.SourceID)
	if sourceID == "" && jql == "" {
		return errorResult(ErrNoSource)
	}
	if sourceID == "" {
		sourceID = eventlog.SourceID(jql)
	}

	anchor := cfd.Day(s.now())
	if in.Anchor != "" {
		day, err := cfd.ParseDay(in.Anchor)
		if err != nil {
			return errorResult(fmt.Errorf("anchor: %w", err))
		}
		anchor = day
	}

	policy := s.deps.EmptyHistory
	if in.SkipEmpty {
		policy = cfd.PolicySkip
	}

	items, fetched, err := s.loadItems(ctx, sourceID, jql, in.Refresh)
	if err != nil {
		return errorResult(err)
	}

	res, err := cfd.Reconstruct(items, cfd.Options{Anchor: anchor, EmptyHistory: policy})
	if err != nil {
		return errorResult(err)
	}

	table := tailTable(res.Table(s.deps.Workflow.ColumnOrder()), in.LastDays)
	out := cfdResponse{
		Anchor: cfd.FormatDay(res.Anchor),
		Items:  res.Items,
		Table:  table,
	}
	if in.Mermaid || s.deps.Mermaid {
		out.Chart = visuals.GenerateCFDChart(table)
	}

	diagnostics := map[string]any{"fetched_from_jira": fetched}
	var warnings []string
	if len(res.Diagnostics) > 0 {
		diagnostics["skipped"] = res.Diagnostics
		warnings = append(warnings, fmt.Sprintf("%d items without status history were left out", len(res.Diagnostics)))
	}

	return jsonResult(WrapResponse(out, sourceID, diagnostics, warnings))
}

// loadItems serves a source from the cache, hydrating it from Jira when
// asked to or when nothing is cached yet and a query is known.
func (s *Server) loadItems(ctx context.Context, sourceID, jql string, refresh bool) ([]cfd.Item, bool, error) {
	p := s.deps.Provider

	if !refresh {
		items, err := p.Items(sourceID)
		if err == nil {
			return items, false, nil
		}
		if jql == "" {
			return nil, false, err
		}
		log.Debug().Err(err).Str("source", sourceID).Msg("Source not cached, hydrating")
	} else if jql == "" {
		return nil, false, fmt.Errorf("refresh of %s requires its jql", sourceID)
	}

	if _, err := p.Hydrate(ctx, sourceID, jql); err != nil {
		return nil, false, err
	}
	items, err := p.Items(sourceID)
	return items, true, err
}

func (s *Server) handleItemHistory(_ context.Context, _ *mcpsdk.CallToolRequest, in ItemHistoryInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Provider == nil {
		return errorResult(errors.New("no history provider configured"))
	}
	if in.SourceID == "" {
		return errorResult(ErrNoSource)
	}
	if in.IssueKey == "" {
		return errorResult(ErrNoIssueKey)
	}

	events, err := s.deps.Provider.History(in.SourceID, in.IssueKey)
	if err != nil {
		return errorResult(err)
	}
	if len(events) == 0 {
		return errorResult(fmt.Errorf("item %s not found in source %s", in.IssueKey, in.SourceID))
	}

	entries := make([]historyEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, historyEntry{
			Status: e.Status,
			Date:   e.Date,
			Seq:    e.Seq,
			Kind:   string(e.EventType),
		})
	}

	data := map[string]any{
		"issue_key":   in.IssueKey,
		"transitions": entries,
	}
	return jsonResult(WrapResponse(data, in.SourceID, nil, nil))
}

func (s *Server) handleListSources(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListSourcesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if s.deps.Provider == nil {
		return errorResult(errors.New("no history provider configured"))
	}

	ids, err := s.deps.Provider.Sources()
	if err != nil {
		return errorResult(err)
	}

	sources := make([]sourceEntry, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, sourceEntry{SourceID: id, Events: s.deps.Provider.Count(id)})
	}

	data := map[string]any{
		"sources":      sources,
		"generated_at": s.now().Format(time.RFC3339),
	}
	return jsonResult(WrapResponse(data, "", nil, nil))
}
