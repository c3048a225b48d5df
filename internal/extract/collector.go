// Package extract turns Jira issues and their changelogs into status
// histories the occupancy reconstruction can consume.
package extract

import (
	"context"
	"fmt"
	"strings"

	"jira-cfd/internal/cfd"
	"jira-cfd/internal/jira"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Options selects which statuses become transitions.
type Options struct {
	// InitialStatus names the synthetic creation transition.
	InitialStatus string
	// Statuses are the tracked statuses; empty tracks every status.
	Statuses []string
	// Workers bounds concurrent changelog requests.
	Workers int
}

// Collector fetches items for a JQL query.
type Collector struct {
	client    jira.Client
	opts      Options
	supported map[string]string
}

// NewCollector creates a collector. Status matching is case-insensitive and
// transitions carry the configured spelling.
func NewCollector(client jira.Client, opts Options) *Collector {
	if opts.InitialStatus == "" {
		opts.InitialStatus = cfd.InitialStatus
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	var supported map[string]string
	if len(opts.Statuses) > 0 {
		supported = make(map[string]string, len(opts.Statuses))
		for _, s := range opts.Statuses {
			supported[strings.ToLower(s)] = s
		}
	}
	return &Collector{client: client, opts: opts, supported: supported}
}

// Collect searches issues and builds one item per issue, in search order.
func (c *Collector) Collect(ctx context.Context, jql string) ([]cfd.Item, error) {
	log.Info().Str("jql", jql).Msg("Collecting status histories")

	issues, err := c.client.SearchIssues(ctx, jql, []string{"key", "summary", "created"})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	log.Info().Int("issues", len(issues)).Msg("Found issues")

	items := make([]cfd.Item, len(issues))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)

	for i, issue := range issues {
		g.Go(func() error {
			log.Debug().Str("issue", issue.Key).Msg("Processing issue")

			histories, err := c.client.GetChangelog(gctx, issue.Key)
			if err != nil {
				return err
			}
			item, err := c.BuildItem(issue, histories)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// BuildItem derives one item's transitions: the initial status on the
// creation day, then the first entry into every tracked status. Seq follows
// changelog order so same-day transitions keep Jira's sequence.
func (c *Collector) BuildItem(issue jira.IssueDTO, histories []jira.HistoryDTO) (cfd.Item, error) {
	item := cfd.Item{Key: issue.Key}

	created, err := jira.CalendarDate(issue.Fields.Created)
	if err != nil {
		return item, fmt.Errorf("issue %s: %w", issue.Key, err)
	}
	createdDay, err := cfd.ParseDay(created)
	if err != nil {
		return item, fmt.Errorf("issue %s: %w", issue.Key, err)
	}
	item.Transitions = append(item.Transitions, cfd.Transition{
		Status: c.opts.InitialStatus,
		Date:   createdDay,
		Seq:    0,
	})

	seen := make(map[string]bool)
	for _, change := range jira.StatusChanges(histories) {
		status, ok := c.track(change.ToStatus)
		if !ok || seen[status] {
			continue
		}
		seen[status] = true

		log.Trace().Str("issue", issue.Key).Str("from", change.FromStatus).Str("to", change.ToStatus).Time("at", change.Time).Msg("Status change")

		item.Transitions = append(item.Transitions, cfd.Transition{
			Status: status,
			Date:   cfd.Day(change.Time),
			Seq:    change.Seq + 1,
		})
	}

	log.Debug().Str("issue", issue.Key).Int("transitions", len(item.Transitions)).Msg("Built item history")
	return item, nil
}

// track reports whether status is tracked and returns its configured spelling.
func (c *Collector) track(status string) (string, bool) {
	if c.supported == nil {
		return status, status != ""
	}
	s, ok := c.supported[strings.ToLower(status)]
	return s, ok
}
