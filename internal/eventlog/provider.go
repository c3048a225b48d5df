package eventlog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"jira-cfd/internal/cfd"

	"github.com/rs/zerolog/log"
)

// Collector fetches item histories for a JQL query.
type Collector interface {
	Collect(ctx context.Context, jql string) ([]cfd.Item, error)
}

// LogProvider orchestrates data ingestion and event retrieval.
type LogProvider struct {
	collector Collector
	store     *EventStore
	cacheDir  string

	mu     sync.Mutex
	loaded map[string]bool
}

func NewLogProvider(collector Collector, store *EventStore, cacheDir string) *LogProvider {
	return &LogProvider{
		collector: collector,
		store:     store,
		cacheDir:  cacheDir,
		loaded:    make(map[string]bool),
	}
}

// NormalizeJQL trims a query and drops its ORDER BY clause, which does not
// change the matched issues.
func NormalizeJQL(jql string) string {
	jql = strings.TrimSpace(jql)
	if idx := strings.Index(strings.ToLower(jql), " order by"); idx != -1 {
		jql = strings.TrimSpace(jql[:idx])
	}
	return jql
}

// SourceID derives a stable cache identifier for an ad hoc JQL query.
// Queries differing only in ordering share one ID.
func SourceID(jql string) string {
	sum := sha256.Sum256([]byte(NormalizeJQL(jql)))
	return "jql-" + hex.EncodeToString(sum[:])[:12]
}

// Hydrate collects the query's current histories, replaces the source's log
// with them and persists it. It returns the number of events stored.
func (p *LogProvider) Hydrate(ctx context.Context, sourceID string, jql string) (int, error) {
	if p.collector == nil {
		return 0, fmt.Errorf("no collector configured for source %s", sourceID)
	}

	log.Info().Str("source", sourceID).Msg("Starting hydration process")

	items, err := p.collector.Collect(ctx, jql)
	if err != nil {
		return 0, fmt.Errorf("hydration of %s failed: %w", sourceID, err)
	}

	if err := p.Store(sourceID, items); err != nil {
		return 0, err
	}

	count := p.store.Count(sourceID)
	log.Info().Str("source", sourceID).Int("items", len(items)).Int("events", count).Msg("Hydration complete")
	return count, nil
}

// Store replaces a source's log with the given items and saves it. An empty
// run forgets the source in memory and on disk.
func (p *LogProvider) Store(sourceID string, items []cfd.Item) error {
	events := FromItems(items)
	if len(events) == 0 {
		p.store.Clear(sourceID)
		p.forget(sourceID)
		if p.cacheDir == "" {
			return nil
		}
		return DeleteCache(p.cacheDir, sourceID)
	}

	p.store.Replace(sourceID, events)
	p.markLoaded(sourceID)

	if p.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	if err := p.store.Save(p.cacheDir, sourceID); err != nil {
		return err
	}
	return nil
}

// Items returns the source's items, reading the cache file on first use.
func (p *LogProvider) Items(sourceID string) ([]cfd.Item, error) {
	if err := p.ensureLoaded(sourceID); err != nil {
		return nil, err
	}
	return BuildItems(p.store.GetEvents(sourceID))
}

// History returns one issue's events in chronological order.
func (p *LogProvider) History(sourceID, issueKey string) ([]IssueEvent, error) {
	if err := p.ensureLoaded(sourceID); err != nil {
		return nil, err
	}
	return p.store.GetEventsForIssue(sourceID, issueKey), nil
}

// Sources lists sources available in memory or in the cache directory.
func (p *LogProvider) Sources() ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range p.store.Sources() {
		seen[id] = true
		ids = append(ids, id)
	}
	if p.cacheDir != "" {
		cached, err := ListCached(p.cacheDir)
		if err != nil {
			return nil, err
		}
		for _, id := range cached {
			if !seen[id] {
				ids = append(ids, id)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of events held for a source.
func (p *LogProvider) Count(sourceID string) int {
	return p.store.Count(sourceID)
}

func (p *LogProvider) ensureLoaded(sourceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded[sourceID] {
		return nil
	}
	if p.cacheDir != "" {
		if err := p.store.Load(p.cacheDir, sourceID); err != nil {
			return err
		}
	}
	if p.store.Count(sourceID) == 0 {
		return fmt.Errorf("no cached history for source %s", sourceID)
	}
	p.loaded[sourceID] = true
	return nil
}

func (p *LogProvider) markLoaded(sourceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded[sourceID] = true
}

func (p *LogProvider) forget(sourceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.loaded, sourceID)
}
