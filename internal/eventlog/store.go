package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// maxLineSize bounds one JSONL line.
const maxLineSize = 1 << 20

// EventStore provides thread-safe, chronological storage for IssueEvents.
type EventStore struct {
	mu   sync.RWMutex
	logs map[string][]IssueEvent // Partitioned by SourceID
}

// NewEventStore creates a new empty EventStore.
func NewEventStore() *EventStore {
	return &EventStore{
		logs: make(map[string][]IssueEvent),
	}
}

// Append adds new events to the log for a given source, ensuring chronological order and deduplication.
func (s *EventStore) Append(sourceID string, events []IssueEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logData := s.logs[sourceID]

	existing := make(map[string]bool, len(logData))
	for _, e := range logData {
		existing[e.identity()] = true
	}

	newCount := 0
	for _, e := range events {
		id := e.identity()
		if !existing[id] {
			logData = append(logData, e)
			existing[id] = true
			newCount++
		}
	}

	if newCount == 0 {
		if _, ok := s.logs[sourceID]; !ok {
			s.logs[sourceID] = logData
		}
		return
	}

	sortEvents(logData)
	s.logs[sourceID] = logData
}

// Replace discards the source's log and stores events instead.
func (s *EventStore) Replace(sourceID string, events []IssueEvent) {
	s.mu.Lock()
	s.logs[sourceID] = nil
	s.mu.Unlock()

	s.Append(sourceID, events)
}

// Clear removes all events for a source.
func (s *EventStore) Clear(sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sourceID)
}

// Load merges the source's JSONL cache file into the store. A missing file
// is not an error; malformed lines are skipped.
func (s *EventStore) Load(cacheDir string, sourceID string) error {
	file, err := os.Open(cachePath(cacheDir, sourceID))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer file.Close()

	var events []IssueEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for line := 1; scanner.Scan(); line++ {
		var e IssueEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Int("line", line).Msg("Skipping invalid cache line")
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading cache: %w", err)
	}

	s.Append(sourceID, events)
	log.Debug().Str("source", sourceID).Int("count", len(events)).Msg("Loaded events from cache")
	return nil
}

// Save writes the source's events to its JSONL cache file. The file is
// replaced atomically so readers never see a partial log.
func (s *EventStore) Save(cacheDir string, sourceID string) error {
	events := s.GetEvents(sourceID)
	if len(events) == 0 {
		return nil
	}

	tmp, err := os.CreateTemp(cacheDir, sourceID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to encode event %s: %w", e.identity(), err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath(cacheDir, sourceID)); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	committed = true

	log.Info().Str("source", sourceID).Int("count", len(events)).Msg("Events saved to cache")
	return nil
}

// Count returns the number of events in the store for a source.
func (s *EventStore) Count(sourceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[sourceID])
}

// Sources lists the loaded source IDs, sorted.
func (s *EventStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GetEvents returns a copy of all events of a source.
func (s *EventStore) GetEvents(sourceID string) []IssueEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs[sourceID])
}

// GetEventsForIssue returns the full event history for a single issue.
func (s *EventStore) GetEventsForIssue(sourceID string, issueKey string) []IssueEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []IssueEvent
	for _, e := range s.logs[sourceID] {
		if e.IssueKey == issueKey {
			result = append(result, e)
		}
	}
	return result
}

// ListCached returns the source IDs that have a cache file in cacheDir.
func ListCached(cacheDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(cacheDir, "*.jsonl"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(filepath.Base(m), ".jsonl"))
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteCache removes a source's cache file.
func DeleteCache(cacheDir, sourceID string) error {
	err := os.Remove(cachePath(cacheDir, sourceID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cachePath(cacheDir, sourceID string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("%s.jsonl", sourceID))
}

// sortEvents orders by day, then issue key, then sequence.
func sortEvents(events []IssueEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		if events[i].IssueKey != events[j].IssueKey {
			return events[i].IssueKey < events[j].IssueKey
		}
		return events[i].Seq < events[j].Seq
	})
}

// identity computes a unique string identifier for an event to aid deduplication.
func (e IssueEvent) identity() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d",
		e.IssueKey,
		e.Date,
		e.EventType,
		e.Status,
		e.Seq,
	)
}
