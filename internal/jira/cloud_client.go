package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// searchPageSize is the maxResults sent with every search page.
	searchPageSize = 200
	// changelogPageSize is the maxResults sent with every changelog page.
	changelogPageSize = 100
	changelogTTL      = 10 * time.Minute
)

type cloudClient struct {
	cfg        Config
	httpClient *http.Client

	throttleMutex sync.Mutex
	lastRequest   time.Time

	// Session Cache
	cache      map[string]*cacheEntry
	cacheMutex sync.Mutex
}

type cacheEntry struct {
	Value      []HistoryDTO
	Expiration time.Time
}

// NewCloudClient creates a client for the Jira Cloud REST API v3.
func NewCloudClient(cfg Config) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &cloudClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache: make(map[string]*cacheEntry),
	}
}

func (c *cloudClient) getFromCache(key string) ([]HistoryDTO, bool) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		log.Trace().Str("key", key).Msg("Cache miss")
		return nil, false
	}
	if time.Now().After(entry.Expiration) {
		delete(c.cache, key)
		return nil, false
	}
	log.Trace().Str("key", key).Msg("Cache hit")
	return entry.Value, true
}

func (c *cloudClient) addToCache(key string, value []HistoryDTO, ttl time.Duration) {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	c.cache[key] = &cacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}
}

// throttle spaces requests at least RequestDelay apart across all goroutines.
func (c *cloudClient) throttle(ctx context.Context) error {
	c.throttleMutex.Lock()
	defer c.throttleMutex.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.cfg.RequestDelay {
		wait := c.cfg.RequestDelay - elapsed
		log.Debug().Dur("wait", wait).Msg("Throttling Jira request")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastRequest = time.Now()
	return nil
}

// do sends one request and decodes a 200 response into out.
func (c *cloudClient) do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		reqErr := &RequestError{StatusCode: resp.StatusCode}
		var payload struct {
			ErrorMessages []string `json:"errorMessages"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			reqErr.Messages = payload.ErrorMessages
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			reqErr.Messages = append(reqErr.Messages, "authentication failed, check JIRA_USERNAME and JIRA_TOKEN")
		case http.StatusTooManyRequests:
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				reqErr.Messages = append(reqErr.Messages, fmt.Sprintf("rate limit exceeded, retry after %s seconds", retryAfter))
			}
		}
		return reqErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Jira response: %w", err)
	}
	return nil
}

func (c *cloudClient) SearchIssues(ctx context.Context, jql string, fields []string) ([]IssueDTO, error) {
	if len(fields) == 0 {
		fields = []string{"*all"}
	}

	log.Info().Str("jql", jql).Msg("Requesting issues from Jira")

	var issues []IssueDTO
	token := ""
	for page := 1; ; page++ {
		reqBody := SearchRequest{
			JQL:           jql,
			MaxResults:    searchPageSize,
			Fields:        fields,
			NextPageToken: token,
		}

		var resp SearchResponse
		if err := c.do(ctx, http.MethodPost, "/rest/api/3/search/jql", reqBody, &resp); err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				reqErr.JQL = jql
			}
			return nil, err
		}
		if len(resp.ErrorMessages) > 0 {
			return nil, &RequestError{StatusCode: http.StatusOK, Messages: resp.ErrorMessages, JQL: jql}
		}

		issues = append(issues, resp.Issues...)
		log.Debug().Int("page", page).Int("issues", len(resp.Issues)).Msg("Jira search page received")

		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}

	log.Info().Int("count", len(issues)).Msg("Found issues")
	return issues, nil
}

func (c *cloudClient) Count(ctx context.Context, jql string) (int, error) {
	issues, err := c.SearchIssues(ctx, jql, []string{"key"})
	if err != nil {
		return 0, err
	}
	return len(issues), nil
}

func (c *cloudClient) GetChangelog(ctx context.Context, issueKey string) ([]HistoryDTO, error) {
	cacheKey := "changelog:" + issueKey
	if val, ok := c.getFromCache(cacheKey); ok {
		return val, nil
	}

	var histories []HistoryDTO
	startAt := 0
	for {
		params := url.Values{}
		params.Set("startAt", fmt.Sprintf("%d", startAt))
		params.Set("maxResults", fmt.Sprintf("%d", changelogPageSize))
		path := fmt.Sprintf("/rest/api/3/issue/%s/changelog?%s", url.PathEscape(issueKey), params.Encode())

		var page ChangelogPage
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("changelog for %s: %w", issueKey, err)
		}

		histories = append(histories, page.Values...)
		startAt += len(page.Values)

		if page.IsLast || len(page.Values) == 0 || (page.Total > 0 && startAt >= page.Total) {
			break
		}
	}

	log.Debug().Str("issue", issueKey).Int("histories", len(histories)).Msg("Changelog received")
	c.addToCache(cacheKey, histories, changelogTTL)
	return histories, nil
}
