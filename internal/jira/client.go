package jira

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the interface for interacting with Jira.
type Client interface {
	// SearchIssues runs a JQL query and returns every matching issue, following pagination.
	SearchIssues(ctx context.Context, jql string, fields []string) ([]IssueDTO, error)
	// Count returns the number of issues matching a JQL query.
	Count(ctx context.Context, jql string) (int, error)
	// GetChangelog returns the full change history of one issue.
	GetChangelog(ctx context.Context, issueKey string) ([]HistoryDTO, error)
}

// Config holds the authentication and connection settings for Jira.
type Config struct {
	BaseURL string

	// Basic authentication (Jira Cloud e-mail + API token)
	Username string
	Token    string

	// Performance Settings
	RequestDelay time.Duration
	Timeout      time.Duration
}

// Validate reports missing connection settings.
func (c Config) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "JIRA_URL")
	}
	if c.Username == "" {
		missing = append(missing, "JIRA_USERNAME")
	}
	if c.Token == "" {
		missing = append(missing, "JIRA_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s not set in environment", strings.Join(missing, ", "))
	}
	return nil
}

// RequestError is returned when Jira rejects a request.
type RequestError struct {
	StatusCode int
	Messages   []string
	JQL        string
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("Jira API returned status %d", e.StatusCode)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	if e.JQL != "" {
		msg += fmt.Sprintf(" (JQL: %s)", e.JQL)
	}
	return msg
}

// NewClient creates a new Jira client based on the provided configuration.
func NewClient(cfg Config) Client {
	return NewCloudClient(cfg)
}
