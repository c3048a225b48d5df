package jira

import "time"

// SearchRequest is the body of POST /rest/api/3/search/jql.
type SearchRequest struct {
	JQL           string   `json:"jql"`
	MaxResults    int      `json:"maxResults"`
	Fields        []string `json:"fields"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// SearchResponse is one page of Jira search results.
type SearchResponse struct {
	Issues        []IssueDTO `json:"issues"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
	IsLast        bool       `json:"isLast,omitempty"`
	ErrorMessages []string   `json:"errorMessages,omitempty"`
}

// IssueDTO represents a single issue in the Jira search response.
type IssueDTO struct {
	ID     string    `json:"id,omitempty"`
	Key    string    `json:"key"`
	Fields FieldsDTO `json:"fields"`
}

// FieldsDTO contains the specific fields we care about.
type FieldsDTO struct {
	Summary   string `json:"summary,omitempty"`
	Created   string `json:"created"`
	IssueType struct {
		Name string `json:"name"`
	} `json:"issuetype"`
	Status struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"status"`
}

// ChangelogPage is one page of GET /rest/api/3/issue/{key}/changelog.
type ChangelogPage struct {
	StartAt       int          `json:"startAt"`
	MaxResults    int          `json:"maxResults"`
	Total         int          `json:"total"`
	IsLast        bool         `json:"isLast"`
	Values        []HistoryDTO `json:"values"`
	ErrorMessages []string     `json:"errorMessages,omitempty"`
}

// HistoryDTO is a single entry in the changelog.
type HistoryDTO struct {
	ID      string    `json:"id,omitempty"`
	Created string    `json:"created"`
	Items   []ItemDTO `json:"items"`
}

// ItemDTO is a single field change within a history entry.
type ItemDTO struct {
	Field      string `json:"field"`
	FieldID    string `json:"fieldId,omitempty"`
	FromString string `json:"fromString"`
	ToString   string `json:"toString"`
	From       string `json:"from"` // ID
	To         string `json:"to"`   // ID
}

// ParseTime is a helper for the strict Jira time format.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000-0700", s)
}
