package eventlog

// EventType defines the nature of a recorded status change.
type EventType string

const (
	// Created marks the item's creation day and initial status.
	Created EventType = "Created"
	// Transitioned marks the first entry into a tracked status.
	Transitioned EventType = "Transitioned"
)

// IssueEvent represents one transition in an issue's lifecycle.
// It is the primary unit of the persisted log.
type IssueEvent struct {
	// IssueKey is the Jira key (e.g., SECURITY-123).
	IssueKey string `json:"issueKey"`
	// EventType is the type of change being recorded.
	EventType EventType `json:"eventType"`
	// Status is the status entered.
	Status string `json:"status"`
	// Date is the calendar day the status was entered (YYYY-MM-DD).
	Date string `json:"date"`
	// Seq orders the issue's events that share a day.
	Seq int `json:"seq"`
}
