package models

import "time"

// Event types
const (
	EventTypeQuestionAsked    = "QUESTION_ASKED"
	EventTypeQuestionAnswered = "QUESTION_ANSWERED"
	EventTypePeriodSelected   = "PERIOD_SELECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// Kind returns the event type
func (e BaseEvent) Kind() string {
	return e.EventType
}

// QuestionAskedEvent is consumed by the question worker
type QuestionAskedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

// QuestionAnsweredEvent published after every answered question
type QuestionAnsweredEvent struct {
	BaseEvent
	SessionID   string    `json:"session_id"`
	Question    string    `json:"question"`
	Intent      string    `json:"intent"`
	Answer      string    `json:"answer"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	RecordCount int       `json:"record_count"`
}

// PeriodSelectedEvent published when a session changes its analysis period
type PeriodSelectedEvent struct {
	BaseEvent
	SessionID   string    `json:"session_id"`
	Mode        string    `json:"mode"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}
