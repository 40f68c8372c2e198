package dto

import "time"

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TriggerResponse acknowledges a manually published trigger event.
type TriggerResponse struct {
	Stream    string `json:"stream"`
	MessageID string `json:"message_id"`
}

// RunResponse is the API projection of one workflow run.
type RunResponse struct {
	RunID        string     `json:"run_id"`
	Flow         string     `json:"flow"`
	Status       string     `json:"status"`
	Recipients   []string   `json:"recipients,omitempty"`
	Output       string     `json:"output,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
