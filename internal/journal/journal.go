package journal

import "time"

// Outcome is the result of a save attempt.
type Outcome string

const (
	OutcomeSaved  Outcome = "saved"
	OutcomeFailed Outcome = "failed"
)

// Entry is one recorded save attempt.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	Project   string    `json:"project"`
	File      string    `json:"file"`
	Bytes     int       `json:"bytes"`
	Outcome   Outcome   `json:"outcome"`
	Message   string    `json:"message,omitempty"`
}
