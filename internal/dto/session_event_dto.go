package dto

import "time"

const (
	SessionEventCreated = "session.created"
	SessionEventDeleted = "session.deleted"

	SessionDeleteReasonExplicit = "explicit"
	SessionDeleteReasonExpired  = "expired"
)

// SessionEventMessage is the lifecycle event payload published on the
// session events topic and consumed by the audit service.
type SessionEventMessage struct {
	Event      string    `json:"event"`
	SessionId  string    `json:"session_id"`
	Reason     string    `json:"reason,omitempty"`
	SweepRunId string    `json:"sweep_run_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
