package entity

import (
	"time"
)

// Session is one persisted analysis run, addressed by its id.
// Immutable after creation: re-analysis always produces a new session.
type Session struct {
	Id        string
	CreatedAt time.Time
	Artifact  *Artifact
}
