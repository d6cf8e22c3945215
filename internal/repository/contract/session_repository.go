package contract

import (
	"context"
	"errors"
	"time"

	"archive-session-store/internal/entity"
)

var (
	// ErrInvalidSessionId rejects a caller-supplied id that fails the shape
	// check. Resolved before any storage access.
	ErrInvalidSessionId = errors.New("invalid session id")

	// ErrSessionNotFound marks a well-formed id with no stored entry
	// (never created, expired, or deleted).
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists signals a create against an already occupied id.
	// Callers may regenerate the id and retry once.
	ErrSessionExists = errors.New("session already exists")
)

// SessionRepository is the shared durable store all workers coordinate
// through. Implementations never cache existence across calls: every
// operation re-resolves from the backing store.
type SessionRepository interface {
	// Create durably persists a new session. The session must be fully
	// readable by other workers before Create returns.
	Create(ctx context.Context, session *entity.Session) error

	// Read returns the decoded session, ErrSessionNotFound if no entry
	// exists, or snapshot.ErrCorruptSnapshot if the entry cannot be decoded.
	Read(ctx context.Context, id string) (*entity.Session, error)

	// Exists reports entry presence without materializing the artifact.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes the session and all its storage. Idempotent: deleting
	// an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Age returns now minus the stored creation timestamp. Filesystem
	// metadata is never the age basis.
	Age(ctx context.Context, id string) (time.Duration, error)

	// ListIds enumerates every stored session id. Used by the retention
	// sweeper only; request-path operations stay O(1) in repository size.
	ListIds(ctx context.Context) ([]string, error)
}
