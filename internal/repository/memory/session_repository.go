package memory

import (
	"context"
	"time"

	"archive-session-store/internal/entity"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/pkg/snapshot"
	"archive-session-store/pkg/token"

	"github.com/patrickmn/go-cache"
)

// record keeps the codec-encoded blob, not the live artifact, so the memory
// backend exercises the same round-trip as the durable ones.
type record struct {
	createdAt time.Time
	blob      []byte
}

// SessionRepository is the in-process backend for tests and single-worker
// development. It cannot coordinate multiple workers; production deployments
// use the filesystem, redis or postgres backend.
type SessionRepository struct {
	cache   *cache.Cache
	idBytes int
}

func NewSessionRepository(idBytes int) *SessionRepository {
	// No default expiration: the retention sweeper owns the lifecycle here
	// exactly as it does on the durable backends.
	return &SessionRepository{
		cache:   cache.New(cache.NoExpiration, 0),
		idBytes: idBytes,
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	if !token.IsValid(session.Id, r.idBytes) {
		return contract.ErrInvalidSessionId
	}

	blob, err := snapshot.Encode(session.Artifact)
	if err != nil {
		return err
	}

	if err := r.cache.Add(session.Id, record{createdAt: session.CreatedAt, blob: blob}, cache.NoExpiration); err != nil {
		return contract.ErrSessionExists
	}
	return nil
}

func (r *SessionRepository) Read(ctx context.Context, id string) (*entity.Session, error) {
	rec, err := r.fetch(id)
	if err != nil {
		return nil, err
	}

	artifact, err := snapshot.Decode(rec.blob)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		Id:        id,
		CreatedAt: rec.createdAt,
		Artifact:  artifact,
	}, nil
}

func (r *SessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !token.IsValid(id, r.idBytes) {
		return false, contract.ErrInvalidSessionId
	}

	_, found := r.cache.Get(id)
	return found, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if !token.IsValid(id, r.idBytes) {
		return contract.ErrInvalidSessionId
	}

	r.cache.Delete(id)
	return nil
}

func (r *SessionRepository) Age(ctx context.Context, id string) (time.Duration, error) {
	rec, err := r.fetch(id)
	if err != nil {
		return 0, err
	}
	return time.Since(rec.createdAt), nil
}

func (r *SessionRepository) ListIds(ctx context.Context) ([]string, error) {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids, nil
}

// Corrupt overwrites a stored blob in place. Test hook for the corrupt
// snapshot path; real sessions are immutable.
func (r *SessionRepository) Corrupt(id string, blob []byte) {
	if rec, found := r.cache.Get(id); found {
		old := rec.(record)
		r.cache.Set(id, record{createdAt: old.createdAt, blob: blob}, cache.NoExpiration)
	}
}

func (r *SessionRepository) fetch(id string) (record, error) {
	if !token.IsValid(id, r.idBytes) {
		return record{}, contract.ErrInvalidSessionId
	}

	x, found := r.cache.Get(id)
	if !found {
		return record{}, contract.ErrSessionNotFound
	}
	return x.(record), nil
}
