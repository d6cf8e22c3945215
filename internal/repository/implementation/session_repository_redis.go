package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"archive-session-store/internal/entity"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/pkg/snapshot"
	"archive-session-store/pkg/token"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// redisRecord is the single value stored per session. One key per session
// keeps create atomic (SET NX): readers never observe a partial record.
type redisRecord struct {
	CreatedAt time.Time `json:"created_at"`
	Snapshot  []byte    `json:"snapshot"`
}

// RedisSessionRepositoryImpl keeps sessions in a shared redis instance, the
// equivalent shared durable medium for deployments without a common volume.
type RedisSessionRepositoryImpl struct {
	rdb     *redis.Client
	idBytes int
}

func NewRedisSessionRepository(rdb *redis.Client, idBytes int) contract.SessionRepository {
	return &RedisSessionRepositoryImpl{
		rdb:     rdb,
		idBytes: idBytes,
	}
}

func (r *RedisSessionRepositoryImpl) key(id string) (string, error) {
	if !token.IsValid(id, r.idBytes) {
		return "", contract.ErrInvalidSessionId
	}
	return redisKeyPrefix + id, nil
}

func (r *RedisSessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	key, err := r.key(session.Id)
	if err != nil {
		return err
	}

	blob, err := snapshot.Encode(session.Artifact)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.Id, err)
	}

	payload, err := json.Marshal(redisRecord{
		CreatedAt: session.CreatedAt,
		Snapshot:  blob,
	})
	if err != nil {
		return fmt.Errorf("encode session record %s: %w", session.Id, err)
	}

	// No TTL: lifecycle belongs to the retention sweeper, keyed off the
	// stored created_at like every other backend.
	ok, err := r.rdb.SetNX(ctx, key, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store session %s: %w", session.Id, err)
	}
	if !ok {
		return contract.ErrSessionExists
	}
	return nil
}

func (r *RedisSessionRepositoryImpl) Read(ctx context.Context, id string) (*entity.Session, error) {
	record, err := r.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	artifact, err := snapshot.Decode(record.Snapshot)
	if err != nil {
		return nil, err
	}

	return &entity.Session{
		Id:        id,
		CreatedAt: record.CreatedAt,
		Artifact:  artifact,
	}, nil
}

func (r *RedisSessionRepositoryImpl) Exists(ctx context.Context, id string) (bool, error) {
	key, err := r.key(id)
	if err != nil {
		return false, err
	}

	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check session %s: %w", id, err)
	}
	return n > 0, nil
}

func (r *RedisSessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	key, err := r.key(id)
	if err != nil {
		return err
	}

	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (r *RedisSessionRepositoryImpl) Age(ctx context.Context, id string) (time.Duration, error) {
	record, err := r.fetch(ctx, id)
	if err != nil {
		return 0, err
	}
	return time.Since(record.CreatedAt), nil
}

func (r *RedisSessionRepositoryImpl) ListIds(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)

	iter := r.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(redisKeyPrefix):]
		if token.IsValid(id, r.idBytes) {
			ids = append(ids, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return ids, nil
}

func (r *RedisSessionRepositoryImpl) fetch(ctx context.Context, id string) (*redisRecord, error) {
	key, err := r.key(id)
	if err != nil {
		return nil, err
	}

	payload, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, contract.ErrSessionNotFound
		}
		return nil, fmt.Errorf("fetch session %s: %w", id, err)
	}

	var record redisRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("%w: unreadable session record: %v", snapshot.ErrCorruptSnapshot, err)
	}
	if record.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: session record has no creation time", snapshot.ErrCorruptSnapshot)
	}

	return &record, nil
}
