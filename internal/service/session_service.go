package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"archive-session-store/internal/dto"
	"archive-session-store/internal/entity"
	"archive-session-store/internal/pkg/logger"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/pkg/token"
)

type ISessionService interface {
	// Create persists a completed analysis artifact under a freshly minted
	// id and returns the id. A storage fault never returns an id.
	Create(ctx context.Context, artifact *entity.Artifact) (string, error)

	// Read returns the artifact for id, or ErrInvalidSessionId /
	// ErrSessionNotFound / snapshot.ErrCorruptSnapshot.
	Read(ctx context.Context, id string) (*entity.Artifact, error)

	// Exists reports presence without materializing the artifact.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes the session. Idempotent for well-formed ids.
	Delete(ctx context.Context, id string) error

	// Age returns now minus the session's stored creation time.
	Age(ctx context.Context, id string) (time.Duration, error)
}

type sessionService struct {
	repo             contract.SessionRepository
	publisherService IPublisherService
	logger           logger.ILogger
	idBytes          int
}

func NewSessionService(
	repo contract.SessionRepository,
	publisherService IPublisherService,
	logger logger.ILogger,
	idBytes int,
) ISessionService {
	return &sessionService{
		repo:             repo,
		publisherService: publisherService,
		logger:           logger,
		idBytes:          idBytes,
	}
}

func (s *sessionService) Create(ctx context.Context, artifact *entity.Artifact) (string, error) {
	if artifact == nil {
		return "", errors.New("nil artifact")
	}

	id, err := token.Generate(s.idBytes)
	if err != nil {
		return "", fmt.Errorf("mint session id: %w", err)
	}

	session := &entity.Session{
		Id:        id,
		CreatedAt: time.Now(),
		Artifact:  artifact,
	}

	err = s.repo.Create(ctx, session)
	if errors.Is(err, contract.ErrSessionExists) {
		// Collision odds are negligible at 16 random bytes; one defensive
		// regeneration covers the remainder.
		id, err = token.Generate(s.idBytes)
		if err != nil {
			return "", fmt.Errorf("mint session id: %w", err)
		}
		session.Id = id
		err = s.repo.Create(ctx, session)
	}
	if err != nil {
		return "", err
	}

	s.publishEvent(ctx, dto.SessionEventMessage{
		Event:      dto.SessionEventCreated,
		SessionId:  id,
		OccurredAt: time.Now(),
	})

	return id, nil
}

func (s *sessionService) Read(ctx context.Context, id string) (*entity.Artifact, error) {
	if !token.IsValid(id, s.idBytes) {
		return nil, contract.ErrInvalidSessionId
	}

	session, err := s.repo.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.Artifact, nil
}

func (s *sessionService) Exists(ctx context.Context, id string) (bool, error) {
	if !token.IsValid(id, s.idBytes) {
		return false, contract.ErrInvalidSessionId
	}
	return s.repo.Exists(ctx, id)
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if !token.IsValid(id, s.idBytes) {
		return contract.ErrInvalidSessionId
	}

	existed, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if !existed {
		// Idempotent no-op; the audit trail only records sessions that
		// actually went away.
		return nil
	}

	s.publishEvent(ctx, dto.SessionEventMessage{
		Event:      dto.SessionEventDeleted,
		SessionId:  id,
		Reason:     dto.SessionDeleteReasonExplicit,
		OccurredAt: time.Now(),
	})

	return nil
}

func (s *sessionService) Age(ctx context.Context, id string) (time.Duration, error) {
	if !token.IsValid(id, s.idBytes) {
		return 0, contract.ErrInvalidSessionId
	}
	return s.repo.Age(ctx, id)
}

// publishEvent is best-effort: the audit trail must never fail a store
// operation that already committed.
func (s *sessionService) publishEvent(ctx context.Context, event dto.SessionEventMessage) {
	if s.publisherService == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("session", "failed to encode lifecycle event", map[string]interface{}{
			"event":      event.Event,
			"session_id": event.SessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("session", "failed to publish lifecycle event", map[string]interface{}{
			"event":      event.Event,
			"session_id": event.SessionId,
			"error":      err.Error(),
		})
	}
}
