package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"archive-session-store/internal/dto"
	"archive-session-store/internal/pkg/logger"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/pkg/snapshot"

	"github.com/google/uuid"
)

type ISweeperService interface {
	// Sweep runs one scan-and-delete pass and reports what it did.
	Sweep(ctx context.Context) (*dto.SweepReport, error)

	// Run sweeps immediately, then on every interval tick until ctx is
	// cancelled. Blocking; callers start it in a goroutine.
	Run(ctx context.Context) error
}

type sweeperService struct {
	repo             contract.SessionRepository
	publisherService IPublisherService
	logger           logger.ILogger
	retention        time.Duration
	interval         time.Duration
}

func NewSweeperService(
	repo contract.SessionRepository,
	publisherService IPublisherService,
	logger logger.ILogger,
	retention time.Duration,
	interval time.Duration,
) ISweeperService {
	if interval <= 0 {
		// time.NewTicker panics on non-positive durations; config
		// validation enforces a floor, direct callers may not.
		interval = time.Minute
	}
	return &sweeperService{
		repo:             repo,
		publisherService: publisherService,
		logger:           logger,
		retention:        retention,
		interval:         interval,
	}
}

func (s *sweeperService) Run(ctx context.Context) error {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("sweeper", "sweep pass failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweeper", "sweep pass failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

func (s *sweeperService) Sweep(ctx context.Context) (*dto.SweepReport, error) {
	report := &dto.SweepReport{
		RunId: uuid.New().String(),
	}

	ids, err := s.repo.ListIds(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sweeper", "sweep pass started", map[string]interface{}{
		"run_id":         report.RunId,
		"sessions":       len(ids),
		"retention_days": s.retention.Hours() / 24,
	})

	for _, id := range ids {
		report.Scanned++

		age, err := s.repo.Age(ctx, id)
		if err != nil {
			if errors.Is(err, contract.ErrSessionNotFound) {
				// Raced a concurrent delete; nothing left to reclaim.
				continue
			}
			if errors.Is(err, snapshot.ErrCorruptSnapshot) {
				// Unreadable metadata means no trustworthy age; leave the
				// session for operators rather than guessing.
				s.logger.Warn("sweeper", "session has unreadable metadata, skipping", map[string]interface{}{
					"run_id":     report.RunId,
					"session_id": id,
				})
				report.Errors++
				continue
			}
			s.logger.Error("sweeper", "failed to determine session age", map[string]interface{}{
				"run_id":     report.RunId,
				"session_id": id,
				"error":      err.Error(),
			})
			report.Errors++
			continue
		}

		if age <= s.retention {
			continue
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.Error("sweeper", "failed to delete expired session", map[string]interface{}{
				"run_id":     report.RunId,
				"session_id": id,
				"error":      err.Error(),
			})
			report.Errors++
			continue
		}

		report.Removed++
		s.logger.Info("sweeper", "expired session removed", map[string]interface{}{
			"run_id":     report.RunId,
			"session_id": id,
			"age_days":   age.Hours() / 24,
		})
		s.publishEvent(ctx, dto.SessionEventMessage{
			Event:      dto.SessionEventDeleted,
			SessionId:  id,
			Reason:     dto.SessionDeleteReasonExpired,
			SweepRunId: report.RunId,
			OccurredAt: time.Now(),
		})
	}

	s.logger.Info("sweeper", "sweep pass finished", map[string]interface{}{
		"run_id":  report.RunId,
		"scanned": report.Scanned,
		"removed": report.Removed,
		"errors":  report.Errors,
	})

	return report, nil
}

func (s *sweeperService) publishEvent(ctx context.Context, event dto.SessionEventMessage) {
	if s.publisherService == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("sweeper", "failed to encode lifecycle event", map[string]interface{}{
			"session_id": event.SessionId,
			"error":      err.Error(),
		})
		return
	}

	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("sweeper", "failed to publish lifecycle event", map[string]interface{}{
			"session_id": event.SessionId,
			"error":      err.Error(),
		})
	}
}
