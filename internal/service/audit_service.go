package service

import (
	"context"
	"encoding/json"

	"archive-session-store/internal/dto"
	"archive-session-store/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IAuditService interface {
	Consume(ctx context.Context) error
}

// auditService appends every session lifecycle event to the isolated audit
// log, so operators can reconstruct when a session was created and why it
// disappeared (explicit delete vs retention expiry).
type auditService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	auditLog  logger.ILogger
}

func NewAuditService(
	pubSub *gochannel.GoChannel,
	topicName string,
	auditLog logger.ILogger,
) IAuditService {
	return &auditService{
		pubSub:    pubSub,
		topicName: topicName,
		auditLog:  auditLog,
	}
}

func (s *auditService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *auditService) processMessage(msg *message.Message) {
	var event dto.SessionEventMessage
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		s.auditLog.Warn("audit", "unreadable lifecycle event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	s.auditLog.Info("audit", event.Event, map[string]interface{}{
		"session_id":   event.SessionId,
		"reason":       event.Reason,
		"sweep_run_id": event.SweepRunId,
		"occurred_at":  event.OccurredAt,
	})
	msg.Ack()
}
