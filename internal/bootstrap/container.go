package bootstrap

import (
	"context"
	"fmt"
	"log"

	"archive-session-store/internal/config"
	"archive-session-store/internal/pkg/logger"
	"archive-session-store/internal/repository/contract"
	"archive-session-store/internal/repository/implementation"
	"archive-session-store/internal/repository/memory"
	"archive-session-store/internal/service"
	"archive-session-store/pkg/database"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	SessionService service.ISessionService
	SweeperService service.ISweeperService

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService

	SessionRepository contract.SessionRepository
	Logger            logger.ILogger
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Session Repository (driver-selected backing store)
	sessionRepo, err := newSessionRepository(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Using session storage driver: %s", cfg.Storage.Driver)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.EventsTopic, pubSub)
	auditService := service.NewAuditService(pubSub, cfg.App.EventsTopic, auditLogger)

	sessionService := service.NewSessionService(
		sessionRepo,
		publisherService,
		sysLogger,
		cfg.Session.IdBytes,
	)
	sweeperService := service.NewSweeperService(
		sessionRepo,
		publisherService,
		sysLogger,
		cfg.Session.Retention(),
		cfg.Session.SweepInterval,
	)

	return &Container{
		SessionService:    sessionService,
		SweeperService:    sweeperService,
		AuditService:      auditService,
		SessionRepository: sessionRepo,
		Logger:            sysLogger,
	}, nil
}

func newSessionRepository(cfg *config.Config) (contract.SessionRepository, error) {
	switch cfg.Storage.Driver {
	case "filesystem":
		return implementation.NewFilesystemSessionRepository(cfg.Storage.BaseDir, cfg.Session.IdBytes)

	case "memory":
		return memory.NewSessionRepository(cfg.Session.IdBytes), nil

	case "redis":
		opt, err := redis.ParseURL(cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return implementation.NewRedisSessionRepository(rdb, cfg.Session.IdBytes), nil

	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Storage.Connection)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return implementation.NewGormSessionRepository(db, cfg.Session.IdBytes), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
