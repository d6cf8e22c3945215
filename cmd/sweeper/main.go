package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"archive-session-store/internal/bootstrap"
	"archive-session-store/internal/config"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Unable to bootstrap: %v", err)
	}
	defer container.Logger.Sync()

	// 3. Shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.AuditService.Consume(ctx); err != nil {
		log.Printf("Background Audit Error: %v", err)
	}

	// 5. Run Sweeper
	log.Printf("✅ Retention sweeper is running (interval %s, retention %d days)",
		cfg.Session.SweepInterval, cfg.Session.RetentionDays)
	if err := container.SweeperService.Run(ctx); err != nil {
		log.Fatalf("Sweeper stopped: %v", err)
	}
}
