package main

import (
	"context"
	"log"
	"os"

	"archive-session-store/internal/bootstrap"
	"archive-session-store/internal/config"
)

// One-shot sweep pass for cron deployments. Exits non-zero when any session
// could not be reclaimed, so the scheduler can flag the run.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Unable to bootstrap: %v", err)
	}
	defer container.Logger.Sync()

	log.Printf("Starting session cleanup (driver: %s, max age: %d days)",
		cfg.Storage.Driver, cfg.Session.RetentionDays)

	report, err := container.SweeperService.Sweep(context.Background())
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	log.Printf("Cleanup complete: %d scanned, %d removed, %d error(s)",
		report.Scanned, report.Removed, report.Errors)

	if report.Errors > 0 {
		os.Exit(1)
	}
}
