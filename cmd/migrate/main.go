package main

import (
	"log"

	"archive-session-store/internal/config"
	"archive-session-store/internal/model"
	"archive-session-store/pkg/database"
)

func main() {
	cfg := config.Load()

	if cfg.Storage.Driver != "postgres" {
		log.Fatalf("Migration only applies to the postgres driver (got %q)", cfg.Storage.Driver)
	}

	db, err := database.NewGormDBFromDSN(cfg.Storage.Connection)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}

	log.Println("Migrating analysis_sessions...")
	if err := db.AutoMigrate(&model.AnalysisSession{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Done.")
}
