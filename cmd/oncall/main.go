package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/oncall-dev/oncall/db"
	"github.com/oncall-dev/oncall/internal/config"
	"github.com/oncall-dev/oncall/internal/handlers"
	"github.com/oncall-dev/oncall/internal/pagerduty"
	"github.com/oncall-dev/oncall/internal/router"
	"github.com/oncall-dev/oncall/internal/scheduler"
	"github.com/oncall-dev/oncall/internal/tasks"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()

	if cfg.PagerDutyKey == "" {
		log.Fatal("PAGERDUTY_KEY is required")
	}

	if err := db.ConnectDatabase(cfg.DatabaseURI); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	provider := pagerduty.NewClient(pagerduty.Options{
		Endpoint: cfg.PagerDutyEndpoint,
		APIKey:   cfg.PagerDutyKey,
	})

	syncer := tasks.NewSyncer(provider, cfg.InitialLookback, cfg.SyncWorkers)
	syncer.Broadcast = handlers.BroadcastSyncEvent

	s := scheduler.NewScheduler()

	for _, job := range syncer.Jobs(cfg) {
		s.Register(job)
	}

	s.Start()
	defer s.Stop()

	r := router.NewRouter()

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
