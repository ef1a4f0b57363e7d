package main

// Apply, inspect or roll back the self-hosted schema:
//   go run ./cmd/migrate            # up
//   go run ./cmd/migrate -status    # print the current version
//   go run ./cmd/migrate -down      # revert the latest migration

import (
	"context"
	"flag"
	"os"

	"latex-resume-backend/internal/shared/config"
	"latex-resume-backend/internal/shared/storage/db"
	"latex-resume-backend/internal/shared/telemetry"
)

func main() {
	down := flag.Bool("down", false, "revert the most recent migration")
	status := flag.Bool("status", false, "print the current schema version and exit")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch {
	case *status:
	case *down:
		err = db.RollbackMigration(ctx, sqlDB)
	default:
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error(), "down": *down})
		sqlDB.Close()
		os.Exit(1)
	}

	version, err := db.MigrationVersion(ctx, sqlDB)
	if err != nil {
		telemetry.Error("migrate.version_failed", map[string]any{"error": err.Error()})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"version": version})
}
