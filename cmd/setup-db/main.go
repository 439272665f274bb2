// setup-db prepares the configured database once: for MySQL it creates
// the database itself, then every driver gets the schools table.
//
//	go run ./cmd/setup-db --config=config/local.yaml
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aanand-mishra/schools-api/internal/config"
	"github.com/aanand-mishra/schools-api/internal/storage/backend"
	"github.com/aanand-mishra/schools-api/internal/storage/mysql"
)

func main() {
	cfg := config.MustLoad()
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cfg.Database.Driver == config.DriverMySQL {
		if err := mysql.CreateDatabase(ctx, cfg.Database); err != nil {
			log.Error("failed to create database",
				slog.String("name", cfg.Database.Name),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info("database ready", slog.String("name", cfg.Database.Name))
	}

	// Opening a store applies its embedded schema.
	store, err := backend.New(cfg)
	if err != nil {
		log.Error("failed to create schools table",
			slog.String("driver", cfg.Database.Driver),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := store.Close(); err != nil {
		log.Error("failed to close store", slog.String("error", err.Error()))
	}

	log.Info("database setup completed", slog.String("driver", cfg.Database.Driver))
}
