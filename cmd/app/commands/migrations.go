package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/salomax/neotool-authz/internal/app"
	"github.com/salomax/neotool-authz/internal/config"
)

// RunMigrations applies all pending database migrations for the configured
// driver. Returns nil when the schema is already up to date.
func RunMigrations() error {
	cfg := config.Load()

	// Container built only for its logger
	container := app.NewContainer(cfg)
	logger := container.Logger()

	var migrationsPath string
	switch cfg.DBDriver {
	case "mysql":
		migrationsPath = "file://migrations/mysql"
	default:
		migrationsPath = "file://migrations/postgresql"
	}

	logger.Info("running database migrations",
		slog.String("driver", cfg.DBDriver),
		slog.String("path", migrationsPath),
	)

	m, err := migrate.New(migrationsPath, cfg.DBConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}
