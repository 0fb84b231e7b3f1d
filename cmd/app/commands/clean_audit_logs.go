package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salomax/neotool-authz/internal/app"
	"github.com/salomax/neotool-authz/internal/config"
)

// RunCleanAuditLogs deletes authorization audit logs older than the
// specified number of days. Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanAuditLogs(ctx context.Context, days int, format string) error {
	// Validate days parameter
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("cleaning audit logs", slog.Int("days", days))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get audit log use case from container
	auditLogUseCase, err := container.AuditLogUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit log use case: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	count, err := auditLogUseCase.CleanOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete audit logs: %w", err)
	}

	if format == "json" {
		printJSON(map[string]interface{}{
			"count":  count,
			"days":   days,
			"cutoff": cutoff.Format(time.RFC3339),
		})
	} else {
		fmt.Printf("Successfully deleted %d audit log(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
	)

	return nil
}
