package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/salomax/neotool-authz/internal/app"
	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/config"
)

// RunCreateRole creates a role and optionally links a comma-separated list
// of permission names to it. Permissions that are new to the catalog are
// created on the fly.
//
// Requirements: Database must be migrated and accessible.
func RunCreateRole(ctx context.Context, name, description, permissions, format string) error {
	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("creating role", slog.String("name", name))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get role use case from container
	roleUseCase, err := container.RoleUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize role use case: %w", err)
	}

	role, err := roleUseCase.Create(ctx, &authzDomain.CreateRoleInput{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	var linked []string
	for _, permissionName := range strings.Split(permissions, ",") {
		permissionName = strings.TrimSpace(permissionName)
		if permissionName == "" {
			continue
		}
		if err := roleUseCase.AddPermission(ctx, role.ID, permissionName); err != nil {
			return fmt.Errorf("failed to add permission %q: %w", permissionName, err)
		}
		linked = append(linked, permissionName)
	}

	if format == "json" {
		printJSON(map[string]interface{}{
			"id":          role.ID.String(),
			"name":        role.Name,
			"description": role.Description,
			"permissions": linked,
		})
	} else {
		fmt.Printf("Created role %s (%s)\n", role.Name, role.ID)
		for _, permissionName := range linked {
			fmt.Printf("  linked permission %s\n", permissionName)
		}
	}

	logger.Info("role created",
		slog.String("role_id", role.ID.String()),
		slog.Int("permissions", len(linked)),
	)

	return nil
}
