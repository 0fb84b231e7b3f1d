package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/salomax/neotool-authz/internal/app"
	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/config"
)

// RunAssignRole grants a role, looked up by name, to a user with an optional
// validity window given as RFC 3339 timestamps.
//
// Requirements: Database must be migrated and accessible.
func RunAssignRole(ctx context.Context, userID, roleName, validFrom, validUntil string) error {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	parsedValidFrom, err := parseOptionalTime("valid-from", validFrom)
	if err != nil {
		return err
	}
	parsedValidUntil, err := parseOptionalTime("valid-until", validUntil)
	if err != nil {
		return err
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("assigning role",
		slog.String("user_id", userID),
		slog.String("role", roleName),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	roleRepo, err := container.RoleRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize role repository: %w", err)
	}
	roleUseCase, err := container.RoleUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize role use case: %w", err)
	}

	role, err := roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return fmt.Errorf("failed to find role %q: %w", roleName, err)
	}

	err = roleUseCase.AssignToUser(ctx, parsedUserID, &authzDomain.AssignRoleInput{
		RoleID:     role.ID,
		ValidFrom:  parsedValidFrom,
		ValidUntil: parsedValidUntil,
	})
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	fmt.Printf("Assigned role %s to user %s\n", role.Name, parsedUserID)

	logger.Info("role assigned",
		slog.String("role_id", role.ID.String()),
		slog.String("user_id", userID),
	)

	return nil
}

// parseOptionalTime parses an RFC 3339 flag value, treating an empty string
// as absent.
func parseOptionalTime(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s timestamp (expected RFC 3339): %w", name, err)
	}
	return &parsed, nil
}
