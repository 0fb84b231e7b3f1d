package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salomax/neotool-authz/internal/app"
	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/config"
)

// RunCheckPermission runs a one-off authorization check from the command
// line and prints the decision. A denied decision is a successful run; only
// an undetermined decision returns an error.
//
// Requirements: Database must be migrated and accessible.
func RunCheckPermission(
	ctx context.Context,
	userID string,
	principalType string,
	permission string,
	resourceType string,
	resourceID string,
	subjectAttrs string,
	resourceAttrs string,
	contextAttrs string,
	format string,
) error {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	parsedType, err := parsePrincipalType(principalType)
	if err != nil {
		return err
	}

	subject, err := parseAttributes("subject", subjectAttrs)
	if err != nil {
		return err
	}
	resource, err := parseAttributes("resource", resourceAttrs)
	if err != nil {
		return err
	}
	requestContext, err := parseAttributes("context", contextAttrs)
	if err != nil {
		return err
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("checking permission",
		slog.String("user_id", userID),
		slog.String("permission", permission),
	)

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get authorization use case from container
	authorizationUseCase, err := container.AuthorizationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize authorization use case: %w", err)
	}

	result, err := authorizationUseCase.CheckPermission(ctx, &authzDomain.CheckPermissionInput{
		Principal: authzDomain.Principal{
			ID:      parsedUserID,
			Type:    parsedType,
			Enabled: true,
		},
		Permission:         permission,
		ResourceType:       resourceType,
		ResourceID:         resourceID,
		SubjectAttributes:  subject,
		ResourceAttributes: resource,
		ContextAttributes:  requestContext,
		Metadata:           map[string]any{"source": "cli"},
	})
	if err != nil {
		return fmt.Errorf("failed to check permission: %w", err)
	}

	if format == "json" {
		printJSON(map[string]interface{}{
			"allowed": result.Allowed,
			"reason":  result.Reason,
		})
	} else {
		outcome := "DENIED"
		if result.Allowed {
			outcome = "ALLOWED"
		}
		fmt.Printf("%s: %s\n", outcome, result.Reason)
	}

	return nil
}

// parsePrincipalType converts a principal type string to its domain value.
func parsePrincipalType(principalType string) (authzDomain.PrincipalType, error) {
	switch principalType {
	case "USER":
		return authzDomain.UserPrincipal, nil
	case "SERVICE":
		return authzDomain.ServicePrincipal, nil
	default:
		return "", fmt.Errorf("invalid principal type: %s (valid options: USER, SERVICE)", principalType)
	}
}

// parseAttributes decodes a JSON object flag into an attribute map. An empty
// flag yields a nil map.
func parseAttributes(name, raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}

	var attrs map[string]any
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("invalid %s attributes JSON: %w", name, err)
	}
	return attrs, nil
}
