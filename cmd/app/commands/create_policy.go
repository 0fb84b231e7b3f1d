package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/salomax/neotool-authz/internal/app"
	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/config"
)

// RunCreatePolicy creates an ABAC policy. The condition tree is given as a
// JSON document, either inline through the flag or piped on stdin when the
// flag is omitted.
//
// Requirements: Database must be migrated and accessible.
func RunCreatePolicy(
	ctx context.Context,
	name string,
	effect string,
	condition string,
	resourceType string,
	action string,
	active bool,
	format string,
) error {
	parsedEffect, err := parseEffect(effect)
	if err != nil {
		return err
	}

	conditionJSON := condition
	if conditionJSON == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read condition from stdin: %w", err)
		}
		conditionJSON = string(raw)
	}

	var conditionNode authzDomain.ConditionNode
	if err := json.Unmarshal([]byte(conditionJSON), &conditionNode); err != nil {
		return fmt.Errorf("invalid condition JSON: %w", err)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("creating policy", slog.String("name", name))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get policy use case from container
	policyUseCase, err := container.PolicyUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize policy use case: %w", err)
	}

	policy, err := policyUseCase.Create(ctx, &authzDomain.CreatePolicyInput{
		Name:         name,
		Effect:       parsedEffect,
		Condition:    conditionNode,
		IsActive:     active,
		ResourceType: resourceType,
		Action:       action,
	})
	if err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}

	if format == "json" {
		printJSON(map[string]interface{}{
			"id":            policy.ID.String(),
			"name":          policy.Name,
			"effect":        string(policy.Effect),
			"resource_type": policy.ResourceType,
			"action":        policy.Action,
			"is_active":     policy.IsActive,
		})
	} else {
		fmt.Printf("Created policy %s (%s) with effect %s\n", policy.Name, policy.ID, policy.Effect)
	}

	logger.Info("policy created", slog.String("policy_id", policy.ID.String()))

	return nil
}

// parseEffect converts an effect string to its domain value.
func parseEffect(effect string) (authzDomain.Effect, error) {
	switch effect {
	case "ALLOW":
		return authzDomain.AllowEffect, nil
	case "DENY":
		return authzDomain.DenyEffect, nil
	default:
		return "", fmt.Errorf("invalid effect: %s (valid options: ALLOW, DENY)", effect)
	}
}
