package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/salomax/neotool-authz/internal/errors"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// authorizationUseCase implements AuthorizationUseCase. RBAC acts as the
// gate: without the named permission the check denies immediately and no
// policy runs. ABAC then refines the grant with deny-overrides semantics.
// Every check produces an audit entry; writing it is best-effort and never
// blocks or reverses the decision.
type authorizationUseCase struct {
	roleResolver       RoleResolver
	permissionResolver PermissionResolver
	policyEngine       PolicyEngine
	auditLogUseCase    AuditLogUseCase
	logger             *slog.Logger
}

// CheckPermission runs the full decision sequence against a single captured
// instant, so role windows, memberships and the audit timestamp all agree.
// Denials are results, not errors; an error means infrastructure failed and
// the decision is undetermined.
func (a *authorizationUseCase) CheckPermission(
	ctx context.Context,
	input *authzDomain.CheckPermissionInput,
) (*authzDomain.AuthorizationResult, error) {
	now := time.Now().UTC()

	// A disabled principal holds nothing; neither stage runs.
	if !input.Principal.Enabled {
		a.recordDecision(ctx, input, now, nil,
			authzDomain.DecisionNotEvaluated, authzDomain.DecisionNotEvaluated, authzDomain.DecisionDenied)
		return &authzDomain.AuthorizationResult{
			Allowed: false,
			Reason:  authzDomain.ReasonPrincipalDisabled,
		}, nil
	}

	resolved, err := a.roleResolver.ResolveRoles(ctx, input.Principal.ID, now)
	if err != nil {
		return nil, undetermined(err, "failed to resolve roles")
	}

	permissions, err := a.permissionResolver.ResolvePermissions(ctx, input.Principal.ID, now)
	if err != nil {
		return nil, undetermined(err, "failed to resolve permissions")
	}

	// RBAC gate
	if !slices.Contains(permissions, input.Permission) {
		a.recordDecision(ctx, input, now, resolved,
			authzDomain.DecisionDenied, authzDomain.DecisionNotEvaluated, authzDomain.DecisionDenied)
		return &authzDomain.AuthorizationResult{
			Allowed: false,
			Reason:  fmt.Sprintf("User does not have permission '%s'", input.Permission),
		}, nil
	}

	// ABAC refinement
	attrs := buildAttributeContext(input, permissions, now)
	decision, err := a.policyEngine.EvaluatePolicies(ctx, input.Permission, input.ResourceType, attrs)
	if err != nil {
		return nil, undetermined(err, "failed to evaluate policies")
	}

	if decision.Matched && decision.Effect == authzDomain.DenyEffect {
		a.recordDecision(ctx, input, now, resolved,
			authzDomain.DecisionAllowed, authzDomain.DecisionDenied, authzDomain.DecisionDenied)
		return &authzDomain.AuthorizationResult{
			Allowed: false,
			Reason:  authzDomain.ReasonABACDeny,
		}, nil
	}

	// No policy objected (or one explicitly allowed); the RBAC grant stands.
	a.recordDecision(ctx, input, now, resolved,
		authzDomain.DecisionAllowed, authzDomain.DecisionAllowed, authzDomain.DecisionAllowed)
	return &authzDomain.AuthorizationResult{
		Allowed: true,
		Reason:  authzDomain.ReasonAccessGranted,
	}, nil
}

// Require is the guard-clause form used by middleware and other callers that
// only need pass/fail.
func (a *authorizationUseCase) Require(
	ctx context.Context,
	input *authzDomain.CheckPermissionInput,
) error {
	result, err := a.CheckPermission(ctx, input)
	if err != nil {
		return err
	}
	if !result.Allowed {
		return &authzDomain.AuthorizationDeniedError{
			UserID: input.Principal.ID,
			Action: input.Permission,
			Reason: result.Reason,
		}
	}
	return nil
}

// recordDecision writes the audit entry for one check. Failures are logged
// and swallowed; the decision already stands.
func (a *authorizationUseCase) recordDecision(
	ctx context.Context,
	input *authzDomain.CheckPermissionInput,
	now time.Time,
	resolved *authzDomain.ResolvedRoles,
	rbacResult, abacResult, finalDecision authzDomain.DecisionResult,
) {
	var groups, roles []string
	if resolved != nil {
		groups = resolved.GroupNames()
		roles = resolved.RoleNames()
	}

	entry := &authzDomain.AuthorizationAuditLogEntry{
		ID:              uuid.Must(uuid.NewV7()),
		UserID:          input.Principal.ID,
		Groups:          groups,
		Roles:           roles,
		RequestedAction: input.Permission,
		ResourceType:    input.ResourceType,
		ResourceID:      input.ResourceID,
		RBACResult:      rbacResult,
		ABACResult:      abacResult,
		FinalDecision:   finalDecision,
		Timestamp:       now,
		Metadata:        input.Metadata,
	}

	if err := a.auditLogUseCase.Record(ctx, entry); err != nil && a.logger != nil {
		a.logger.Error("failed to write authorization audit entry",
			slog.String("user_id", input.Principal.ID.String()),
			slog.String("permission", input.Permission),
			slog.Any("error", err),
		)
	}
}

// buildAttributeContext assembles the four attribute namespaces for policy
// evaluation. Caller-supplied maps are copied before enrichment so inputs
// are never mutated.
func buildAttributeContext(
	input *authzDomain.CheckPermissionInput,
	permissions []string,
	now time.Time,
) authzDomain.AttributeContext {
	subject := copyAttributes(input.SubjectAttributes)
	subject["id"] = input.Principal.ID.String()
	subject["type"] = string(input.Principal.Type)

	// Policies see the credential's permission snapshot when one was
	// presented, the live resolved set otherwise.
	if input.Principal.PermissionsFromToken != nil {
		subject[authzDomain.SubjectPermissionsAttribute] = input.Principal.PermissionsFromToken
	} else {
		subject[authzDomain.SubjectPermissionsAttribute] = permissions
	}

	resource := copyAttributes(input.ResourceAttributes)
	if input.ResourceType != "" {
		resource["type"] = input.ResourceType
	}
	if input.ResourceID != "" {
		resource["id"] = input.ResourceID
	}
	if input.ResourcePattern != "" {
		resource["pattern"] = input.ResourcePattern
	}

	return authzDomain.AttributeContext{
		Subject:  subject,
		Resource: resource,
		Context:  copyAttributes(input.ContextAttributes),
		Environment: map[string]any{
			"timestamp": now.Format(time.RFC3339),
		},
	}
}

func copyAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs)+3)
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// undetermined marks an infrastructure failure so callers can fail closed
// while the underlying cause stays in the chain.
func undetermined(err error, message string) error {
	return fmt.Errorf("%w: %s: %w", apperrors.ErrUndetermined, message, err)
}

// NewAuthorizationUseCase creates an AuthorizationUseCase with the provided
// dependencies.
func NewAuthorizationUseCase(
	roleResolver RoleResolver,
	permissionResolver PermissionResolver,
	policyEngine PolicyEngine,
	auditLogUseCase AuditLogUseCase,
	logger *slog.Logger,
) AuthorizationUseCase {
	return &authorizationUseCase{
		roleResolver:       roleResolver,
		permissionResolver: permissionResolver,
		policyEngine:       policyEngine,
		auditLogUseCase:    auditLogUseCase,
		logger:             logger,
	}
}
