package usecase

import (
	"context"
	"errors"
	"log/slog"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	authzService "github.com/salomax/neotool-authz/internal/authz/service"
)

// policyEngine implements PolicyEngine with deny-overrides semantics:
// authorization is exception-based, so a matched DENY always wins, a matched
// ALLOW is only confirmation, and no match at all leaves the RBAC outcome
// standing.
type policyEngine struct {
	policyRepo PolicyRepository
	evaluator  authzService.ConditionEvaluator
	logger     *slog.Logger
}

// EvaluatePolicies loads the active policies in scope for the requested
// action and resource type and evaluates each against the attribute context.
// The first matched DENY short-circuits. Policies whose condition trees turn
// out malformed are logged as configuration defects and skipped; one broken
// policy must not take the whole decision path down.
func (e *policyEngine) EvaluatePolicies(
	ctx context.Context,
	action string,
	resourceType string,
	attrs authzDomain.AttributeContext,
) (*authzDomain.PolicyDecision, error) {
	policies, err := e.policyRepo.ListActiveForScope(ctx, action, resourceType)
	if err != nil {
		return nil, err
	}

	var allowed *authzDomain.PolicyDecision
	for _, policy := range policies {
		matched, err := e.evaluator.Evaluate(policy.Condition, attrs)
		if err != nil {
			var evalErr *authzDomain.PolicyEvaluationError
			if errors.As(err, &evalErr) {
				if e.logger != nil {
					e.logger.Warn("skipping malformed policy",
						slog.String("policy_id", policy.ID.String()),
						slog.String("policy_name", policy.Name),
						slog.Any("error", err),
					)
				}
				continue
			}
			return nil, err
		}
		if !matched {
			continue
		}

		if policy.Effect == authzDomain.DenyEffect {
			return &authzDomain.PolicyDecision{Matched: true, Effect: authzDomain.DenyEffect}, nil
		}
		if allowed == nil {
			allowed = &authzDomain.PolicyDecision{Matched: true, Effect: authzDomain.AllowEffect}
		}
	}

	if allowed != nil {
		return allowed, nil
	}
	return &authzDomain.PolicyDecision{Matched: false}, nil
}

// NewPolicyEngine creates a PolicyEngine with the provided dependencies.
func NewPolicyEngine(
	policyRepo PolicyRepository,
	evaluator authzService.ConditionEvaluator,
	logger *slog.Logger,
) PolicyEngine {
	return &policyEngine{
		policyRepo: policyRepo,
		evaluator:  evaluator,
		logger:     logger,
	}
}
