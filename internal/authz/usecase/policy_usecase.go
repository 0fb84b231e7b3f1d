package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/salomax/neotool-authz/internal/errors"
	appvalidation "github.com/salomax/neotool-authz/internal/validation"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	authzService "github.com/salomax/neotool-authz/internal/authz/service"
)

// policyUseCase implements PolicyUseCase. Condition trees are validated
// structurally on every write; the evaluation path can then treat stored
// policies as trusted and only defends against drift.
type policyUseCase struct {
	policyRepo PolicyRepository
	evaluator  authzService.ConditionEvaluator
}

// Create validates and persists a new ABAC policy with version 1.
func (p *policyUseCase) Create(
	ctx context.Context,
	input *authzDomain.CreatePolicyInput,
) (*authzDomain.AbacPolicy, error) {
	if err := p.validateInput(input.Name, input.Effect, input.Condition); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	policy := &authzDomain.AbacPolicy{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         input.Name,
		Effect:       input.Effect,
		Condition:    input.Condition,
		IsActive:     input.IsActive,
		ResourceType: input.ResourceType,
		Action:       input.Action,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.policyRepo.Create(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// Update modifies a policy under optimistic concurrency. The replacement
// condition tree is validated just like on create.
func (p *policyUseCase) Update(
	ctx context.Context,
	policyID uuid.UUID,
	input *authzDomain.UpdatePolicyInput,
) (*authzDomain.AbacPolicy, error) {
	if err := p.validateInput(input.Name, input.Effect, input.Condition); err != nil {
		return nil, err
	}

	policy, err := p.policyRepo.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}

	policy.Name = input.Name
	policy.Effect = input.Effect
	policy.Condition = input.Condition
	policy.IsActive = input.IsActive
	policy.ResourceType = input.ResourceType
	policy.Action = input.Action
	policy.Version = input.Version
	policy.UpdatedAt = time.Now().UTC()

	if err := p.policyRepo.Update(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// Get retrieves a policy by ID.
func (p *policyUseCase) Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error) {
	return p.policyRepo.Get(ctx, policyID)
}

// List retrieves policies ordered by name with pagination support, inactive
// ones included.
func (p *policyUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error) {
	return p.policyRepo.List(ctx, offset, limit)
}

// Delete removes a policy.
func (p *policyUseCase) Delete(ctx context.Context, policyID uuid.UUID) error {
	return p.policyRepo.Delete(ctx, policyID)
}

func (p *policyUseCase) validateInput(
	name string,
	effect authzDomain.Effect,
	condition authzDomain.ConditionNode,
) error {
	if err := validation.Validate(name, validation.Required, appvalidation.NotBlank, appvalidation.NoWhitespace); err != nil {
		return appvalidation.WrapValidationError(err)
	}
	if effect != authzDomain.AllowEffect && effect != authzDomain.DenyEffect {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "effect must be ALLOW or DENY")
	}
	if err := p.evaluator.ValidateCondition(condition); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return nil
}

// NewPolicyUseCase creates a PolicyUseCase with the provided dependencies.
func NewPolicyUseCase(
	policyRepo PolicyRepository,
	evaluator authzService.ConditionEvaluator,
) PolicyUseCase {
	return &policyUseCase{
		policyRepo: policyRepo,
		evaluator:  evaluator,
	}
}
