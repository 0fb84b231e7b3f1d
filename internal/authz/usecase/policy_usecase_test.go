package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/salomax/neotool-authz/internal/errors"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	authzService "github.com/salomax/neotool-authz/internal/authz/service"
)

func newPolicyUseCaseForTest() (PolicyUseCase, *mockPolicyRepository) {
	mockPolicyRepo := &mockPolicyRepository{}
	return NewPolicyUseCase(mockPolicyRepo, authzService.NewConditionEvaluator()), mockPolicyRepo
}

func validCondition() authzDomain.ConditionNode {
	return authzDomain.ConditionNode{
		Op:    authzDomain.OpEq,
		Path:  "subject.department",
		Value: "engineering",
	}
}

func TestPolicyUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreateNewPolicy", func(t *testing.T) {
		uc, mockPolicyRepo := newPolicyUseCaseForTest()

		mockPolicyRepo.On("Create", ctx, mock.MatchedBy(func(policy *authzDomain.AbacPolicy) bool {
			return policy.Name == "deny-cross-department" &&
				policy.Effect == authzDomain.DenyEffect &&
				policy.Version == 1
		})).
			Return(nil).
			Once()

		policy, err := uc.Create(ctx, &authzDomain.CreatePolicyInput{
			Name:      "deny-cross-department",
			Effect:    authzDomain.DenyEffect,
			Condition: validCondition(),
			IsActive:  true,
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, policy.ID)
		mockPolicyRepo.AssertExpectations(t)
	})

	t.Run("Error_MalformedConditionRejected", func(t *testing.T) {
		uc, mockPolicyRepo := newPolicyUseCaseForTest()

		policy, err := uc.Create(ctx, &authzDomain.CreatePolicyInput{
			Name:      "broken",
			Effect:    authzDomain.DenyEffect,
			Condition: authzDomain.ConditionNode{Op: "matches", Path: "a.b", Value: "x"},
		})

		assert.Nil(t, policy)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockPolicyRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Error_UnknownEffectRejected", func(t *testing.T) {
		uc, _ := newPolicyUseCaseForTest()

		policy, err := uc.Create(ctx, &authzDomain.CreatePolicyInput{
			Name:      "bad-effect",
			Effect:    "MAYBE",
			Condition: validCondition(),
		})

		assert.Nil(t, policy)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPolicyUseCase_Update(t *testing.T) {
	ctx := context.Background()
	policyID := uuid.Must(uuid.NewV7())

	t.Run("Success_CarriesCallerVersion", func(t *testing.T) {
		uc, mockPolicyRepo := newPolicyUseCaseForTest()

		existing := &authzDomain.AbacPolicy{
			ID:        policyID,
			Name:      "deny-cross-department",
			Effect:    authzDomain.DenyEffect,
			Condition: validCondition(),
			Version:   2,
		}
		mockPolicyRepo.On("Get", ctx, policyID).Return(existing, nil).Once()
		mockPolicyRepo.On("Update", ctx, mock.MatchedBy(func(policy *authzDomain.AbacPolicy) bool {
			return policy.Version == 2 && !policy.IsActive
		})).
			Return(nil).
			Once()

		policy, err := uc.Update(ctx, policyID, &authzDomain.UpdatePolicyInput{
			Name:      "deny-cross-department",
			Effect:    authzDomain.DenyEffect,
			Condition: validCondition(),
			IsActive:  false,
			Version:   2,
		})

		require.NoError(t, err)
		assert.False(t, policy.IsActive)
	})

	t.Run("Error_UnknownPolicy", func(t *testing.T) {
		uc, mockPolicyRepo := newPolicyUseCaseForTest()

		mockPolicyRepo.On("Get", ctx, policyID).Return(nil, authzDomain.ErrPolicyNotFound).Once()

		_, err := uc.Update(ctx, policyID, &authzDomain.UpdatePolicyInput{
			Name:      "missing",
			Effect:    authzDomain.AllowEffect,
			Condition: validCondition(),
			Version:   1,
		})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
