package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/salomax/neotool-authz/internal/errors"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

func newGroupUseCaseForTest() (GroupUseCase, *mockGroupRepository, *mockRoleRepository, *mockInvalidator) {
	mockGroupRepo := &mockGroupRepository{}
	mockRoleRepo := &mockRoleRepository{}
	invalidator := &mockInvalidator{}
	return NewGroupUseCase(mockGroupRepo, mockRoleRepo, invalidator), mockGroupRepo, mockRoleRepo, invalidator
}

func TestGroupUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreateNewGroup", func(t *testing.T) {
		uc, mockGroupRepo, _, _ := newGroupUseCaseForTest()

		mockGroupRepo.On("Create", ctx, mock.MatchedBy(func(group *authzDomain.Group) bool {
			return group.Name == "finance-team" && group.Version == 1
		})).
			Return(nil).
			Once()

		group, err := uc.Create(ctx, &authzDomain.CreateGroupInput{Name: "finance-team"})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, group.ID)
		mockGroupRepo.AssertExpectations(t)
	})

	t.Run("Error_BlankNameRejected", func(t *testing.T) {
		uc, mockGroupRepo, _, _ := newGroupUseCaseForTest()

		group, err := uc.Create(ctx, &authzDomain.CreateGroupInput{Name: ""})

		assert.Nil(t, group)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockGroupRepo.AssertNotCalled(t, "Create")
	})
}

func TestGroupUseCase_AddMember(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())
	group := &authzDomain.Group{ID: groupID, Name: "finance-team", Version: 1}

	t.Run("Success_DefaultsToMemberType", func(t *testing.T) {
		uc, mockGroupRepo, _, invalidator := newGroupUseCaseForTest()

		mockGroupRepo.On("Get", ctx, groupID).Return(group, nil).Once()
		mockGroupRepo.On("AddMember", ctx, mock.MatchedBy(func(membership *authzDomain.GroupMembership) bool {
			return membership.UserID == userID &&
				membership.GroupID == groupID &&
				membership.MembershipType == authzDomain.MemberMembership
		})).
			Return(nil).
			Once()

		err := uc.AddMember(ctx, groupID, &authzDomain.AddMemberInput{UserID: userID})

		require.NoError(t, err)
		assert.Equal(t, 1, invalidator.calls)
	})

	t.Run("Success_ExpiringMembership", func(t *testing.T) {
		uc, mockGroupRepo, _, _ := newGroupUseCaseForTest()

		until := time.Now().UTC().Add(30 * 24 * time.Hour)
		mockGroupRepo.On("Get", ctx, groupID).Return(group, nil).Once()
		mockGroupRepo.On("AddMember", ctx, mock.MatchedBy(func(membership *authzDomain.GroupMembership) bool {
			return membership.ValidUntil != nil && membership.ValidUntil.Equal(until)
		})).
			Return(nil).
			Once()

		err := uc.AddMember(ctx, groupID, &authzDomain.AddMemberInput{
			UserID:         userID,
			MembershipType: authzDomain.AdminMembership,
			ValidUntil:     &until,
		})

		require.NoError(t, err)
	})

	t.Run("Error_UnknownGroup", func(t *testing.T) {
		uc, mockGroupRepo, _, invalidator := newGroupUseCaseForTest()

		mockGroupRepo.On("Get", ctx, groupID).Return(nil, authzDomain.ErrGroupNotFound).Once()

		err := uc.AddMember(ctx, groupID, &authzDomain.AddMemberInput{UserID: userID})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.Zero(t, invalidator.calls)
	})
}

func TestGroupUseCase_AssignRole(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV7())
	roleID := uuid.Must(uuid.NewV7())
	group := &authzDomain.Group{ID: groupID, Name: "finance-team", Version: 1}
	role := &authzDomain.Role{ID: roleID, Name: "analyst", Version: 1}

	t.Run("Success_AssignRoleToGroup", func(t *testing.T) {
		uc, mockGroupRepo, mockRoleRepo, invalidator := newGroupUseCaseForTest()

		mockGroupRepo.On("Get", ctx, groupID).Return(group, nil).Once()
		mockRoleRepo.On("Get", ctx, roleID).Return(role, nil).Once()
		mockGroupRepo.On("AssignRole", ctx, mock.MatchedBy(func(assignment *authzDomain.GroupRoleAssignment) bool {
			return assignment.GroupID == groupID && assignment.RoleID == roleID && assignment.IsPermanent()
		})).
			Return(nil).
			Once()

		err := uc.AssignRole(ctx, groupID, &authzDomain.AssignRoleInput{RoleID: roleID})

		require.NoError(t, err)
		assert.Equal(t, 1, invalidator.calls)
	})

	t.Run("Error_InvertedWindowRejected", func(t *testing.T) {
		uc, mockGroupRepo, _, _ := newGroupUseCaseForTest()

		from := time.Now().UTC()
		until := from.Add(-time.Minute)
		err := uc.AssignRole(ctx, groupID, &authzDomain.AssignRoleInput{
			RoleID:     roleID,
			ValidFrom:  &from,
			ValidUntil: &until,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		mockGroupRepo.AssertNotCalled(t, "AssignRole")
	})
}

func TestGroupUseCase_RemoveMember(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_RemoveInvalidatesCache", func(t *testing.T) {
		uc, mockGroupRepo, _, invalidator := newGroupUseCaseForTest()

		mockGroupRepo.On("RemoveMember", ctx, groupID, userID).Return(nil).Once()

		require.NoError(t, uc.RemoveMember(ctx, groupID, userID))
		assert.Equal(t, 1, invalidator.calls)
	})
}
