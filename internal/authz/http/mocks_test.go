package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

type mockAuthorizationUseCase struct {
	mock.Mock
}

func (m *mockAuthorizationUseCase) CheckPermission(
	ctx context.Context,
	input *authzDomain.CheckPermissionInput,
) (*authzDomain.AuthorizationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.AuthorizationResult), args.Error(1)
}

func (m *mockAuthorizationUseCase) Require(ctx context.Context, input *authzDomain.CheckPermissionInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

type mockRoleUseCase struct {
	mock.Mock
}

func (m *mockRoleUseCase) Create(ctx context.Context, input *authzDomain.CreateRoleInput) (*authzDomain.Role, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	input *authzDomain.UpdateRoleInput,
) (*authzDomain.Role, error) {
	args := m.Called(ctx, roleID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Role), args.Error(1)
}

func (m *mockRoleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	args := m.Called(ctx, roleID)
	return args.Error(0)
}

func (m *mockRoleUseCase) AddPermission(ctx context.Context, roleID uuid.UUID, permissionName string) error {
	args := m.Called(ctx, roleID, permissionName)
	return args.Error(0)
}

func (m *mockRoleUseCase) RemovePermission(ctx context.Context, roleID uuid.UUID, permissionName string) error {
	args := m.Called(ctx, roleID, permissionName)
	return args.Error(0)
}

func (m *mockRoleUseCase) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Permission), args.Error(1)
}

func (m *mockRoleUseCase) AssignToUser(ctx context.Context, userID uuid.UUID, input *authzDomain.AssignRoleInput) error {
	args := m.Called(ctx, userID, input)
	return args.Error(0)
}

func (m *mockRoleUseCase) RevokeFromUser(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *mockRoleUseCase) ListAssignments(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.RoleAssignment), args.Error(1)
}

type mockGroupUseCase struct {
	mock.Mock
}

func (m *mockGroupUseCase) Create(ctx context.Context, input *authzDomain.CreateGroupInput) (*authzDomain.Group, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) Update(
	ctx context.Context,
	groupID uuid.UUID,
	input *authzDomain.UpdateGroupInput,
) (*authzDomain.Group, error) {
	args := m.Called(ctx, groupID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Group), args.Error(1)
}

func (m *mockGroupUseCase) Delete(ctx context.Context, groupID uuid.UUID) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *mockGroupUseCase) AddMember(ctx context.Context, groupID uuid.UUID, input *authzDomain.AddMemberInput) error {
	args := m.Called(ctx, groupID, input)
	return args.Error(0)
}

func (m *mockGroupUseCase) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *mockGroupUseCase) AssignRole(ctx context.Context, groupID uuid.UUID, input *authzDomain.AssignRoleInput) error {
	args := m.Called(ctx, groupID, input)
	return args.Error(0)
}

func (m *mockGroupUseCase) RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error {
	args := m.Called(ctx, groupID, roleID)
	return args.Error(0)
}

type mockPolicyUseCase struct {
	mock.Mock
}

func (m *mockPolicyUseCase) Create(ctx context.Context, input *authzDomain.CreatePolicyInput) (*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.AbacPolicy), args.Error(1)
}

func (m *mockPolicyUseCase) Update(
	ctx context.Context,
	policyID uuid.UUID,
	input *authzDomain.UpdatePolicyInput,
) (*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, policyID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.AbacPolicy), args.Error(1)
}

func (m *mockPolicyUseCase) Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.AbacPolicy), args.Error(1)
}

func (m *mockPolicyUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.AbacPolicy), args.Error(1)
}

func (m *mockPolicyUseCase) Delete(ctx context.Context, policyID uuid.UUID) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

type mockAuditLogUseCase struct {
	mock.Mock
}

func (m *mockAuditLogUseCase) Record(ctx context.Context, entry *authzDomain.AuthorizationAuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditLogUseCase) List(ctx context.Context, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.AuthorizationAuditLogEntry), args.Error(1)
}

func (m *mockAuditLogUseCase) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.AuthorizationAuditLogEntry), args.Error(1)
}

func (m *mockAuditLogUseCase) CleanOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
