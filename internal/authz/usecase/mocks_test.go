package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// mockRoleRepository is a mock implementation of RoleRepository for testing.
type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *authzDomain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *authzDomain.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*authzDomain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Role), args.Error(1)
}

func (m *mockRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	args := m.Called(ctx, roleID)
	return args.Error(0)
}

func (m *mockRoleRepository) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	args := m.Called(ctx, roleID, permissionID)
	return args.Error(0)
}

func (m *mockRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	args := m.Called(ctx, roleID, permissionID)
	return args.Error(0)
}

func (m *mockRoleRepository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Permission), args.Error(1)
}

func (m *mockRoleRepository) ListPermissionsForRoles(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	args := m.Called(ctx, roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockPermissionRepository is a mock implementation of PermissionRepository
// for testing.
type mockPermissionRepository struct {
	mock.Mock
}

func (m *mockPermissionRepository) Create(ctx context.Context, permission *authzDomain.Permission) error {
	args := m.Called(ctx, permission)
	return args.Error(0)
}

func (m *mockPermissionRepository) GetByName(ctx context.Context, name string) (*authzDomain.Permission, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Permission), args.Error(1)
}

func (m *mockPermissionRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Permission, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Permission), args.Error(1)
}

// mockRoleAssignmentRepository is a mock implementation of
// RoleAssignmentRepository for testing.
type mockRoleAssignmentRepository struct {
	mock.Mock
}

func (m *mockRoleAssignmentRepository) Create(ctx context.Context, assignment *authzDomain.RoleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockRoleAssignmentRepository) Delete(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *mockRoleAssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.RoleAssignment), args.Error(1)
}

func (m *mockRoleAssignmentRepository) ListActiveRolesForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authzDomain.Role, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Role), args.Error(1)
}

// mockGroupRepository is a mock implementation of GroupRepository for
// testing.
type mockGroupRepository struct {
	mock.Mock
}

func (m *mockGroupRepository) Create(ctx context.Context, group *authzDomain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *mockGroupRepository) Update(ctx context.Context, group *authzDomain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *mockGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) GetByName(ctx context.Context, name string) (*authzDomain.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) Delete(ctx context.Context, groupID uuid.UUID) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *mockGroupRepository) AddMember(ctx context.Context, membership *authzDomain.GroupMembership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *mockGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *mockGroupRepository) AssignRole(ctx context.Context, assignment *authzDomain.GroupRoleAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockGroupRepository) RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error {
	args := m.Called(ctx, groupID, roleID)
	return args.Error(0)
}

func (m *mockGroupRepository) ListActiveGroupsForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authzDomain.Group, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) ListActiveRolesForGroups(
	ctx context.Context,
	groupIDs []uuid.UUID,
	now time.Time,
) ([]*authzDomain.Role, error) {
	args := m.Called(ctx, groupIDs, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.Role), args.Error(1)
}

// mockPolicyRepository is a mock implementation of PolicyRepository for
// testing.
type mockPolicyRepository struct {
	mock.Mock
}

func (m *mockPolicyRepository) Create(ctx context.Context, policy *authzDomain.AbacPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *mockPolicyRepository) Update(ctx context.Context, policy *authzDomain.AbacPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *mockPolicyRepository) Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.AbacPolicy), args.Error(1)
}

func (m *mockPolicyRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.AbacPolicy), args.Error(1)
}

func (m *mockPolicyRepository) Delete(ctx context.Context, policyID uuid.UUID) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

func (m *mockPolicyRepository) ListActiveForScope(
	ctx context.Context,
	action, resourceType string,
) ([]*authzDomain.AbacPolicy, error) {
	args := m.Called(ctx, action, resourceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.AbacPolicy), args.Error(1)
}

// mockAuditLogRepository is a mock implementation of AuditLogRepository for
// testing.
type mockAuditLogRepository struct {
	mock.Mock
}

func (m *mockAuditLogRepository) Create(ctx context.Context, entry *authzDomain.AuthorizationAuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditLogRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authzDomain.AuthorizationAuditLogEntry), args.Error(1)
}

func (m *mockAuditLogRepository) ListByUser(
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

func (m *mockAuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// mockRoleResolver is a mock implementation of RoleResolver for testing.
type mockRoleResolver struct {
	mock.Mock
}

func (m *mockRoleResolver) ResolveRoles(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*authzDomain.ResolvedRoles, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.ResolvedRoles), args.Error(1)
}

// mockPermissionResolver is a mock implementation of PermissionResolver for
// testing.
type mockPermissionResolver struct {
	mock.Mock
}

func (m *mockPermissionResolver) ResolvePermissions(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]string, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// mockPolicyEngine is a mock implementation of PolicyEngine for testing.
type mockPolicyEngine struct {
	mock.Mock
}

func (m *mockPolicyEngine) EvaluatePolicies(
	ctx context.Context,
	action string,
	resourceType string,
	attrs authzDomain.AttributeContext,
) (*authzDomain.PolicyDecision, error) {
	args := m.Called(ctx, action, resourceType, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.PolicyDecision), args.Error(1)
}

// mockAuditLogUseCase is a mock implementation of AuditLogUseCase for
// testing.
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

// mockInvalidator records permission cache invalidations.
type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidatePermissions() {
	m.calls++
}
