// Package usecase defines business logic interfaces for authorization
// decisions and the administration of roles, groups, policies and audit logs.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// RoleRepository defines persistence operations for roles and their
// permission associations. Implementations must support transaction-aware
// operations via context propagation.
type RoleRepository interface {
	// Create stores a new role in the repository.
	Create(ctx context.Context, role *authzDomain.Role) error

	// Update modifies an existing role using optimistic concurrency: the
	// write succeeds only when role.Version matches the stored version, and
	// bumps role.Version on success. Returns ErrVersionMismatch otherwise.
	Update(ctx context.Context, role *authzDomain.Role) error

	// Get retrieves a role by ID. Returns ErrRoleNotFound if not found.
	Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error)

	// GetByName retrieves a role by its unique name. Returns ErrRoleNotFound
	// if not found.
	GetByName(ctx context.Context, name string) (*authzDomain.Role, error)

	// List returns roles ordered by name.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error)

	// Delete removes a role and, through cascading, its permission links and
	// assignments. Returns ErrRoleNotFound if not found.
	Delete(ctx context.Context, roleID uuid.UUID) error

	// AddPermission links a permission to a role. Adding a link that already
	// exists is a no-op.
	AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error

	// RemovePermission unlinks a permission from a role.
	RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error

	// ListPermissions returns the permissions linked to a role, ordered by
	// name.
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error)

	// ListPermissionsForRoles returns the distinct permission names granted
	// by any of the given roles, ordered by name. An empty role set yields an
	// empty result.
	ListPermissionsForRoles(ctx context.Context, roleIDs []uuid.UUID) ([]string, error)
}

// PermissionRepository defines persistence operations for the permission
// catalog.
type PermissionRepository interface {
	// Create stores a new permission in the repository.
	Create(ctx context.Context, permission *authzDomain.Permission) error

	// GetByName retrieves a permission by its unique name. Returns
	// ErrPermissionNotFound if not found.
	GetByName(ctx context.Context, name string) (*authzDomain.Permission, error)

	// List returns permissions ordered by name.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.Permission, error)
}

// RoleAssignmentRepository defines persistence operations for direct
// user-to-role grants with optional validity windows.
type RoleAssignmentRepository interface {
	// Create stores a new role assignment.
	Create(ctx context.Context, assignment *authzDomain.RoleAssignment) error

	// Delete revokes a user's direct assignment of a role. Returns
	// ErrAssignmentNotFound if no such assignment exists.
	Delete(ctx context.Context, userID, roleID uuid.UUID) error

	// ListByUser returns all direct assignments for a user, active or not.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error)

	// ListActiveRolesForUser returns the roles directly assigned to a user
	// whose validity window contains the given instant, bounds inclusive.
	// An unknown user yields an empty result, not an error.
	ListActiveRolesForUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*authzDomain.Role, error)
}

// GroupRepository defines persistence operations for groups, their
// memberships and their role assignments.
type GroupRepository interface {
	// Create stores a new group in the repository.
	Create(ctx context.Context, group *authzDomain.Group) error

	// Update modifies an existing group using optimistic concurrency.
	// Returns ErrVersionMismatch when the stored version moved on.
	Update(ctx context.Context, group *authzDomain.Group) error

	// Get retrieves a group by ID. Returns ErrGroupNotFound if not found.
	Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error)

	// GetByName retrieves a group by its unique name. Returns
	// ErrGroupNotFound if not found.
	GetByName(ctx context.Context, name string) (*authzDomain.Group, error)

	// List returns groups ordered by name.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error)

	// Delete removes a group and, through cascading, its memberships and
	// role assignments. Returns ErrGroupNotFound if not found.
	Delete(ctx context.Context, groupID uuid.UUID) error

	// AddMember stores a group membership.
	AddMember(ctx context.Context, membership *authzDomain.GroupMembership) error

	// RemoveMember deletes a user's membership in a group. Returns
	// ErrMembershipNotFound if no such membership exists.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	// AssignRole stores a group-level role assignment.
	AssignRole(ctx context.Context, assignment *authzDomain.GroupRoleAssignment) error

	// RevokeRole deletes a group's assignment of a role. Returns
	// ErrAssignmentNotFound if no such assignment exists.
	RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error

	// ListActiveGroupsForUser returns the groups a user is an active member
	// of at the given instant. An unknown user yields an empty result.
	ListActiveGroupsForUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*authzDomain.Group, error)

	// ListActiveRolesForGroups returns the distinct roles assigned to any of
	// the given groups whose validity window contains the given instant. An
	// empty group set yields an empty result.
	ListActiveRolesForGroups(ctx context.Context, groupIDs []uuid.UUID, now time.Time) ([]*authzDomain.Role, error)
}

// PolicyRepository defines persistence operations for ABAC policies.
type PolicyRepository interface {
	// Create stores a new policy in the repository.
	Create(ctx context.Context, policy *authzDomain.AbacPolicy) error

	// Update modifies an existing policy using optimistic concurrency.
	// Returns ErrVersionMismatch when the stored version moved on.
	Update(ctx context.Context, policy *authzDomain.AbacPolicy) error

	// Get retrieves a policy by ID. Returns ErrPolicyNotFound if not found.
	Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error)

	// List returns policies ordered by name, inactive ones included.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error)

	// Delete removes a policy. Returns ErrPolicyNotFound if not found.
	Delete(ctx context.Context, policyID uuid.UUID) error

	// ListActiveForScope returns the active policies whose resource type and
	// action scopes cover the requested pair. An empty or wildcard scope
	// column covers everything.
	ListActiveForScope(ctx context.Context, action, resourceType string) ([]*authzDomain.AbacPolicy, error)
}

// AuditLogRepository defines persistence operations for authorization audit
// entries. Entries are append-only; the only delete path is retention.
type AuditLogRepository interface {
	// Create stores a new audit entry.
	Create(ctx context.Context, entry *authzDomain.AuthorizationAuditLogEntry) error

	// List returns entries ordered by timestamp descending.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error)

	// ListByUser returns a user's entries ordered by timestamp descending.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error)

	// DeleteOlderThan removes entries with a timestamp before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RoleResolver resolves the effective role set for a user at one instant:
// direct assignments plus one-hop group inheritance, expired windows
// excluded.
type RoleResolver interface {
	ResolveRoles(ctx context.Context, userID uuid.UUID, now time.Time) (*authzDomain.ResolvedRoles, error)
}

// PermissionResolver computes the effective permission names a user holds at
// one instant. The result is sorted and duplicate-free; an unknown user
// yields an empty set.
type PermissionResolver interface {
	ResolvePermissions(ctx context.Context, userID uuid.UUID, now time.Time) ([]string, error)
}

// PermissionCacheInvalidator drops cached permission resolutions. Mutating
// use cases call it after any write that can change a user's effective
// permissions.
type PermissionCacheInvalidator interface {
	InvalidatePermissions()
}

// PolicyEngine evaluates the active ABAC policies in scope for a request and
// folds their outcomes with deny-overrides semantics.
type PolicyEngine interface {
	// EvaluatePolicies returns the first explicit DENY match, else the first
	// ALLOW match, else a non-matched decision. Policies whose condition
	// trees are malformed are skipped and logged, never fatal.
	EvaluatePolicies(
		ctx context.Context,
		action string,
		resourceType string,
		attrs authzDomain.AttributeContext,
	) (*authzDomain.PolicyDecision, error)
}

// AuthorizationUseCase is the single decision entry point combining the RBAC
// gate with ABAC policy evaluation and audit logging.
type AuthorizationUseCase interface {
	// CheckPermission runs the full decision sequence. It returns an
	// AuthorizationResult for both allowed and denied outcomes; an error
	// means the decision could not be determined and callers must fail
	// closed.
	CheckPermission(
		ctx context.Context,
		input *authzDomain.CheckPermissionInput,
	) (*authzDomain.AuthorizationResult, error)

	// Require is the guard-clause form of CheckPermission: nil when access
	// is granted, an AuthorizationDeniedError when it is denied, and the
	// undetermined error when the decision could not be made.
	Require(ctx context.Context, input *authzDomain.CheckPermissionInput) error
}

// RoleUseCase defines business logic operations for managing roles, their
// permissions and their assignment to users.
type RoleUseCase interface {
	// Create stores a new role. Returns ErrInvalidInput when the name is
	// blank or already taken.
	Create(ctx context.Context, input *authzDomain.CreateRoleInput) (*authzDomain.Role, error)

	// Update modifies a role. Returns ErrRoleNotFound if the role doesn't
	// exist and ErrVersionMismatch when input.Version is stale.
	Update(ctx context.Context, roleID uuid.UUID, input *authzDomain.UpdateRoleInput) (*authzDomain.Role, error)

	// Get retrieves a role by ID. Returns ErrRoleNotFound if not found.
	Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error)

	// List returns roles ordered by name.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error)

	// Delete removes a role. Returns ErrRoleNotFound if not found.
	Delete(ctx context.Context, roleID uuid.UUID) error

	// AddPermission links a permission name to a role, creating the
	// permission in the catalog when it is new.
	AddPermission(ctx context.Context, roleID uuid.UUID, permissionName string) error

	// RemovePermission unlinks a permission name from a role.
	RemovePermission(ctx context.Context, roleID uuid.UUID, permissionName string) error

	// ListPermissions returns the permissions linked to a role.
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error)

	// AssignToUser grants a role to a user with an optional validity window.
	AssignToUser(ctx context.Context, userID uuid.UUID, input *authzDomain.AssignRoleInput) error

	// RevokeFromUser removes a user's direct assignment of a role.
	RevokeFromUser(ctx context.Context, userID, roleID uuid.UUID) error

	// ListAssignments returns a user's direct role assignments.
	ListAssignments(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error)
}

// GroupUseCase defines business logic operations for managing groups, their
// memberships and their role assignments.
type GroupUseCase interface {
	Create(ctx context.Context, input *authzDomain.CreateGroupInput) (*authzDomain.Group, error)
	Update(ctx context.Context, groupID uuid.UUID, input *authzDomain.UpdateGroupInput) (*authzDomain.Group, error)
	Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error)
	List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error)
	Delete(ctx context.Context, groupID uuid.UUID) error

	// AddMember adds a user to a group with an optional expiry.
	AddMember(ctx context.Context, groupID uuid.UUID, input *authzDomain.AddMemberInput) error

	// RemoveMember removes a user from a group.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	// AssignRole grants a role to every active member of a group, with an
	// optional validity window.
	AssignRole(ctx context.Context, groupID uuid.UUID, input *authzDomain.AssignRoleInput) error

	// RevokeRole removes a group's assignment of a role.
	RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error
}

// PolicyUseCase defines business logic operations for managing ABAC
// policies. Mutations validate the condition tree structurally before
// writing, so malformed policies never reach the evaluation path.
type PolicyUseCase interface {
	Create(ctx context.Context, input *authzDomain.CreatePolicyInput) (*authzDomain.AbacPolicy, error)
	Update(ctx context.Context, policyID uuid.UUID, input *authzDomain.UpdatePolicyInput) (*authzDomain.AbacPolicy, error)
	Get(ctx context.Context, policyID uuid.UUID) (*authzDomain.AbacPolicy, error)
	List(ctx context.Context, offset, limit int) ([]*authzDomain.AbacPolicy, error)
	Delete(ctx context.Context, policyID uuid.UUID) error
}

// AuditLogUseCase defines operations over authorization audit entries.
type AuditLogUseCase interface {
	// Record stores a decision entry. Failures are returned to the caller,
	// who decides whether they are fatal; the decision path treats them as
	// best-effort.
	Record(ctx context.Context, entry *authzDomain.AuthorizationAuditLogEntry) error

	// List returns entries ordered by timestamp descending.
	List(ctx context.Context, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error)

	// ListByUser returns a user's entries ordered by timestamp descending.
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*authzDomain.AuthorizationAuditLogEntry, error)

	// CleanOlderThan removes entries older than the cutoff, returning how
	// many were removed.
	CleanOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
