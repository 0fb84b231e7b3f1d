package domain

import (
	"time"

	"github.com/google/uuid"
)

// Decision reason strings returned to callers. Reasons are safe to log but
// never include policy condition internals.
const (
	ReasonAccessGranted     = "Access granted"
	ReasonABACDeny          = "ABAC policy explicitly denies access"
	ReasonPrincipalDisabled = "principal is disabled"
)

// AuthorizationResult is the synchronous answer to a permission check.
type AuthorizationResult struct {
	Allowed bool
	Reason  string
}

// CheckPermissionInput carries everything one authorization check needs. The
// attribute maps feed the ABAC attribute context; Metadata is copied verbatim
// into the audit entry.
type CheckPermissionInput struct {
	Principal          Principal
	Permission         string
	ResourceType       string
	ResourceID         string
	ResourcePattern    string
	SubjectAttributes  map[string]any
	ResourceAttributes map[string]any
	ContextAttributes  map[string]any
	Metadata           map[string]any
}

// ResolvedRoles is the effective role set for a principal at one instant,
// together with the group snapshot that contributed to it (for auditing).
type ResolvedRoles struct {
	Roles  []Role
	Groups []Group
}

// RoleNames returns the role name snapshot for audit entries.
func (r *ResolvedRoles) RoleNames() []string {
	names := make([]string, 0, len(r.Roles))
	for _, role := range r.Roles {
		names = append(names, role.Name)
	}
	return names
}

// GroupNames returns the group name snapshot for audit entries.
func (r *ResolvedRoles) GroupNames() []string {
	names := make([]string, 0, len(r.Groups))
	for _, group := range r.Groups {
		names = append(names, group.Name)
	}
	return names
}

// AssignRoleInput contains the parameters for granting a role, directly to a
// user or to a group, with an optional validity window.
type AssignRoleInput struct {
	RoleID     uuid.UUID
	ValidFrom  *time.Time
	ValidUntil *time.Time
}
