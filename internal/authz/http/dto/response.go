package dto

import (
	"time"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// CheckPermissionResponse is the outcome of one authorization check. Only
// the decision and its human-readable reason are exposed, never policy
// internals.
type CheckPermissionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// MapResultToResponse converts a domain authorization result to an API
// response.
func MapResultToResponse(result *authzDomain.AuthorizationResult) CheckPermissionResponse {
	return CheckPermissionResponse{
		Allowed: result.Allowed,
		Reason:  result.Reason,
	}
}

// RoleResponse represents a role in API responses.
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     uint64    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *authzDomain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		Description: role.Description,
		Version:     role.Version,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

// ListRolesResponse wraps a page of roles.
type ListRolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

// MapRolesToListResponse converts domain roles to a paginated API response.
func MapRolesToListResponse(roles []*authzDomain.Role) ListRolesResponse {
	response := ListRolesResponse{Roles: make([]RoleResponse, 0, len(roles))}
	for _, role := range roles {
		response.Roles = append(response.Roles, MapRoleToResponse(role))
	}
	return response
}

// PermissionResponse represents a permission in API responses.
type PermissionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListPermissionsResponse wraps a role's permission list.
type ListPermissionsResponse struct {
	Permissions []PermissionResponse `json:"permissions"`
}

// MapPermissionsToListResponse converts domain permissions to an API
// response.
func MapPermissionsToListResponse(permissions []*authzDomain.Permission) ListPermissionsResponse {
	response := ListPermissionsResponse{Permissions: make([]PermissionResponse, 0, len(permissions))}
	for _, permission := range permissions {
		response.Permissions = append(response.Permissions, PermissionResponse{
			ID:        permission.ID.String(),
			Name:      permission.Name,
			CreatedAt: permission.CreatedAt,
		})
	}
	return response
}

// RoleAssignmentResponse represents a direct user-to-role grant in API
// responses.
type RoleAssignmentResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	RoleID     string     `json:"role_id"`
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListRoleAssignmentsResponse wraps a user's direct role assignments.
type ListRoleAssignmentsResponse struct {
	Assignments []RoleAssignmentResponse `json:"assignments"`
}

// MapAssignmentsToListResponse converts domain role assignments to an API
// response.
func MapAssignmentsToListResponse(assignments []*authzDomain.RoleAssignment) ListRoleAssignmentsResponse {
	response := ListRoleAssignmentsResponse{Assignments: make([]RoleAssignmentResponse, 0, len(assignments))}
	for _, assignment := range assignments {
		response.Assignments = append(response.Assignments, RoleAssignmentResponse{
			ID:         assignment.ID.String(),
			UserID:     assignment.UserID.String(),
			RoleID:     assignment.RoleID.String(),
			ValidFrom:  assignment.ValidFrom,
			ValidUntil: assignment.ValidUntil,
			CreatedAt:  assignment.CreatedAt,
		})
	}
	return response
}

// GroupResponse represents a group in API responses.
type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     uint64    `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapGroupToResponse converts a domain group to an API response.
func MapGroupToResponse(group *authzDomain.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID.String(),
		Name:        group.Name,
		Description: group.Description,
		Version:     group.Version,
		CreatedAt:   group.CreatedAt,
		UpdatedAt:   group.UpdatedAt,
	}
}

// ListGroupsResponse wraps a page of groups.
type ListGroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

// MapGroupsToListResponse converts domain groups to a paginated API
// response.
func MapGroupsToListResponse(groups []*authzDomain.Group) ListGroupsResponse {
	response := ListGroupsResponse{Groups: make([]GroupResponse, 0, len(groups))}
	for _, group := range groups {
		response.Groups = append(response.Groups, MapGroupToResponse(group))
	}
	return response
}

// PolicyResponse represents an ABAC policy in API responses.
type PolicyResponse struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	Effect       string                    `json:"effect"`
	Condition    authzDomain.ConditionNode `json:"condition"`
	IsActive     bool                      `json:"is_active"`
	ResourceType string                    `json:"resource_type"`
	Action       string                    `json:"action"`
	Version      uint64                    `json:"version"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// MapPolicyToResponse converts a domain policy to an API response.
func MapPolicyToResponse(policy *authzDomain.AbacPolicy) PolicyResponse {
	return PolicyResponse{
		ID:           policy.ID.String(),
		Name:         policy.Name,
		Effect:       string(policy.Effect),
		Condition:    policy.Condition,
		IsActive:     policy.IsActive,
		ResourceType: policy.ResourceType,
		Action:       policy.Action,
		Version:      policy.Version,
		CreatedAt:    policy.CreatedAt,
		UpdatedAt:    policy.UpdatedAt,
	}
}

// ListPoliciesResponse wraps a page of policies.
type ListPoliciesResponse struct {
	Policies []PolicyResponse `json:"policies"`
}

// MapPoliciesToListResponse converts domain policies to a paginated API
// response.
func MapPoliciesToListResponse(policies []*authzDomain.AbacPolicy) ListPoliciesResponse {
	response := ListPoliciesResponse{Policies: make([]PolicyResponse, 0, len(policies))}
	for _, policy := range policies {
		response.Policies = append(response.Policies, MapPolicyToResponse(policy))
	}
	return response
}

// AuditLogEntryResponse represents one authorization decision in API
// responses.
type AuditLogEntryResponse struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Groups          []string       `json:"groups"`
	Roles           []string       `json:"roles"`
	RequestedAction string         `json:"requested_action"`
	ResourceType    string         `json:"resource_type,omitempty"`
	ResourceID      string         `json:"resource_id,omitempty"`
	RBACResult      string         `json:"rbac_result"`
	ABACResult      string         `json:"abac_result"`
	FinalDecision   string         `json:"final_decision"`
	Timestamp       time.Time      `json:"timestamp"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// ListAuditLogsResponse wraps a page of audit entries.
type ListAuditLogsResponse struct {
	Entries []AuditLogEntryResponse `json:"entries"`
}

// MapAuditEntriesToListResponse converts domain audit entries to a paginated
// API response.
func MapAuditEntriesToListResponse(entries []*authzDomain.AuthorizationAuditLogEntry) ListAuditLogsResponse {
	response := ListAuditLogsResponse{Entries: make([]AuditLogEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		response.Entries = append(response.Entries, AuditLogEntryResponse{
			ID:              entry.ID.String(),
			UserID:          entry.UserID.String(),
			Groups:          entry.Groups,
			Roles:           entry.Roles,
			RequestedAction: entry.RequestedAction,
			ResourceType:    entry.ResourceType,
			ResourceID:      entry.ResourceID,
			RBACResult:      string(entry.RBACResult),
			ABACResult:      string(entry.ABACResult),
			FinalDecision:   string(entry.FinalDecision),
			Timestamp:       entry.Timestamp,
			Metadata:        entry.Metadata,
		})
	}
	return response
}
