// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	customValidation "github.com/salomax/neotool-authz/internal/validation"
)

// CheckPermissionRequest carries one authorization check. The principal
// itself comes from the request context, not the body.
type CheckPermissionRequest struct {
	Permission         string         `json:"permission" binding:"required"`
	ResourceType       string         `json:"resource_type"`
	ResourceID         string         `json:"resource_id"`
	ResourcePattern    string         `json:"resource_pattern"`
	SubjectAttributes  map[string]any `json:"subject_attributes"`
	ResourceAttributes map[string]any `json:"resource_attributes"`
	ContextAttributes  map[string]any `json:"context_attributes"`
	Metadata           map[string]any `json:"metadata"`
}

// Validate checks if the check permission request is valid.
func (r *CheckPermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permission,
			validation.Required,
			customValidation.PermissionName,
		),
	)
}

// CreateRoleRequest contains the parameters for creating a role.
type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
	)
}

// UpdateRoleRequest contains the parameters for updating a role. Version
// must match the stored version or the update fails with a conflict.
type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Version     uint64 `json:"version" binding:"required"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.Version, validation.Required),
	)
}

// RolePermissionRequest names a permission to link to or unlink from a role.
type RolePermissionRequest struct {
	Name string `json:"name" binding:"required"`
}

// Validate checks if the role permission request is valid.
func (r *RolePermissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.PermissionName,
		),
	)
}

// AssignRoleRequest grants a role with an optional validity window. The
// timestamps are RFC 3339; both bounds are inclusive.
type AssignRoleRequest struct {
	UserID     string  `json:"user_id" binding:"required"`
	ValidFrom  *string `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

// Validate checks if the assign role request is valid.
func (r *AssignRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.UUIDString),
		validation.Field(&r.ValidFrom, customValidation.RFC3339String),
		validation.Field(&r.ValidUntil, customValidation.RFC3339String),
	)
}

// CreateGroupRequest contains the parameters for creating a group.
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Validate checks if the create group request is valid.
func (r *CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
	)
}

// UpdateGroupRequest contains the parameters for updating a group.
type UpdateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Version     uint64 `json:"version" binding:"required"`
}

// Validate checks if the update group request is valid.
func (r *UpdateGroupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.Version, validation.Required),
	)
}

// AddMemberRequest adds a user to a group. MembershipType defaults to
// MEMBER when omitted.
type AddMemberRequest struct {
	UserID         string  `json:"user_id" binding:"required"`
	MembershipType string  `json:"membership_type"`
	ValidUntil     *string `json:"valid_until"`
}

// Validate checks if the add member request is valid.
func (r *AddMemberRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.UUIDString),
		validation.Field(&r.MembershipType, validation.In(
			"",
			string(authzDomain.MemberMembership),
			string(authzDomain.AdminMembership),
			string(authzDomain.OwnerMembership),
		)),
		validation.Field(&r.ValidUntil, customValidation.RFC3339String),
	)
}

// GroupRoleRequest grants a role to a group with an optional validity
// window.
type GroupRoleRequest struct {
	RoleID     string  `json:"role_id" binding:"required"`
	ValidFrom  *string `json:"valid_from"`
	ValidUntil *string `json:"valid_until"`
}

// Validate checks if the group role request is valid.
func (r *GroupRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RoleID, validation.Required, customValidation.UUIDString),
		validation.Field(&r.ValidFrom, customValidation.RFC3339String),
		validation.Field(&r.ValidUntil, customValidation.RFC3339String),
	)
}

// CreatePolicyRequest contains the parameters for creating an ABAC policy.
// The condition tree is validated structurally by the use case before the
// policy is stored.
type CreatePolicyRequest struct {
	Name         string                    `json:"name" binding:"required"`
	Effect       string                    `json:"effect" binding:"required"`
	Condition    authzDomain.ConditionNode `json:"condition" binding:"required"`
	IsActive     bool                      `json:"is_active"`
	ResourceType string                    `json:"resource_type"`
	Action       string                    `json:"action"`
}

// Validate checks if the create policy request is valid.
func (r *CreatePolicyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.Effect, validation.Required, validation.In(
			string(authzDomain.AllowEffect),
			string(authzDomain.DenyEffect),
		)),
	)
}

// UpdatePolicyRequest contains the parameters for updating an ABAC policy.
type UpdatePolicyRequest struct {
	Name         string                    `json:"name" binding:"required"`
	Effect       string                    `json:"effect" binding:"required"`
	Condition    authzDomain.ConditionNode `json:"condition" binding:"required"`
	IsActive     bool                      `json:"is_active"`
	ResourceType string                    `json:"resource_type"`
	Action       string                    `json:"action"`
	Version      uint64                    `json:"version" binding:"required"`
}

// Validate checks if the update policy request is valid.
func (r *UpdatePolicyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
		),
		validation.Field(&r.Effect, validation.Required, validation.In(
			string(authzDomain.AllowEffect),
			string(authzDomain.DenyEffect),
		)),
		validation.Field(&r.Version, validation.Required),
	)
}
