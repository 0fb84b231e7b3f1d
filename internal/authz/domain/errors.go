package domain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/salomax/neotool-authz/internal/errors"
)

// Authorization domain errors.
var (
	// ErrRoleNotFound indicates a role with the specified ID was not found.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrPermissionNotFound indicates a permission with the specified name was not found.
	ErrPermissionNotFound = errors.Wrap(errors.ErrNotFound, "permission not found")

	// ErrGroupNotFound indicates a group with the specified ID was not found.
	ErrGroupNotFound = errors.Wrap(errors.ErrNotFound, "group not found")

	// ErrMembershipNotFound indicates a group membership was not found.
	ErrMembershipNotFound = errors.Wrap(errors.ErrNotFound, "group membership not found")

	// ErrAssignmentNotFound indicates a role assignment was not found.
	ErrAssignmentNotFound = errors.Wrap(errors.ErrNotFound, "role assignment not found")

	// ErrPolicyNotFound indicates an ABAC policy with the specified ID was not found.
	ErrPolicyNotFound = errors.Wrap(errors.ErrNotFound, "policy not found")

	// ErrVersionMismatch indicates an optimistic lock failure during an
	// administrative update. The caller should re-read and retry.
	ErrVersionMismatch = errors.Wrap(errors.ErrConflict, "version mismatch")
)

// PolicyEvaluationError reports a malformed condition tree or unknown
// operator. The offending policy is skipped and logged as a configuration
// defect; evaluation of the remaining policies continues.
type PolicyEvaluationError struct {
	Node   string
	Reason string
}

// Error implements the error interface, naming the offending node.
func (e *PolicyEvaluationError) Error() string {
	return fmt.Sprintf("policy evaluation failed at node %q: %s", e.Node, e.Reason)
}

// NewPolicyEvaluationError creates a PolicyEvaluationError for the given node.
func NewPolicyEvaluationError(node, reason string) *PolicyEvaluationError {
	return &PolicyEvaluationError{Node: node, Reason: reason}
}

// AuthorizationDeniedError is raised by Require when a check denies access.
// It carries enough context for callers to log and surface the denial.
type AuthorizationDeniedError struct {
	UserID uuid.UUID
	Action string
	Reason string
}

// Error implements the error interface.
func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("user %s is not allowed to perform %q: %s", e.UserID, e.Action, e.Reason)
}

// Unwrap marks the denial as a forbidden domain error so transport layers map
// it to the right status code.
func (e *AuthorizationDeniedError) Unwrap() error {
	return errors.ErrForbidden
}
