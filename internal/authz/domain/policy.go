package domain

import (
	"time"

	"github.com/google/uuid"
)

// Effect is the outcome an ABAC policy produces when its condition matches.
type Effect string

const (
	AllowEffect Effect = "ALLOW"
	DenyEffect  Effect = "DENY"
)

// WildcardScope matches any action or resource type when declared explicitly
// on a policy. Scope matching is otherwise exact.
const WildcardScope = "*"

// AbacPolicy is an attribute-based rule evaluated at authorization time.
// Only active policies participate in evaluation. A DENY policy always takes
// precedence over ALLOW when both match (deny-overrides).
//
// Action and ResourceType scope the policy: empty or "*" values match any
// requested action/resource type, anything else matches exactly.
type AbacPolicy struct {
	ID           uuid.UUID
	Name         string
	Effect       Effect
	Condition    ConditionNode
	IsActive     bool
	ResourceType string
	Action       string
	Version      uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AppliesTo reports whether the policy's scope covers the requested action
// and resource type.
func (p *AbacPolicy) AppliesTo(action, resourceType string) bool {
	return scopeMatches(p.Action, action) && scopeMatches(p.ResourceType, resourceType)
}

func scopeMatches(scope, requested string) bool {
	return scope == "" || scope == WildcardScope || scope == requested
}

// PolicyDecision is the aggregate outcome of evaluating all applicable
// policies for one check. Matched is false when no policy condition held, in
// which case the engine has no opinion and the RBAC result stands.
type PolicyDecision struct {
	Matched bool
	Effect  Effect
}

// CreatePolicyInput contains the parameters for creating an ABAC policy.
type CreatePolicyInput struct {
	Name         string
	Effect       Effect
	Condition    ConditionNode
	IsActive     bool
	ResourceType string
	Action       string
}

// UpdatePolicyInput contains the parameters for updating an ABAC policy.
// Version must match the stored version or the update fails with a conflict.
type UpdatePolicyInput struct {
	Name         string
	Effect       Effect
	Condition    ConditionNode
	IsActive     bool
	ResourceType string
	Action       string
	Version      uint64
}
