// Package domain defines the authorization domain model.
// Implements hybrid role-based and attribute-based access control with roles,
// groups, temporal grants, ABAC policies, and audit logging of every decision.
package domain

import (
	"github.com/google/uuid"
)

// PrincipalType identifies the kind of authenticated actor being authorized.
type PrincipalType string

const (
	// UserPrincipal is a human user authenticated by the identity provider.
	UserPrincipal PrincipalType = "USER"

	// ServicePrincipal is a machine identity (service-to-service calls).
	ServicePrincipal PrincipalType = "SERVICE"
)

// Principal is the authenticated actor on whose behalf an authorization check
// runs. It is supplied by the surrounding platform after credential
// validation; the authorization core never authenticates.
//
// PermissionsFromToken is the permission snapshot embedded in the validated
// credential. It is distinct from the live DB-resolved permission set and is
// only exposed to ABAC policies as the subject attribute
// "principal_permissions".
type Principal struct {
	ID                   uuid.UUID
	Type                 PrincipalType
	Enabled              bool
	PermissionsFromToken []string
}
