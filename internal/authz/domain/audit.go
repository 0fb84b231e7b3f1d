package domain

import (
	"time"

	"github.com/google/uuid"
)

// DecisionResult is the outcome of one stage of a check, or of the check as a
// whole.
type DecisionResult string

const (
	DecisionAllowed DecisionResult = "ALLOWED"
	DecisionDenied  DecisionResult = "DENIED"

	// DecisionNotEvaluated marks a stage that never ran: ABAC when RBAC
	// already denied, or both stages when the principal was disabled.
	DecisionNotEvaluated DecisionResult = "NOT_EVALUATED"
)

// AuthorizationAuditLogEntry is the immutable record of one authorization
// decision. Entries are write-once: the authorization path never mutates or
// deletes them (retention is an external concern). Groups and Roles are the
// snapshot resolved for this decision, not a live reference.
type AuthorizationAuditLogEntry struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Groups          []string
	Roles           []string
	RequestedAction string
	ResourceType    string
	ResourceID      string
	RBACResult      DecisionResult
	ABACResult      DecisionResult
	FinalDecision   DecisionResult
	Timestamp       time.Time
	Metadata        map[string]any
	CreatedAt       time.Time
}
