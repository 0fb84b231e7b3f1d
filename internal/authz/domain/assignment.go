package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoleAssignment is a direct grant of a role to a user, optionally bounded by
// a temporal validity window. Nil bounds mean unbounded on that side.
type RoleAssignment struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	RoleID     uuid.UUID
	ValidFrom  *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
}

// IsActive reports whether the assignment is valid at the given instant.
// Both bounds are inclusive: an assignment with ValidUntil equal to now is
// still active.
func (a *RoleAssignment) IsActive(now time.Time) bool {
	return windowActive(a.ValidFrom, a.ValidUntil, now)
}

// IsPermanent reports whether the assignment has no temporal bounds.
func (a *RoleAssignment) IsPermanent() bool {
	return a.ValidFrom == nil && a.ValidUntil == nil
}

// IsTemporary reports whether the assignment has at least one temporal bound.
func (a *RoleAssignment) IsTemporary() bool {
	return !a.IsPermanent()
}

// GroupRoleAssignment grants a role to all valid members of a group, with the
// same active-window semantics as RoleAssignment. This is the indirection
// through which most production grants flow (group -> role -> permissions).
type GroupRoleAssignment struct {
	ID         uuid.UUID
	GroupID    uuid.UUID
	RoleID     uuid.UUID
	ValidFrom  *time.Time
	ValidUntil *time.Time
	CreatedAt  time.Time
}

// IsActive reports whether the assignment is valid at the given instant,
// bounds inclusive.
func (a *GroupRoleAssignment) IsActive(now time.Time) bool {
	return windowActive(a.ValidFrom, a.ValidUntil, now)
}

// IsPermanent reports whether the assignment has no temporal bounds.
func (a *GroupRoleAssignment) IsPermanent() bool {
	return a.ValidFrom == nil && a.ValidUntil == nil
}

// IsTemporary reports whether the assignment has at least one temporal bound.
func (a *GroupRoleAssignment) IsTemporary() bool {
	return !a.IsPermanent()
}

// windowActive implements the shared validity-window check:
// (validFrom == nil || now >= validFrom) && (validUntil == nil || now <= validUntil).
func windowActive(validFrom, validUntil *time.Time, now time.Time) bool {
	if validFrom != nil && now.Before(*validFrom) {
		return false
	}
	if validUntil != nil && now.After(*validUntil) {
		return false
	}
	return true
}
