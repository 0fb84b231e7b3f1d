package domain

import (
	"time"

	"github.com/google/uuid"
)

// MembershipType describes the member's standing within a group. It is
// informational only and does not affect permission resolution.
type MembershipType string

const (
	MemberMembership MembershipType = "MEMBER"
	AdminMembership  MembershipType = "ADMIN"
	OwnerMembership  MembershipType = "OWNER"
)

// Group is a named collection of users for bulk role inheritance.
type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	Version     uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GroupMembership links a user to a group. Membership starts immediately on
// creation; only the end of the window is optional. An expired membership
// (now > ValidUntil) is excluded from role inheritance.
type GroupMembership struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	GroupID        uuid.UUID
	MembershipType MembershipType
	ValidUntil     *time.Time
	CreatedAt      time.Time
}

// IsActive reports whether the membership is valid at the given instant,
// bound inclusive.
func (m *GroupMembership) IsActive(now time.Time) bool {
	return m.ValidUntil == nil || !now.After(*m.ValidUntil)
}

// CreateGroupInput contains the parameters for creating a group.
type CreateGroupInput struct {
	Name        string
	Description string
}

// UpdateGroupInput contains the parameters for updating a group. Version must
// match the stored version or the update fails with a conflict.
type UpdateGroupInput struct {
	Name        string
	Description string
	Version     uint64
}

// AddMemberInput contains the parameters for adding a user to a group.
type AddMemberInput struct {
	UserID         uuid.UUID
	MembershipType MembershipType
	ValidUntil     *time.Time
}
