package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named bundle of permissions. The version field implements
// optimistic concurrency: updates carry the version they read and fail with a
// conflict when another writer got there first.
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	Version     uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is a named atomic capability following the "<resource>:<action>"
// convention (e.g. "transaction:read"). Permissions are immutable once
// referenced by a role.
type Permission struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// CreateRoleInput contains the parameters for creating a role.
type CreateRoleInput struct {
	Name        string
	Description string
}

// UpdateRoleInput contains the parameters for updating a role. Version must
// match the stored version or the update fails with a conflict.
type UpdateRoleInput struct {
	Name        string
	Description string
	Version     uint64
}
