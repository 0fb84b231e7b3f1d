package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// MySQLGroupRepository implements Group persistence for MySQL, covering the
// group itself, its memberships and its role assignments. Uses BINARY(16)
// for UUID storage with transaction support via database.GetTx().
type MySQLGroupRepository struct {
	db *sql.DB
}

// Create inserts a new Group into the MySQL database.
func (m *MySQLGroupRepository) Create(ctx context.Context, group *authzDomain.Group) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO ` + "`groups`" + ` (id, name, description, version, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := group.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		group.Name,
		group.Description,
		group.Version,
		group.CreatedAt,
		group.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "group name already taken")
		}
		return apperrors.Wrap(err, "failed to create group")
	}
	return nil
}

// Update modifies an existing Group under optimistic concurrency.
func (m *MySQLGroupRepository) Update(ctx context.Context, group *authzDomain.Group) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE ` + "`groups`" + `
			  SET name = ?,
			  	  description = ?,
				  version = version + 1,
				  updated_at = ?
			  WHERE id = ? AND version = ?`

	id, err := group.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		group.Name,
		group.Description,
		group.UpdatedAt,
		id,
		group.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "group name already taken")
		}
		return apperrors.Wrap(err, "failed to update group")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update group")
	}
	if rows == 0 {
		return authzDomain.ErrVersionMismatch
	}

	group.Version++
	return nil
}

// Get retrieves a Group by ID from the MySQL database.
func (m *MySQLGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM ` + "`groups`" + ` WHERE id = ?`

	id, err := groupID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}

	var group authzDomain.Group
	var idBytes []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
		&group.Name,
		&group.Description,
		&group.Version,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group")
	}

	if err := group.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal group id")
	}

	return &group, nil
}

// GetByName retrieves a Group by name from the MySQL database.
func (m *MySQLGroupRepository) GetByName(ctx context.Context, name string) (*authzDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM ` + "`groups`" + ` WHERE name = ?`

	var group authzDomain.Group
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&idBytes,
		&group.Name,
		&group.Description,
		&group.Version,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group by name")
	}

	if err := group.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal group id")
	}

	return &group, nil
}

// List retrieves groups ordered by name with pagination support.
func (m *MySQLGroupRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM ` + "`groups`" + ` ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list groups")
	}
	defer rows.Close()

	groups := []*authzDomain.Group{}
	for rows.Next() {
		var group authzDomain.Group
		var idBytes []byte
		if err := rows.Scan(
			&idBytes,
			&group.Name,
			&group.Description,
			&group.Version,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
		}
		if err := group.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal group id")
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list groups")
	}

	return groups, nil
}

// Delete removes a Group; memberships and role assignments cascade at the
// schema level.
func (m *MySQLGroupRepository) Delete(ctx context.Context, groupID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := groupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM `+"`groups`"+` WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete group")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete group")
	}
	if rows == 0 {
		return authzDomain.ErrGroupNotFound
	}
	return nil
}

// AddMember inserts a new GroupMembership into the MySQL database.
func (m *MySQLGroupRepository) AddMember(ctx context.Context, membership *authzDomain.GroupMembership) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO group_memberships (id, user_id, group_id, membership_type, valid_until, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := membership.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal membership id")
	}
	userID, err := membership.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}
	groupID, err := membership.GroupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		groupID,
		membership.MembershipType,
		membership.ValidUntil,
		membership.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "user already a member of group")
		}
		return apperrors.Wrap(err, "failed to add group member")
	}
	return nil
}

// RemoveMember deletes a user's membership in a group.
func (m *MySQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM group_memberships WHERE group_id = ? AND user_id = ?`

	groupIDBytes, err := groupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(ctx, query, groupIDBytes, userIDBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove group member")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to remove group member")
	}
	if rows == 0 {
		return authzDomain.ErrMembershipNotFound
	}
	return nil
}

// AssignRole inserts a new GroupRoleAssignment into the MySQL database.
func (m *MySQLGroupRepository) AssignRole(ctx context.Context, assignment *authzDomain.GroupRoleAssignment) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO group_role_assignments (id, group_id, role_id, valid_from, valid_until, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := assignment.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal assignment id")
	}
	groupID, err := assignment.GroupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	roleID, err := assignment.RoleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		groupID,
		roleID,
		assignment.ValidFrom,
		assignment.ValidUntil,
		assignment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "role already assigned to group")
		}
		return apperrors.Wrap(err, "failed to assign role to group")
	}
	return nil
}

// RevokeRole deletes a group's assignment of a role.
func (m *MySQLGroupRepository) RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM group_role_assignments WHERE group_id = ? AND role_id = ?`

	groupIDBytes, err := groupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	roleIDBytes, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	result, err := querier.ExecContext(ctx, query, groupIDBytes, roleIDBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke role from group")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke role from group")
	}
	if rows == 0 {
		return authzDomain.ErrAssignmentNotFound
	}
	return nil
}

// ListActiveGroupsForUser retrieves the groups a user is an active member of
// at the given instant. Membership has no lower bound; only expiry is
// checked.
func (m *MySQLGroupRepository) ListActiveGroupsForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authzDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT g.id, g.name, g.description, g.version, g.created_at, g.updated_at
			  FROM ` + "`groups`" + ` g
			  JOIN group_memberships gm ON gm.group_id = g.id
			  WHERE gm.user_id = ?
			  	AND (gm.valid_until IS NULL OR gm.valid_until >= ?)
			  ORDER BY g.name`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, userIDBytes, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active groups for user")
	}
	defer rows.Close()

	groups := []*authzDomain.Group{}
	for rows.Next() {
		var group authzDomain.Group
		var idBytes []byte
		if err := rows.Scan(
			&idBytes,
			&group.Name,
			&group.Description,
			&group.Version,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
		}
		if err := group.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal group id")
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list active groups for user")
	}

	return groups, nil
}

// ListActiveRolesForGroups retrieves the distinct roles assigned to any of
// the given groups whose validity window contains the given instant. MySQL
// lacks array parameters so the IN clause is expanded per group.
func (m *MySQLGroupRepository) ListActiveRolesForGroups(
	ctx context.Context,
	groupIDs []uuid.UUID,
	now time.Time,
) ([]*authzDomain.Role, error) {
	if len(groupIDs) == 0 {
		return []*authzDomain.Role{}, nil
	}

	querier := database.GetTx(ctx, m.db)

	args, err := marshalUUIDArgs(groupIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group ids")
	}
	args = append(args, now, now)

	query := `SELECT DISTINCT r.id, r.name, r.description, r.version, r.created_at, r.updated_at
			  FROM roles r
			  JOIN group_role_assignments gra ON gra.role_id = r.id
			  WHERE gra.group_id IN (` + inPlaceholders(len(groupIDs)) + `)
			  	AND (gra.valid_from IS NULL OR gra.valid_from <= ?)
				AND (gra.valid_until IS NULL OR gra.valid_until >= ?)
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active roles for groups")
	}
	defer rows.Close()

	roles := []*authzDomain.Role{}
	for rows.Next() {
		var role authzDomain.Role
		var idBytes []byte
		if err := rows.Scan(
			&idBytes,
			&role.Name,
			&role.Description,
			&role.Version,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		if err := role.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role id")
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list active roles for groups")
	}

	return roles, nil
}

// NewMySQLGroupRepository creates a new MySQL Group repository.
func NewMySQLGroupRepository(db *sql.DB) *MySQLGroupRepository {
	return &MySQLGroupRepository{db: db}
}
