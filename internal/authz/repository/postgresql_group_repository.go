package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// PostgreSQLGroupRepository implements Group persistence for PostgreSQL,
// covering the group itself, its memberships and its role assignments.
type PostgreSQLGroupRepository struct {
	db *sql.DB
}

// Create inserts a new Group into the PostgreSQL database.
func (p *PostgreSQLGroupRepository) Create(ctx context.Context, group *authzDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO groups (id, name, description, version, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		group.ID,
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
func (p *PostgreSQLGroupRepository) Update(ctx context.Context, group *authzDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE groups
			  SET name = $1,
			  	  description = $2,
				  version = version + 1,
				  updated_at = $3
			  WHERE id = $4 AND version = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		group.Name,
		group.Description,
		group.UpdatedAt,
		group.ID,
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

// Get retrieves a Group by ID from the PostgreSQL database.
func (p *PostgreSQLGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*authzDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM groups WHERE id = $1`

	var group authzDomain.Group

	err := querier.QueryRowContext(ctx, query, groupID).Scan(
		&group.ID,
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

	return &group, nil
}

// GetByName retrieves a Group by name from the PostgreSQL database.
func (p *PostgreSQLGroupRepository) GetByName(ctx context.Context, name string) (*authzDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM groups WHERE name = $1`

	var group authzDomain.Group

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&group.ID,
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

	return &group, nil
}

// List retrieves groups ordered by name with pagination support.
func (p *PostgreSQLGroupRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM groups ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list groups")
	}
	defer rows.Close()

	groups := []*authzDomain.Group{}
	for rows.Next() {
		var group authzDomain.Group
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Version,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
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
func (p *PostgreSQLGroupRepository) Delete(ctx context.Context, groupID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
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

// AddMember inserts a new GroupMembership into the PostgreSQL database.
func (p *PostgreSQLGroupRepository) AddMember(ctx context.Context, membership *authzDomain.GroupMembership) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO group_memberships (id, user_id, group_id, membership_type, valid_until, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.UserID,
		membership.GroupID,
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
func (p *PostgreSQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM group_memberships WHERE group_id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, groupID, userID)
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

// AssignRole inserts a new GroupRoleAssignment into the PostgreSQL database.
func (p *PostgreSQLGroupRepository) AssignRole(ctx context.Context, assignment *authzDomain.GroupRoleAssignment) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO group_role_assignments (id, group_id, role_id, valid_from, valid_until, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.GroupID,
		assignment.RoleID,
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
func (p *PostgreSQLGroupRepository) RevokeRole(ctx context.Context, groupID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM group_role_assignments WHERE group_id = $1 AND role_id = $2`

	result, err := querier.ExecContext(ctx, query, groupID, roleID)
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
func (p *PostgreSQLGroupRepository) ListActiveGroupsForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authzDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT g.id, g.name, g.description, g.version, g.created_at, g.updated_at
			  FROM groups g
			  JOIN group_memberships gm ON gm.group_id = g.id
			  WHERE gm.user_id = $1
			  	AND (gm.valid_until IS NULL OR gm.valid_until >= $2)
			  ORDER BY g.name`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active groups for user")
	}
	defer rows.Close()

	groups := []*authzDomain.Group{}
	for rows.Next() {
		var group authzDomain.Group
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Version,
			&group.CreatedAt,
			&group.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group")
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list active groups for user")
	}

	return groups, nil
}

// ListActiveRolesForGroups retrieves the distinct roles assigned to any of
// the given groups whose validity window contains the given instant.
func (p *PostgreSQLGroupRepository) ListActiveRolesForGroups(
	ctx context.Context,
	groupIDs []uuid.UUID,
	now time.Time,
) ([]*authzDomain.Role, error) {
	if len(groupIDs) == 0 {
		return []*authzDomain.Role{}, nil
	}

	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT r.id, r.name, r.description, r.version, r.created_at, r.updated_at
			  FROM roles r
			  JOIN group_role_assignments gra ON gra.role_id = r.id
			  WHERE gra.group_id = ANY($1)
			  	AND (gra.valid_from IS NULL OR gra.valid_from <= $2)
				AND (gra.valid_until IS NULL OR gra.valid_until >= $2)
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, pq.Array(groupIDs), now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active roles for groups")
	}
	defer rows.Close()

	roles := []*authzDomain.Role{}
	for rows.Next() {
		var role authzDomain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Description,
			&role.Version,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list active roles for groups")
	}

	return roles, nil
}

// NewPostgreSQLGroupRepository creates a new PostgreSQL Group repository.
func NewPostgreSQLGroupRepository(db *sql.DB) *PostgreSQLGroupRepository {
	return &PostgreSQLGroupRepository{db: db}
}
