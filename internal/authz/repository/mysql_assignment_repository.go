package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// MySQLRoleAssignmentRepository implements RoleAssignment persistence for
// MySQL. The active-window predicate mirrors RoleAssignment.IsActive: both
// bounds inclusive, NULL means unbounded.
type MySQLRoleAssignmentRepository struct {
	db *sql.DB
}

// Create inserts a new RoleAssignment into the MySQL database.
func (m *MySQLRoleAssignmentRepository) Create(ctx context.Context, assignment *authzDomain.RoleAssignment) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO role_assignments (id, user_id, role_id, valid_from, valid_until, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := assignment.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal assignment id")
	}
	userID, err := assignment.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}
	roleID, err := assignment.RoleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		roleID,
		assignment.ValidFrom,
		assignment.ValidUntil,
		assignment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "role already assigned to user")
		}
		return apperrors.Wrap(err, "failed to create role assignment")
	}
	return nil
}

// Delete revokes a user's direct assignment of a role.
func (m *MySQLRoleAssignmentRepository) Delete(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM role_assignments WHERE user_id = ? AND role_id = ?`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}
	roleIDBytes, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	result, err := querier.ExecContext(ctx, query, userIDBytes, roleIDBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role assignment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role assignment")
	}
	if rows == 0 {
		return authzDomain.ErrAssignmentNotFound
	}
	return nil
}

// ListByUser retrieves all direct assignments for a user, active or not,
// newest first.
func (m *MySQLRoleAssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, role_id, valid_from, valid_until, created_at
			  FROM role_assignments WHERE user_id = ? ORDER BY created_at DESC`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, userIDBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role assignments")
	}
	defer rows.Close()

	assignments := []*authzDomain.RoleAssignment{}
	for rows.Next() {
		var assignment authzDomain.RoleAssignment
		var idBytes, userBytes, roleBytes []byte
		if err := rows.Scan(
			&idBytes,
			&userBytes,
			&roleBytes,
			&assignment.ValidFrom,
			&assignment.ValidUntil,
			&assignment.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role assignment")
		}
		if err := assignment.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal assignment id")
		}
		if err := assignment.UserID.UnmarshalBinary(userBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
		}
		if err := assignment.RoleID.UnmarshalBinary(roleBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role id")
		}
		assignments = append(assignments, &assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list role assignments")
	}

	return assignments, nil
}

// ListActiveRolesForUser retrieves the roles directly assigned to a user
// whose validity window contains the given instant.
func (m *MySQLRoleAssignmentRepository) ListActiveRolesForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authzDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT DISTINCT r.id, r.name, r.description, r.version, r.created_at, r.updated_at
			  FROM roles r
			  JOIN role_assignments ra ON ra.role_id = r.id
			  WHERE ra.user_id = ?
			  	AND (ra.valid_from IS NULL OR ra.valid_from <= ?)
				AND (ra.valid_until IS NULL OR ra.valid_until >= ?)
			  ORDER BY r.name`

	userIDBytes, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, userIDBytes, now, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active roles for user")
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
		return nil, apperrors.Wrap(err, "failed to list active roles for user")
	}

	return roles, nil
}

// NewMySQLRoleAssignmentRepository creates a new MySQL RoleAssignment
// repository.
func NewMySQLRoleAssignmentRepository(db *sql.DB) *MySQLRoleAssignmentRepository {
	return &MySQLRoleAssignmentRepository{db: db}
}
