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

// PostgreSQLRoleAssignmentRepository implements RoleAssignment persistence
// for PostgreSQL. The active-window predicate mirrors
// RoleAssignment.IsActive: both bounds inclusive, NULL means unbounded.
type PostgreSQLRoleAssignmentRepository struct {
	db *sql.DB
}

// Create inserts a new RoleAssignment into the PostgreSQL database.
func (p *PostgreSQLRoleAssignmentRepository) Create(ctx context.Context, assignment *authzDomain.RoleAssignment) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO role_assignments (id, user_id, role_id, valid_from, valid_until, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		assignment.ID,
		assignment.UserID,
		assignment.RoleID,
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
func (p *PostgreSQLRoleAssignmentRepository) Delete(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM role_assignments WHERE user_id = $1 AND role_id = $2`

	result, err := querier.ExecContext(ctx, query, userID, roleID)
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
func (p *PostgreSQLRoleAssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*authzDomain.RoleAssignment, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, role_id, valid_from, valid_until, created_at
			  FROM role_assignments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role assignments")
	}
	defer rows.Close()

	assignments := []*authzDomain.RoleAssignment{}
	for rows.Next() {
		var assignment authzDomain.RoleAssignment
		if err := rows.Scan(
			&assignment.ID,
			&assignment.UserID,
			&assignment.RoleID,
			&assignment.ValidFrom,
			&assignment.ValidUntil,
			&assignment.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role assignment")
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
func (p *PostgreSQLRoleAssignmentRepository) ListActiveRolesForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authzDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT r.id, r.name, r.description, r.version, r.created_at, r.updated_at
			  FROM roles r
			  JOIN role_assignments ra ON ra.role_id = r.id
			  WHERE ra.user_id = $1
			  	AND (ra.valid_from IS NULL OR ra.valid_from <= $2)
				AND (ra.valid_until IS NULL OR ra.valid_until >= $2)
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active roles for user")
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
		return nil, apperrors.Wrap(err, "failed to list active roles for user")
	}

	return roles, nil
}

// NewPostgreSQLRoleAssignmentRepository creates a new PostgreSQL
// RoleAssignment repository.
func NewPostgreSQLRoleAssignmentRepository(db *sql.DB) *PostgreSQLRoleAssignmentRepository {
	return &PostgreSQLRoleAssignmentRepository{db: db}
}
