// Package repository implements data persistence for authorization entities.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16)
// types.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// PostgreSQLRoleRepository implements Role persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the PostgreSQL database.
func (p *PostgreSQLRoleRepository) Create(ctx context.Context, role *authzDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO roles (id, name, description, version, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.Name,
		role.Description,
		role.Version,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "role name already taken")
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update modifies an existing Role under optimistic concurrency. The write
// carries the version the caller read; zero affected rows means another
// writer bumped it first.
func (p *PostgreSQLRoleRepository) Update(ctx context.Context, role *authzDomain.Role) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE roles
			  SET name = $1,
			  	  description = $2,
				  version = version + 1,
				  updated_at = $3
			  WHERE id = $4 AND version = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.Name,
		role.Description,
		role.UpdatedAt,
		role.ID,
		role.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "role name already taken")
		}
		return apperrors.Wrap(err, "failed to update role")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update role")
	}
	if rows == 0 {
		return authzDomain.ErrVersionMismatch
	}

	role.Version++
	return nil
}

// Get retrieves a Role by ID from the PostgreSQL database.
func (p *PostgreSQLRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM roles WHERE id = $1`

	var role authzDomain.Role

	err := querier.QueryRowContext(ctx, query, roleID).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Version,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}

	return &role, nil
}

// GetByName retrieves a Role by name from the PostgreSQL database.
func (p *PostgreSQLRoleRepository) GetByName(ctx context.Context, name string) (*authzDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM roles WHERE name = $1`

	var role authzDomain.Role

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.Version,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role by name")
	}

	return &role, nil
}

// List retrieves roles ordered by name with pagination support.
func (p *PostgreSQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM roles ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
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
		return nil, apperrors.Wrap(err, "failed to list roles")
	}

	return roles, nil
}

// Delete removes a Role; permission links and assignments cascade at the
// schema level.
func (p *PostgreSQLRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, roleID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}
	if rows == 0 {
		return authzDomain.ErrRoleNotFound
	}
	return nil
}

// AddPermission links a permission to a role. Linking twice is a no-op.
func (p *PostgreSQLRoleRepository) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO role_permissions (role_id, permission_id)
			  VALUES ($1, $2) ON CONFLICT DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, roleID, permissionID); err != nil {
		return apperrors.Wrap(err, "failed to add permission to role")
	}
	return nil
}

// RemovePermission unlinks a permission from a role.
func (p *PostgreSQLRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`

	if _, err := querier.ExecContext(ctx, query, roleID, permissionID); err != nil {
		return apperrors.Wrap(err, "failed to remove permission from role")
	}
	return nil
}

// ListPermissions retrieves the permissions linked to a role, ordered by
// name.
func (p *PostgreSQLRoleRepository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT p.id, p.name, p.created_at
			  FROM permissions p
			  JOIN role_permissions rp ON rp.permission_id = p.id
			  WHERE rp.role_id = $1
			  ORDER BY p.name`

	rows, err := querier.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}
	defer rows.Close()

	permissions := []*authzDomain.Permission{}
	for rows.Next() {
		var permission authzDomain.Permission
		if err := rows.Scan(&permission.ID, &permission.Name, &permission.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		permissions = append(permissions, &permission)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}

	return permissions, nil
}

// ListPermissionsForRoles retrieves the distinct permission names granted by
// any of the given roles, ordered by name.
func (p *PostgreSQLRoleRepository) ListPermissionsForRoles(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	querier := database.GetTx(ctx, p.db)

	query := `SELECT DISTINCT p.name
			  FROM permissions p
			  JOIN role_permissions rp ON rp.permission_id = p.id
			  WHERE rp.role_id = ANY($1)
			  ORDER BY p.name`

	rows, err := querier.QueryContext(ctx, query, pq.Array(roleIDs))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions for roles")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions for roles")
	}

	return names, nil
}

// NewPostgreSQLRoleRepository creates a new PostgreSQL Role repository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}

// isUniqueViolation checks if the error is a unique constraint violation.
// Works for both PostgreSQL ("duplicate key value violates unique
// constraint") and MySQL ("Error 1062: Duplicate entry") drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint") ||
		strings.Contains(errMsg, "Duplicate entry")
}
