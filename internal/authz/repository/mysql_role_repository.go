package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// MySQLRoleRepository implements Role persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLRoleRepository struct {
	db *sql.DB
}

// Create inserts a new Role into the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLRoleRepository) Create(ctx context.Context, role *authzDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO roles (id, name, description, version, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLRoleRepository) Update(ctx context.Context, role *authzDomain.Role) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE roles
			  SET name = ?,
			  	  description = ?,
				  version = version + 1,
				  updated_at = ?
			  WHERE id = ? AND version = ?`

	id, err := role.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		role.Name,
		role.Description,
		role.UpdatedAt,
		id,
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

// Get retrieves a Role by ID from the MySQL database using BINARY(16) for UUIDs.
func (m *MySQLRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*authzDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM roles WHERE id = ?`

	id, err := roleID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal role id")
	}

	var role authzDomain.Role
	var idBytes []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
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

	if err := role.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role id")
	}

	return &role, nil
}

// GetByName retrieves a Role by name from the MySQL database.
func (m *MySQLRoleRepository) GetByName(ctx context.Context, name string) (*authzDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM roles WHERE name = ?`

	var role authzDomain.Role
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&idBytes,
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

	if err := role.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role id")
	}

	return &role, nil
}

// List retrieves roles ordered by name with pagination support.
func (m *MySQLRoleRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Role, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, description, version, created_at, updated_at
			  FROM roles ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
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
		return nil, apperrors.Wrap(err, "failed to list roles")
	}

	return roles, nil
}

// Delete removes a Role; permission links and assignments cascade at the
// schema level.
func (m *MySQLRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
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
func (m *MySQLRoleRepository) AddPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT IGNORE INTO role_permissions (role_id, permission_id)
			  VALUES (?, ?)`

	roleIDBytes, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}
	permissionIDBytes, err := permissionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permission id")
	}

	if _, err := querier.ExecContext(ctx, query, roleIDBytes, permissionIDBytes); err != nil {
		return apperrors.Wrap(err, "failed to add permission to role")
	}
	return nil
}

// RemovePermission unlinks a permission from a role.
func (m *MySQLRoleRepository) RemovePermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?`

	roleIDBytes, err := roleID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role id")
	}
	permissionIDBytes, err := permissionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permission id")
	}

	if _, err := querier.ExecContext(ctx, query, roleIDBytes, permissionIDBytes); err != nil {
		return apperrors.Wrap(err, "failed to remove permission from role")
	}
	return nil
}

// ListPermissions retrieves the permissions linked to a role, ordered by
// name.
func (m *MySQLRoleRepository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*authzDomain.Permission, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT p.id, p.name, p.created_at
			  FROM permissions p
			  JOIN role_permissions rp ON rp.permission_id = p.id
			  WHERE rp.role_id = ?
			  ORDER BY p.name`

	id, err := roleID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal role id")
	}

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}
	defer rows.Close()

	permissions := []*authzDomain.Permission{}
	for rows.Next() {
		var permission authzDomain.Permission
		var idBytes []byte
		if err := rows.Scan(&idBytes, &permission.Name, &permission.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		if err := permission.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal permission id")
		}
		permissions = append(permissions, &permission)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}

	return permissions, nil
}

// ListPermissionsForRoles retrieves the distinct permission names granted by
// any of the given roles, ordered by name. MySQL lacks array parameters so
// the IN clause is expanded per role.
func (m *MySQLRoleRepository) ListPermissionsForRoles(ctx context.Context, roleIDs []uuid.UUID) ([]string, error) {
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	querier := database.GetTx(ctx, m.db)

	args, err := marshalUUIDArgs(roleIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal role ids")
	}

	query := `SELECT DISTINCT p.name
			  FROM permissions p
			  JOIN role_permissions rp ON rp.permission_id = p.id
			  WHERE rp.role_id IN (` + inPlaceholders(len(roleIDs)) + `)
			  ORDER BY p.name`

	rows, err := querier.QueryContext(ctx, query, args...)
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

// NewMySQLRoleRepository creates a new MySQL Role repository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

// marshalUUIDArgs converts UUIDs to BINARY(16) query arguments.
func marshalUUIDArgs(ids []uuid.UUID) ([]any, error) {
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		b, err := id.MarshalBinary()
		if err != nil {
			return nil, err
		}
		args = append(args, b)
	}
	return args, nil
}

// inPlaceholders builds a "?, ?, ..." list for MySQL IN clauses.
func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
