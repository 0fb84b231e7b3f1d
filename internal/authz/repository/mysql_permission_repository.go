package repository

import (
	"context"
	"database/sql"
	"errors"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// MySQLPermissionRepository implements Permission persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLPermissionRepository struct {
	db *sql.DB
}

// Create inserts a new Permission into the MySQL database.
func (m *MySQLPermissionRepository) Create(ctx context.Context, permission *authzDomain.Permission) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO permissions (id, name, created_at) VALUES (?, ?, ?)`

	id, err := permission.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal permission id")
	}

	_, err = querier.ExecContext(ctx, query, id, permission.Name, permission.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "permission name already taken")
		}
		return apperrors.Wrap(err, "failed to create permission")
	}
	return nil
}

// GetByName retrieves a Permission by name from the MySQL database.
func (m *MySQLPermissionRepository) GetByName(ctx context.Context, name string) (*authzDomain.Permission, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, created_at FROM permissions WHERE name = ?`

	var permission authzDomain.Permission
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&idBytes,
		&permission.Name,
		&permission.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission by name")
	}

	if err := permission.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal permission id")
	}

	return &permission, nil
}

// List retrieves permissions ordered by name with pagination support.
func (m *MySQLPermissionRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Permission, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, created_at FROM permissions ORDER BY name LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
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
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}

	return permissions, nil
}

// NewMySQLPermissionRepository creates a new MySQL Permission repository.
func NewMySQLPermissionRepository(db *sql.DB) *MySQLPermissionRepository {
	return &MySQLPermissionRepository{db: db}
}
