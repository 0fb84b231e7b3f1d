package repository

import (
	"context"
	"database/sql"
	"errors"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/database"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

// PostgreSQLPermissionRepository implements Permission persistence for
// PostgreSQL.
type PostgreSQLPermissionRepository struct {
	db *sql.DB
}

// Create inserts a new Permission into the PostgreSQL database.
func (p *PostgreSQLPermissionRepository) Create(ctx context.Context, permission *authzDomain.Permission) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO permissions (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, permission.ID, permission.Name, permission.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "permission name already taken")
		}
		return apperrors.Wrap(err, "failed to create permission")
	}
	return nil
}

// GetByName retrieves a Permission by name from the PostgreSQL database.
func (p *PostgreSQLPermissionRepository) GetByName(ctx context.Context, name string) (*authzDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, created_at FROM permissions WHERE name = $1`

	var permission authzDomain.Permission

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&permission.ID,
		&permission.Name,
		&permission.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission by name")
	}

	return &permission, nil
}

// List retrieves permissions ordered by name with pagination support.
func (p *PostgreSQLPermissionRepository) List(ctx context.Context, offset, limit int) ([]*authzDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, created_at FROM permissions ORDER BY name OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
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
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}

	return permissions, nil
}

// NewPostgreSQLPermissionRepository creates a new PostgreSQL Permission
// repository.
func NewPostgreSQLPermissionRepository(db *sql.DB) *PostgreSQLPermissionRepository {
	return &PostgreSQLPermissionRepository{db: db}
}
