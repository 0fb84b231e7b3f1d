package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
	"github.com/salomax/neotool-authz/internal/testutil"
)

func roleFixture() *authzDomain.Role {
	now := time.Now().UTC()
	return &authzDomain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        "finance-admin",
		Description: "Full access to finance resources",
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPostgreSQLRoleRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := roleFixture()

		mock.ExpectExec(`INSERT INTO roles`).
			WithArgs(role.ID, role.Name, role.Description, role.Version, role.CreatedAt, role.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), role))
	})

	t.Run("DuplicateNameIsConflict", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := roleFixture()

		mock.ExpectExec(`INSERT INTO roles`).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "roles_name_key"`))

		err := repo.Create(context.Background(), role)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLRoleRepository_Update(t *testing.T) {
	t.Run("BumpsVersionOnSuccess", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := roleFixture()
		role.Version = 3

		mock.ExpectExec(`UPDATE roles`).
			WithArgs(role.Name, role.Description, role.UpdatedAt, role.ID, uint64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), role))
		assert.Equal(t, uint64(4), role.Version)
	})

	t.Run("StaleVersionIsMismatch", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := roleFixture()
		role.Version = 2

		mock.ExpectExec(`UPDATE roles`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), role)
		assert.ErrorIs(t, err, authzDomain.ErrVersionMismatch)
		assert.Equal(t, uint64(2), role.Version)
	})
}

func TestPostgreSQLRoleRepository_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := roleFixture()

		rows := sqlmock.NewRows([]string{"id", "name", "description", "version", "created_at", "updated_at"}).
			AddRow(role.ID, role.Name, role.Description, role.Version, role.CreatedAt, role.UpdatedAt)
		mock.ExpectQuery(`SELECT id, name, description, version, created_at, updated_at\s+FROM roles WHERE id = \$1`).
			WithArgs(role.ID).
			WillReturnRows(rows)

		got, err := repo.Get(context.Background(), role.ID)
		require.NoError(t, err)
		assert.Equal(t, role.Name, got.Name)
		assert.Equal(t, role.Version, got.Version)
	})

	t.Run("MissingRoleIsNotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectQuery(`SELECT id, name, description, version, created_at, updated_at\s+FROM roles WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authzDomain.ErrRoleNotFound)
	})
}

func TestPostgreSQLRoleRepository_Delete(t *testing.T) {
	t.Run("MissingRoleIsNotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec(`DELETE FROM roles WHERE id = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authzDomain.ErrRoleNotFound)
	})
}

func TestPostgreSQLRoleRepository_ListPermissionsForRoles(t *testing.T) {
	t.Run("EmptyRoleSetSkipsQuery", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)

		names, err := repo.ListPermissionsForRoles(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("CollectsDistinctNames", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLRoleRepository(db)

		rows := sqlmock.NewRows([]string{"name"}).
			AddRow("transaction:read").
			AddRow("transaction:write")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT p.name`)).
			WillReturnRows(rows)

		names, err := repo.ListPermissionsForRoles(context.Background(), []uuid.UUID{uuid.Must(uuid.NewV7())})
		require.NoError(t, err)
		assert.Equal(t, []string{"transaction:read", "transaction:write"}, names)
	})
}
