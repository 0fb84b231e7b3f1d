package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/testutil"
)

func policyColumns() []string {
	return []string{"id", "name", "effect", "condition", "is_active", "resource_type", "action", "version", "created_at", "updated_at"}
}

func TestPostgreSQLPolicyRepository_Get(t *testing.T) {
	t.Run("UnmarshalsCondition", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLPolicyRepository(db)
		policyID := uuid.Must(uuid.NewV7())
		now := time.Now().UTC()

		condition := `{"op":"eq","path":"subject.department","value":"engineering"}`
		rows := sqlmock.NewRows(policyColumns()).
			AddRow(policyID, "engineering-only", "DENY", []byte(condition), true, "transaction", "transaction:read", 1, now, now)
		mock.ExpectQuery(`SELECT .+ FROM abac_policies WHERE id = \$1`).
			WithArgs(policyID).
			WillReturnRows(rows)

		policy, err := repo.Get(context.Background(), policyID)
		require.NoError(t, err)
		assert.Equal(t, authzDomain.DenyEffect, policy.Effect)
		assert.Equal(t, authzDomain.OpEq, policy.Condition.Op)
		assert.Equal(t, "subject.department", policy.Condition.Path)
	})

	t.Run("MissingPolicyIsNotFound", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLPolicyRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM abac_policies WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(policyColumns()))

		_, err := repo.Get(context.Background(), uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authzDomain.ErrPolicyNotFound)
	})
}

func TestPostgreSQLPolicyRepository_Update(t *testing.T) {
	t.Run("StaleVersionIsMismatch", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLPolicyRepository(db)
		now := time.Now().UTC()
		policy := &authzDomain.AbacPolicy{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      "after-hours-deny",
			Effect:    authzDomain.DenyEffect,
			Condition: authzDomain.ConditionNode{Op: authzDomain.OpGt, Path: "environment.timestamp", Value: "18:00"},
			IsActive:  true,
			Version:   5,
			CreatedAt: now,
			UpdatedAt: now,
		}

		mock.ExpectExec(`UPDATE abac_policies`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), policy)
		assert.ErrorIs(t, err, authzDomain.ErrVersionMismatch)
	})
}

func TestPostgreSQLPolicyRepository_ListActiveForScope(t *testing.T) {
	t.Run("PassesScopeArguments", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLPolicyRepository(db)
		now := time.Now().UTC()

		condition := `{"op":"eq","path":"subject.department","value":"finance"}`
		rows := sqlmock.NewRows(policyColumns()).
			AddRow(uuid.Must(uuid.NewV7()), "finance-only", "ALLOW", []byte(condition), true, "transaction", "", 1, now, now)
		mock.ExpectQuery(`SELECT .+ FROM abac_policies\s+WHERE is_active = TRUE`).
			WithArgs("transaction:read", "transaction").
			WillReturnRows(rows)

		policies, err := repo.ListActiveForScope(context.Background(), "transaction:read", "transaction")
		require.NoError(t, err)
		require.Len(t, policies, 1)
		assert.Equal(t, "finance-only", policies[0].Name)
	})

	t.Run("NoMatchingScopeReturnsEmptySlice", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostgreSQLPolicyRepository(db)

		mock.ExpectQuery(`SELECT .+ FROM abac_policies\s+WHERE is_active = TRUE`).
			WillReturnRows(sqlmock.NewRows(policyColumns()))

		policies, err := repo.ListActiveForScope(context.Background(), "account:close", "account")
		require.NoError(t, err)
		assert.Empty(t, policies)
	})
}
