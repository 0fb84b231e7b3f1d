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

func auditEntryFixture() *authzDomain.AuthorizationAuditLogEntry {
	now := time.Now().UTC()
	return &authzDomain.AuthorizationAuditLogEntry{
		ID:              uuid.Must(uuid.NewV7()),
		UserID:          uuid.Must(uuid.NewV7()),
		Groups:          []string{"finance-team"},
		Roles:           []string{"analyst"},
		RequestedAction: "transaction:read",
		ResourceType:    "transaction",
		ResourceID:      "tx-42",
		RBACResult:      authzDomain.DecisionAllowed,
		ABACResult:      authzDomain.DecisionAllowed,
		FinalDecision:   authzDomain.DecisionAllowed,
		Timestamp:       now,
		Metadata:        map[string]any{"request_id": "req-1"},
	}
}

func TestPostgreSQLAuditLogRepository_Create(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLAuditLogRepository(db)
	entry := auditEntryFixture()

	mock.ExpectExec(`INSERT INTO authorization_audit_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), entry))
}

func TestPostgreSQLAuditLogRepository_ListByUser(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLAuditLogRepository(db)
	entry := auditEntryFixture()

	columns := []string{
		"id", "user_id", "groups", "roles", "requested_action", "resource_type", "resource_id",
		"rbac_result", "abac_result", "final_decision", "timestamp", "metadata", "created_at",
	}
	rows := sqlmock.NewRows(columns).AddRow(
		entry.ID, entry.UserID, "{finance-team}", "{analyst}",
		entry.RequestedAction, entry.ResourceType, entry.ResourceID,
		entry.RBACResult, entry.ABACResult, entry.FinalDecision,
		entry.Timestamp, []byte(`{"request_id":"req-1"}`), entry.Timestamp,
	)
	mock.ExpectQuery(`SELECT .+ FROM authorization_audit_logs\s+WHERE user_id = \$1`).
		WithArgs(entry.UserID, 0, 10).
		WillReturnRows(rows)

	entries, err := repo.ListByUser(context.Background(), entry.UserID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"finance-team"}, entries[0].Groups)
	assert.Equal(t, []string{"analyst"}, entries[0].Roles)
	assert.Equal(t, "req-1", entries[0].Metadata["request_id"])
}

func TestPostgreSQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewPostgreSQLAuditLogRepository(db)
	cutoff := time.Now().UTC().AddDate(0, -6, 0)

	mock.ExpectExec(`DELETE FROM authorization_audit_logs WHERE timestamp < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	count, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}
