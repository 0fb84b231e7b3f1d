package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// NewMockDB creates a sqlmock-backed database handle for repository tests.
// Queries are matched with sqlmock.QueryMatcherRegexp. The handle is closed
// and expectations are verified automatically at test cleanup.
func NewMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "failed to create sqlmock")

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "unmet sqlmock expectations")
		_ = db.Close()
	})

	return db, mock
}
