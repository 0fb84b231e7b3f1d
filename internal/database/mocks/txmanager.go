// Package mocks provides test doubles for database interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/salomax/neotool-authz/internal/database"
)

// MockTxManager is a TxManager that runs the transactional function against
// the ambient context, without opening a real transaction.
type MockTxManager struct{}

// NewMockTxManager creates a MockTxManager for the given test.
func NewMockTxManager(t *testing.T) database.TxManager {
	t.Helper()
	return &MockTxManager{}
}

// WithTx executes fn directly with the provided context.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
