package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider("authz")
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.MeterProvider())

	defer func() { _ = provider.Shutdown(context.Background()) }()

	// The handler must serve the Prometheus exposition format
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("authz")
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	business, err := NewBusinessMetrics(provider.MeterProvider(), "authz")
	require.NoError(t, err)

	ctx := context.Background()
	business.RecordOperation(ctx, "authorization", "check_permission", "success")
	business.RecordDuration(ctx, "authorization", "check_permission", 5*time.Millisecond, "success")

	// Recorded metrics must show up on the scrape endpoint
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	provider.Handler().ServeHTTP(w, r)
	assert.Contains(t, w.Body.String(), "authz_operations_total")
}

func TestNoOpBusinessMetrics(t *testing.T) {
	business := NewNoOpBusinessMetrics()

	// Must not panic
	business.RecordOperation(context.Background(), "authorization", "check_permission", "success")
	business.RecordDuration(context.Background(), "authorization", "check_permission", time.Second, "error")
}
