package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext creates a gin test context with an optional JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// testPrincipal returns an enabled user principal for handler tests.
func testPrincipal(t *testing.T) *authzDomain.Principal {
	t.Helper()

	return &authzDomain.Principal{
		ID:      uuid.Must(uuid.NewV7()),
		Type:    authzDomain.UserPrincipal,
		Enabled: true,
	}
}

// attachPrincipal stores the principal on the context's request, the way
// PrincipalMiddleware does for real requests.
func attachPrincipal(c *gin.Context, principal *authzDomain.Principal) {
	c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))
}
