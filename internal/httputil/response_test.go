package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

func performError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleErrorGin(c, err, nil)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		errorCode  string
	}{
		{"not found", apperrors.Wrap(apperrors.ErrNotFound, "role not found"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{"invalid input", apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"undetermined", apperrors.Wrap(apperrors.ErrUndetermined, "db down"), http.StatusServiceUnavailable, "undetermined"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := performError(t, tt.err)
			assert.Equal(t, tt.statusCode, w.Code)
			assert.Equal(t, tt.errorCode, body.Error)
		})
	}
}

func TestHandleErrorGin_InternalDoesNotLeakDetails(t *testing.T) {
	_, body := performError(t, errors.New("connection to 10.0.0.5 refused"))
	assert.NotContains(t, body.Message, "10.0.0.5")
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("invalid JSON"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("name: must not be blank"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
