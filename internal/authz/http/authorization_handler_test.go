package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/authz/http/dto"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

func setupAuthorizationHandler(t *testing.T) (*AuthorizationHandler, *mockAuthorizationUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mockAuthorizationUseCase{}
	handler := NewAuthorizationHandler(mockUseCase, testLogger())

	return handler, mockUseCase
}

func TestAuthorizationHandler_CheckHandler(t *testing.T) {
	t.Run("Success_Allowed", func(t *testing.T) {
		handler, mockUseCase := setupAuthorizationHandler(t)
		principal := testPrincipal(t)

		request := dto.CheckPermissionRequest{
			Permission:   "transaction:read",
			ResourceType: "transaction",
			ResourceID:   "txn-42",
			SubjectAttributes: map[string]any{
				"department": "engineering",
			},
		}

		mockUseCase.On("CheckPermission", mock.Anything, mock.MatchedBy(func(input *authzDomain.CheckPermissionInput) bool {
			return input.Principal.ID == principal.ID &&
				input.Permission == "transaction:read" &&
				input.ResourceType == "transaction" &&
				input.ResourceID == "txn-42" &&
				input.SubjectAttributes["department"] == "engineering"
		})).Return(&authzDomain.AuthorizationResult{
			Allowed: true,
			Reason:  authzDomain.ReasonAccessGranted,
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorization/check", request)
		attachPrincipal(c, principal)

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.CheckPermissionResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response.Allowed)
		assert.Equal(t, authzDomain.ReasonAccessGranted, response.Reason)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_DeniedIsStillOK", func(t *testing.T) {
		handler, mockUseCase := setupAuthorizationHandler(t)
		principal := testPrincipal(t)

		request := dto.CheckPermissionRequest{Permission: "transaction:delete"}

		mockUseCase.On("CheckPermission", mock.Anything, mock.Anything).
			Return(&authzDomain.AuthorizationResult{
				Allowed: false,
				Reason:  authzDomain.ReasonABACDeny,
			}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorization/check", request)
		attachPrincipal(c, principal)

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.CheckPermissionResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.False(t, response.Allowed)
		assert.Equal(t, authzDomain.ReasonABACDeny, response.Reason)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingPrincipal", func(t *testing.T) {
		handler, _ := setupAuthorizationHandler(t)

		request := dto.CheckPermissionRequest{Permission: "transaction:read"}

		c, w := createTestContext(http.MethodPost, "/v1/authorization/check", request)

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_BlankPermission", func(t *testing.T) {
		handler, _ := setupAuthorizationHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/authorization/check", map[string]any{
			"resource_type": "transaction",
		})
		attachPrincipal(c, testPrincipal(t))

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_UndeterminedFailsClosed", func(t *testing.T) {
		handler, mockUseCase := setupAuthorizationHandler(t)

		request := dto.CheckPermissionRequest{Permission: "transaction:read"}

		mockUseCase.On("CheckPermission", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrUndetermined, "failed to resolve permissions")).Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorization/check", request)
		attachPrincipal(c, testPrincipal(t))

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}
