package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
)

// principalProbe wires PrincipalMiddleware in front of a handler that
// captures the resolved principal.
func principalProbe(t *testing.T) (*gin.Engine, **authzDomain.Principal) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var captured *authzDomain.Principal
	router := gin.New()
	router.Use(PrincipalMiddleware(testLogger()))
	router.GET("/probe", func(c *gin.Context) {
		if principal, ok := GetPrincipal(c.Request.Context()); ok {
			captured = principal
		}
		c.Status(http.StatusNoContent)
	})

	return router, &captured
}

func TestPrincipalMiddleware(t *testing.T) {
	t.Run("Success_ParsesIdentityHeaders", func(t *testing.T) {
		router, captured := principalProbe(t)
		userID := uuid.Must(uuid.NewV7())

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderUserID, userID.String())
		req.Header.Set(HeaderPrincipalType, string(authzDomain.ServicePrincipal))
		req.Header.Set(HeaderPrincipalPermissions, "transaction:read, transaction:write,,")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		if assert.NotNil(t, *captured) {
			principal := *captured
			assert.Equal(t, userID, principal.ID)
			assert.Equal(t, authzDomain.ServicePrincipal, principal.Type)
			assert.True(t, principal.Enabled)
			assert.Equal(t, []string{"transaction:read", "transaction:write"}, principal.PermissionsFromToken)
		}
	})

	t.Run("Success_DefaultsToEnabledUserPrincipal", func(t *testing.T) {
		router, captured := principalProbe(t)
		userID := uuid.Must(uuid.NewV7())

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderUserID, userID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		if assert.NotNil(t, *captured) {
			principal := *captured
			assert.Equal(t, authzDomain.UserPrincipal, principal.Type)
			assert.True(t, principal.Enabled)
			assert.Empty(t, principal.PermissionsFromToken)
		}
	})

	t.Run("Success_DisabledFlagIsCaseInsensitive", func(t *testing.T) {
		router, captured := principalProbe(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderUserID, uuid.Must(uuid.NewV7()).String())
		req.Header.Set(HeaderPrincipalDisabled, "TRUE")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		if assert.NotNil(t, *captured) {
			assert.False(t, (*captured).Enabled)
		}
	})

	t.Run("Error_MissingUserIDHeader", func(t *testing.T) {
		router, captured := principalProbe(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, *captured)
	})

	t.Run("Error_MalformedUserIDHeader", func(t *testing.T) {
		router, captured := principalProbe(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderUserID, "not-a-uuid")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, *captured)
	})

	t.Run("Error_UnknownPrincipalType", func(t *testing.T) {
		router, captured := principalProbe(t)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderUserID, uuid.Must(uuid.NewV7()).String())
		req.Header.Set(HeaderPrincipalType, "ROBOT")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, *captured)
	})
}

func TestRequirePermission(t *testing.T) {
	setup := func(t *testing.T, mockUseCase *mockAuthorizationUseCase) (*gin.Engine, *bool) {
		t.Helper()

		gin.SetMode(gin.TestMode)

		reached := false
		router := gin.New()
		router.Use(PrincipalMiddleware(testLogger()))
		router.GET("/admin",
			RequirePermission(mockUseCase, "role:manage", testLogger()),
			func(c *gin.Context) {
				reached = true
				c.Status(http.StatusNoContent)
			},
		)

		return router, &reached
	}

	t.Run("Success_GrantedRequestPassesThrough", func(t *testing.T) {
		mockUseCase := &mockAuthorizationUseCase{}
		router, reached := setup(t, mockUseCase)
		userID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Require", mock.Anything, mock.MatchedBy(func(input *authzDomain.CheckPermissionInput) bool {
			return input.Principal.ID == userID &&
				input.Permission == "role:manage" &&
				input.Metadata["http_method"] == http.MethodGet &&
				input.Metadata["http_path"] == "/admin"
		})).Return(nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(HeaderUserID, userID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, *reached)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_DeniedRequestIsForbidden", func(t *testing.T) {
		mockUseCase := &mockAuthorizationUseCase{}
		router, reached := setup(t, mockUseCase)
		userID := uuid.Must(uuid.NewV7())

		mockUseCase.On("Require", mock.Anything, mock.Anything).
			Return(&authzDomain.AuthorizationDeniedError{
				UserID: userID,
				Action: "role:manage",
				Reason: authzDomain.ReasonABACDeny,
			}).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(HeaderUserID, userID.String())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, *reached)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingPrincipalSkipsDecision", func(t *testing.T) {
		mockUseCase := &mockAuthorizationUseCase{}

		gin.SetMode(gin.TestMode)

		reached := false
		router := gin.New()
		router.GET("/admin",
			RequirePermission(mockUseCase, "role:manage", testLogger()),
			func(c *gin.Context) {
				reached = true
				c.Status(http.StatusNoContent)
			},
		)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, reached)
		mockUseCase.AssertNotCalled(t, "Require")
	})
}
