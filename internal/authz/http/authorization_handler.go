package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/authz/http/dto"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
	"github.com/salomax/neotool-authz/internal/httputil"
	customValidation "github.com/salomax/neotool-authz/internal/validation"
)

// AuthorizationHandler handles authorization check requests.
type AuthorizationHandler struct {
	authorizationUseCase authzUseCase.AuthorizationUseCase
	logger               *slog.Logger
}

// NewAuthorizationHandler creates a new authorization handler.
func NewAuthorizationHandler(
	authorizationUseCase authzUseCase.AuthorizationUseCase,
	logger *slog.Logger,
) *AuthorizationHandler {
	return &AuthorizationHandler{
		authorizationUseCase: authorizationUseCase,
		logger:               logger,
	}
}

// CheckHandler evaluates one authorization check for the request principal.
// POST /v1/authorization/check
// Returns 200 OK with the decision for both allowed and denied outcomes;
// an undetermined decision maps to 503 so callers fail closed.
func (h *AuthorizationHandler) CheckHandler(c *gin.Context) {
	principal, ok := GetPrincipal(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CheckPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.authorizationUseCase.CheckPermission(c.Request.Context(), &authzDomain.CheckPermissionInput{
		Principal:          *principal,
		Permission:         req.Permission,
		ResourceType:       req.ResourceType,
		ResourceID:         req.ResourceID,
		ResourcePattern:    req.ResourcePattern,
		SubjectAttributes:  req.SubjectAttributes,
		ResourceAttributes: req.ResourceAttributes,
		ContextAttributes:  req.ContextAttributes,
		Metadata:           req.Metadata,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapResultToResponse(result))
}
