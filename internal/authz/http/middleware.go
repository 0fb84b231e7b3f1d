package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
	"github.com/salomax/neotool-authz/internal/httputil"
)

// Identity headers injected by the platform gateway after credential
// validation. Authentication itself stays outside this service.
const (
	HeaderUserID               = "X-User-Id"
	HeaderPrincipalType        = "X-Principal-Type"
	HeaderPrincipalDisabled    = "X-Principal-Disabled"
	HeaderPrincipalPermissions = "X-Principal-Permissions"
)

// PrincipalMiddleware reads the gateway-injected identity headers into a
// Principal and stores it in the request context.
//
// Headers:
//   - X-User-Id: principal UUID (required)
//   - X-Principal-Type: USER or SERVICE (defaults to USER)
//   - X-Principal-Disabled: "true" marks the principal disabled
//   - X-Principal-Permissions: comma-separated permission snapshot from the
//     validated credential, exposed to ABAC policies only
//
// A missing or malformed X-User-Id header yields 401 Unauthorized.
func PrincipalMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawUserID := c.GetHeader(HeaderUserID)
		if rawUserID == "" {
			logger.Debug("principal resolution failed: missing user id header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			logger.Debug("principal resolution failed: malformed user id header",
				slog.String("user_id", rawUserID))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		principalType := authzDomain.UserPrincipal
		if raw := c.GetHeader(HeaderPrincipalType); raw != "" {
			switch authzDomain.PrincipalType(raw) {
			case authzDomain.UserPrincipal, authzDomain.ServicePrincipal:
				principalType = authzDomain.PrincipalType(raw)
			default:
				logger.Debug("principal resolution failed: unknown principal type",
					slog.String("principal_type", raw))
				httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
				c.Abort()
				return
			}
		}

		principal := &authzDomain.Principal{
			ID:      userID,
			Type:    principalType,
			Enabled: !strings.EqualFold(c.GetHeader(HeaderPrincipalDisabled), "true"),
		}
		if raw := c.GetHeader(HeaderPrincipalPermissions); raw != "" {
			principal.PermissionsFromToken = splitPermissions(raw)
		}

		ctx := WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequirePermission guards a route behind one permission. It must run after
// PrincipalMiddleware; the full decision sequence applies, including ABAC
// policies over the admin action itself and audit logging.
func RequirePermission(
	authorizationUseCase authzUseCase.AuthorizationUseCase,
	permission string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		err := authorizationUseCase.Require(c.Request.Context(), &authzDomain.CheckPermissionInput{
			Principal:  *principal,
			Permission: permission,
			Metadata: map[string]any{
				"http_method": c.Request.Method,
				"http_path":   c.FullPath(),
			},
		})
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

func splitPermissions(raw string) []string {
	parts := strings.Split(raw, ",")
	permissions := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			permissions = append(permissions, trimmed)
		}
	}
	return permissions
}
