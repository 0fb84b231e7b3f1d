package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/salomax/neotool-authz/internal/authz/http/dto"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
	"github.com/salomax/neotool-authz/internal/httputil"
)

// AuditLogHandler handles HTTP requests for authorization audit entries.
// Entries are read-only over HTTP; retention runs through the CLI.
type AuditLogHandler struct {
	auditLogUseCase authzUseCase.AuditLogUseCase
	logger          *slog.Logger
}

// NewAuditLogHandler creates a new audit log handler.
func NewAuditLogHandler(auditLogUseCase authzUseCase.AuditLogUseCase, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUseCase: auditLogUseCase,
		logger:          logger,
	}
}

// ListHandler retrieves audit entries ordered by timestamp descending,
// optionally filtered to one user.
// GET /v1/audit-logs?offset=0&limit=50&user_id=<uuid>
func (h *AuditLogHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if rawUserID := c.Query("user_id"); rawUserID != "" {
		userID, parseErr := parseQueryUUID(c, "user_id")
		if parseErr != nil {
			httputil.HandleValidationErrorGin(c, parseErr, h.logger)
			return
		}

		entries, listErr := h.auditLogUseCase.ListByUser(c.Request.Context(), userID, offset, limit)
		if listErr != nil {
			httputil.HandleErrorGin(c, listErr, h.logger)
			return
		}
		c.JSON(http.StatusOK, dto.MapAuditEntriesToListResponse(entries))
		return
	}

	entries, err := h.auditLogUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEntriesToListResponse(entries))
}

// parseQueryUUID parses a UUID query parameter, wrapping failures as invalid
// input.
func parseQueryUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Query(name))
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.ErrInvalidInput, name+" must be a valid UUID")
	}
	return id, nil
}
