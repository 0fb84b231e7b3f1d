package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/authz/http/dto"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	apperrors "github.com/salomax/neotool-authz/internal/errors"
	"github.com/salomax/neotool-authz/internal/httputil"
	customValidation "github.com/salomax/neotool-authz/internal/validation"
)

// RoleHandler handles HTTP requests for role administration.
type RoleHandler struct {
	roleUseCase authzUseCase.RoleUseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roleUseCase authzUseCase.RoleUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUseCase,
		logger:      logger,
	}
}

// CreateHandler creates a new role.
// POST /v1/roles
// Returns 201 Created with the role.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Create(c.Request.Context(), &authzDomain.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// GetHandler retrieves a role by ID.
// GET /v1/roles/:id
func (h *RoleHandler) GetHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// ListHandler retrieves roles with pagination support.
// GET /v1/roles?offset=0&limit=50
func (h *RoleHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	roles, err := h.roleUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToListResponse(roles))
}

// UpdateHandler modifies a role under optimistic concurrency.
// PUT /v1/roles/:id
// Returns 409 Conflict when the carried version is stale.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Update(c.Request.Context(), roleID, &authzDomain.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// DeleteHandler removes a role.
// DELETE /v1/roles/:id
// Returns 204 No Content.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.roleUseCase.Delete(c.Request.Context(), roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// AddPermissionHandler links a permission name to a role, creating the
// permission in the catalog when it is new.
// POST /v1/roles/:id/permissions
// Returns 204 No Content.
func (h *RoleHandler) AddPermissionHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.RolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.roleUseCase.AddPermission(c.Request.Context(), roleID, req.Name); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RemovePermissionHandler unlinks a permission name from a role.
// DELETE /v1/roles/:id/permissions/:name
// Returns 204 No Content.
func (h *RoleHandler) RemovePermissionHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.roleUseCase.RemovePermission(c.Request.Context(), roleID, c.Param("name")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListPermissionsHandler retrieves the permissions linked to a role.
// GET /v1/roles/:id/permissions
func (h *RoleHandler) ListPermissionsHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	permissions, err := h.roleUseCase.ListPermissions(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToListResponse(permissions))
}

// AssignHandler grants the role to a user with an optional validity window.
// POST /v1/roles/:id/assignments
// Returns 204 No Content.
func (h *RoleHandler) AssignHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	validFrom, err := parseOptionalTime(req.ValidFrom)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	validUntil, err := parseOptionalTime(req.ValidUntil)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err = h.roleUseCase.AssignToUser(c.Request.Context(), userID, &authzDomain.AssignRoleInput{
		RoleID:     roleID,
		ValidFrom:  validFrom,
		ValidUntil: validUntil,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RevokeHandler removes a user's direct assignment of the role.
// DELETE /v1/roles/:id/assignments/:userID
// Returns 204 No Content.
func (h *RoleHandler) RevokeHandler(c *gin.Context) {
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	userID, err := parseIDParam(c, "userID")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.roleUseCase.RevokeFromUser(c.Request.Context(), userID, roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListAssignmentsHandler retrieves a user's direct role assignments.
// GET /v1/users/:userID/assignments
func (h *RoleHandler) ListAssignmentsHandler(c *gin.Context) {
	userID, err := parseIDParam(c, "userID")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	assignments, err := h.roleUseCase.ListAssignments(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAssignmentsToListResponse(assignments))
}

// parseIDParam parses a UUID path parameter, wrapping failures as invalid
// input.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.ErrInvalidInput, name+" must be a valid UUID")
	}
	return id, nil
}

// parseOptionalTime parses an optional RFC 3339 timestamp.
func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "timestamps must be RFC 3339")
	}
	return &parsed, nil
}
