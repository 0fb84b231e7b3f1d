package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/authz/http/dto"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	"github.com/salomax/neotool-authz/internal/httputil"
	customValidation "github.com/salomax/neotool-authz/internal/validation"
)

// GroupHandler handles HTTP requests for group administration.
type GroupHandler struct {
	groupUseCase authzUseCase.GroupUseCase
	logger       *slog.Logger
}

// NewGroupHandler creates a new group handler.
func NewGroupHandler(groupUseCase authzUseCase.GroupUseCase, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groupUseCase: groupUseCase,
		logger:       logger,
	}
}

// CreateHandler creates a new group.
// POST /v1/groups
// Returns 201 Created with the group.
func (h *GroupHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	group, err := h.groupUseCase.Create(c.Request.Context(), &authzDomain.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapGroupToResponse(group))
}

// GetHandler retrieves a group by ID.
// GET /v1/groups/:id
func (h *GroupHandler) GetHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	group, err := h.groupUseCase.Get(c.Request.Context(), groupID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupToResponse(group))
}

// ListHandler retrieves groups with pagination support.
// GET /v1/groups?offset=0&limit=50
func (h *GroupHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	groups, err := h.groupUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupsToListResponse(groups))
}

// UpdateHandler modifies a group under optimistic concurrency.
// PUT /v1/groups/:id
// Returns 409 Conflict when the carried version is stale.
func (h *GroupHandler) UpdateHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	group, err := h.groupUseCase.Update(c.Request.Context(), groupID, &authzDomain.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapGroupToResponse(group))
}

// DeleteHandler removes a group.
// DELETE /v1/groups/:id
// Returns 204 No Content.
func (h *GroupHandler) DeleteHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.groupUseCase.Delete(c.Request.Context(), groupID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// AddMemberHandler adds a user to a group with an optional expiry.
// POST /v1/groups/:id/members
// Returns 204 No Content.
func (h *GroupHandler) AddMemberHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.AddMemberRequest
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
	validUntil, err := parseOptionalTime(req.ValidUntil)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err = h.groupUseCase.AddMember(c.Request.Context(), groupID, &authzDomain.AddMemberInput{
		UserID:         userID,
		MembershipType: authzDomain.MembershipType(req.MembershipType),
		ValidUntil:     validUntil,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// RemoveMemberHandler removes a user from a group.
// DELETE /v1/groups/:id/members/:userID
// Returns 204 No Content.
func (h *GroupHandler) RemoveMemberHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	userID, err := parseIDParam(c, "userID")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.groupUseCase.RemoveMember(c.Request.Context(), groupID, userID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// AssignRoleHandler grants a role to every active member of the group, with
// an optional validity window.
// POST /v1/groups/:id/roles
// Returns 204 No Content.
func (h *GroupHandler) AssignRoleHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.GroupRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	roleID, err := uuid.Parse(req.RoleID)
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

	err = h.groupUseCase.AssignRole(c.Request.Context(), groupID, &authzDomain.AssignRoleInput{
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

// RevokeRoleHandler removes a group's assignment of a role.
// DELETE /v1/groups/:id/roles/:roleID
// Returns 204 No Content.
func (h *GroupHandler) RevokeRoleHandler(c *gin.Context) {
	groupID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	roleID, err := parseIDParam(c, "roleID")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.groupUseCase.RevokeRole(c.Request.Context(), groupID, roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
