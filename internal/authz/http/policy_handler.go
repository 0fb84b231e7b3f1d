package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/salomax/neotool-authz/internal/authz/domain"
	"github.com/salomax/neotool-authz/internal/authz/http/dto"
	authzUseCase "github.com/salomax/neotool-authz/internal/authz/usecase"
	"github.com/salomax/neotool-authz/internal/httputil"
	customValidation "github.com/salomax/neotool-authz/internal/validation"
)

// PolicyHandler handles HTTP requests for ABAC policy administration.
type PolicyHandler struct {
	policyUseCase authzUseCase.PolicyUseCase
	logger        *slog.Logger
}

// NewPolicyHandler creates a new policy handler.
func NewPolicyHandler(policyUseCase authzUseCase.PolicyUseCase, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		policyUseCase: policyUseCase,
		logger:        logger,
	}
}

// CreateHandler creates a new ABAC policy. The condition tree is validated
// structurally before the policy is stored, so malformed conditions are
// rejected here rather than discovered at check time.
// POST /v1/policies
// Returns 201 Created with the policy.
func (h *PolicyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.policyUseCase.Create(c.Request.Context(), &authzDomain.CreatePolicyInput{
		Name:         req.Name,
		Effect:       authzDomain.Effect(req.Effect),
		Condition:    req.Condition,
		IsActive:     req.IsActive,
		ResourceType: req.ResourceType,
		Action:       req.Action,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPolicyToResponse(policy))
}

// GetHandler retrieves a policy by ID.
// GET /v1/policies/:id
func (h *PolicyHandler) GetHandler(c *gin.Context) {
	policyID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	policy, err := h.policyUseCase.Get(c.Request.Context(), policyID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// ListHandler retrieves policies with pagination support, inactive ones
// included.
// GET /v1/policies?offset=0&limit=50
func (h *PolicyHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	policies, err := h.policyUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPoliciesToListResponse(policies))
}

// UpdateHandler modifies a policy under optimistic concurrency.
// PUT /v1/policies/:id
// Returns 409 Conflict when the carried version is stale.
func (h *PolicyHandler) UpdateHandler(c *gin.Context) {
	policyID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	policy, err := h.policyUseCase.Update(c.Request.Context(), policyID, &authzDomain.UpdatePolicyInput{
		Name:         req.Name,
		Effect:       authzDomain.Effect(req.Effect),
		Condition:    req.Condition,
		IsActive:     req.IsActive,
		ResourceType: req.ResourceType,
		Action:       req.Action,
		Version:      req.Version,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPolicyToResponse(policy))
}

// DeleteHandler removes a policy.
// DELETE /v1/policies/:id
// Returns 204 No Content.
func (h *PolicyHandler) DeleteHandler(c *gin.Context) {
	policyID, err := parseIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.policyUseCase.Delete(c.Request.Context(), policyID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
