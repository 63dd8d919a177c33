package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

type autoApprovalService interface {
	Current(ctx context.Context) (*models.AutoApprovalConfig, error)
	Update(ctx context.Context, doc models.AutoApprovalConfig, actor *models.JWTClaims) (*models.AutoApprovalConfig, error)
	Toggle(ctx context.Context, enabled bool, actor *models.JWTClaims) (*models.AutoApprovalConfig, error)
	Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResult, error)
}

// AutoApprovalHandler exposes the auto-approval document.
type AutoApprovalHandler struct {
	service autoApprovalService
}

// NewAutoApprovalHandler constructs the handler.
func NewAutoApprovalHandler(service autoApprovalService) *AutoApprovalHandler {
	return &AutoApprovalHandler{service: service}
}

// Get godoc
// @Summary Get auto-approval configuration
// @Tags AutoApproval
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auto-approval/config [get]
func (h *AutoApprovalHandler) Get(c *gin.Context) {
	cfg, err := h.service.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Update godoc
// @Summary Replace auto-approval configuration
// @Tags AutoApproval
// @Accept json
// @Produce json
// @Param payload body models.AutoApprovalConfig true "Configuration"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auto-approval/config [put]
func (h *AutoApprovalHandler) Update(c *gin.Context) {
	var doc models.AutoApprovalConfig
	if !bindJSON(c, &doc, "invalid auto-approval configuration") {
		return
	}
	cfg, err := h.service.Update(c.Request.Context(), doc, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Toggle godoc
// @Summary Enable or disable auto-approval
// @Tags AutoApproval
// @Accept json
// @Produce json
// @Param payload body dto.ToggleAutoApprovalRequest true "Toggle"
// @Success 200 {object} response.Envelope
// @Router /auto-approval/toggle [post]
func (h *AutoApprovalHandler) Toggle(c *gin.Context) {
	var req dto.ToggleAutoApprovalRequest
	if !bindJSON(c, &req, "invalid toggle payload") {
		return
	}
	if req.Enabled == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enabled is required"))
		return
	}
	cfg, err := h.service.Toggle(c.Request.Context(), *req.Enabled, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// Preview godoc
// @Summary Dry-run an item against the rules
// @Tags AutoApproval
// @Accept json
// @Produce json
// @Param payload body dto.PreviewRequest true "Hypothetical item"
// @Success 200 {object} response.Envelope
// @Router /auto-approval/preview [post]
func (h *AutoApprovalHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !bindJSON(c, &req, "invalid preview payload") {
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
