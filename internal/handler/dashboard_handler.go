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

type dashboardService interface {
	ForUser(ctx context.Context, actor *models.JWTClaims) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get godoc
// @Summary Role dashboard
// @Description Coordinators get queue health, submitters their own submissions, donors their statistics.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	summary, cacheHit, err := h.service.ForUser(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, withCacheMeta(c, cacheHit))
}
