package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

type achievementService interface {
	ListForDonor(ctx context.Context, donorID string, actor *models.JWTClaims) ([]models.DonorAchievement, error)
	Stats(ctx context.Context, donorID string, actor *models.JWTClaims) (*models.DonorVerificationStats, error)
}

// AchievementHandler exposes donor badges.
type AchievementHandler struct {
	service achievementService
}

// NewAchievementHandler constructs the handler.
func NewAchievementHandler(service achievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

// List godoc
// @Summary List donor achievements
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /donors/{id}/achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	items, err := h.service.ListForDonor(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Stats godoc
// @Summary Donor verified delivery statistics
// @Tags Donors
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {object} response.Envelope
// @Router /donors/{id}/stats [get]
func (h *AchievementHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
