package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

type profileService interface {
	Profile(ctx context.Context, claims *models.JWTClaims) (*models.User, error)
}

// AuthHandler exposes the caller's identity.
type AuthHandler struct {
	service profileService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc profileService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Me godoc
// @Summary Current user profile
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
