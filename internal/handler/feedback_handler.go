package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

type feedbackService interface {
	ListForSubmitter(ctx context.Context, query dto.FeedbackQuery, actor *models.JWTClaims) ([]models.Feedback, error)
	ListForTarget(ctx context.Context, targetType models.VerifiableType, targetID string, actor *models.JWTClaims) ([]models.Feedback, error)
	MarkRead(ctx context.Context, id string, actor *models.JWTClaims) (*models.Feedback, error)
	MarkResolved(ctx context.Context, id string, actor *models.JWTClaims) (*models.Feedback, error)
}

// FeedbackHandler serves the submitter feedback inbox.
type FeedbackHandler struct {
	service feedbackService
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service feedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// List godoc
// @Summary List my feedback
// @Tags Feedback
// @Produce json
// @Param unreadOnly query bool false "Only unread"
// @Param unresolvedOnly query bool false "Only unresolved"
// @Success 200 {object} response.Envelope
// @Router /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	var query dto.FeedbackQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	items, err := h.service.ListForSubmitter(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListForTarget godoc
// @Summary List feedback for an item
// @Tags Feedback
// @Produce json
// @Param type path string true "ASSESSMENT or RESPONSE"
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /feedback/target/{type}/{id} [get]
func (h *FeedbackHandler) ListForTarget(c *gin.Context) {
	targetType := models.VerifiableType(strings.ToUpper(c.Param("type")))
	items, err := h.service.ListForTarget(c.Request.Context(), targetType, c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MarkRead godoc
// @Summary Mark feedback as read
// @Tags Feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} response.Envelope
// @Router /feedback/{id}/read [post]
func (h *FeedbackHandler) MarkRead(c *gin.Context) {
	feedback, err := h.service.MarkRead(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feedback, nil)
}

// MarkResolved godoc
// @Summary Mark feedback as resolved
// @Tags Feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} response.Envelope
// @Router /feedback/{id}/resolve [post]
func (h *FeedbackHandler) MarkResolved(c *gin.Context) {
	feedback, err := h.service.MarkResolved(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feedback, nil)
}
