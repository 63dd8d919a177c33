package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

type submissionService interface {
	SubmitAssessment(ctx context.Context, req dto.SubmitAssessmentRequest, actor *models.JWTClaims) (*dto.SubmissionResult, error)
	SubmitResponse(ctx context.Context, req dto.SubmitResponseRequest, actor *models.JWTClaims) (*dto.SubmissionResult, error)
}

// SubmissionHandler accepts field submissions.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// SubmitAssessment godoc
// @Summary Submit a rapid assessment
// @Description Stores the assessment and runs it through auto-approval.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.SubmitAssessmentRequest true "Assessment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessments [post]
func (h *SubmissionHandler) SubmitAssessment(c *gin.Context) {
	var req dto.SubmitAssessmentRequest
	if !bindJSON(c, &req, "invalid assessment payload") {
		return
	}
	result, err := h.service.SubmitAssessment(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// SubmitResponse godoc
// @Summary Submit a response delivery
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.SubmitResponseRequest true "Response"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /responses [post]
func (h *SubmissionHandler) SubmitResponse(c *gin.Context) {
	var req dto.SubmitResponseRequest
	if !bindJSON(c, &req, "invalid response payload") {
		return
	}
	result, err := h.service.SubmitResponse(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
