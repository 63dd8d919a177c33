package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/pkg/response"
)

type verificationService interface {
	Get(ctx context.Context, itemType models.VerifiableType, id string) (*models.VerifiableItem, error)
	Approve(ctx context.Context, itemType models.VerifiableType, id string, req dto.ApproveRequest, actor *models.JWTClaims) (*dto.VerificationResult, error)
	Reject(ctx context.Context, itemType models.VerifiableType, id string, req dto.RejectRequest, actor *models.JWTClaims) (*dto.VerificationResult, error)
	BatchApprove(ctx context.Context, itemType models.VerifiableType, req dto.BatchApproveRequest, actor *models.JWTClaims) (*dto.BatchResult, error)
	BatchReject(ctx context.Context, itemType models.VerifiableType, req dto.BatchRejectRequest, actor *models.JWTClaims) (*dto.BatchResult, error)
	Progress(ctx context.Context, itemType models.VerifiableType) (*dto.BatchProgress, error)
	Override(ctx context.Context, itemType models.VerifiableType, req dto.OverrideRequest, actor *models.JWTClaims) (*dto.OverrideResult, error)
	ListQueue(ctx context.Context, query dto.QueueQuery) ([]models.VerifiableItem, *models.Pagination, error)
	ListOverrides(ctx context.Context, query dto.OverrideQuery) ([]models.AutoApprovalOverride, error)
	ExportOverrides(ctx context.Context, query dto.OverrideQuery) (*dto.ExportedFile, error)
}

// VerificationHandler exposes the coordinator verification queue. Assessment and response routes
// share the handlers, bound to their item type at registration.
type VerificationHandler struct {
	service verificationService
}

// NewVerificationHandler constructs the handler.
func NewVerificationHandler(service verificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// Register mounts the per-type routes on group for every verifiable type.
func (h *VerificationHandler) Register(group *gin.RouterGroup, exportMiddleware ...gin.HandlerFunc) {
	group.GET("/queue", h.Queue)
	group.GET("/overrides", h.Overrides)
	group.GET("/overrides/export", append(exportMiddleware, h.ExportOverrides)...)
	for path, itemType := range map[string]models.VerifiableType{
		"assessments": models.VerifiableTypeAssessment,
		"responses":   models.VerifiableTypeResponse,
	} {
		typed := group.Group("/" + path)
		typed.GET("/batch-progress", h.Progress(itemType))
		typed.POST("/batch-approve", h.BatchApprove(itemType))
		typed.POST("/batch-reject", h.BatchReject(itemType))
		typed.POST("/override", h.Override(itemType))
		typed.GET("/:id", h.Get(itemType))
		typed.POST("/:id/approve", h.Approve(itemType))
		typed.POST("/:id/reject", h.Reject(itemType))
	}
}

// Queue godoc
// @Summary List the verification queue
// @Tags Verification
// @Produce json
// @Param type query string true "ASSESSMENT or RESPONSE"
// @Param status query []string false "Statuses, defaults to PENDING"
// @Param subtype query string false "Assessment or response type"
// @Param minCompleteness query number false "Minimum completeness"
// @Param sortBy query string false "submittedAt, completeness or subtype"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /verification/queue [get]
func (h *VerificationHandler) Queue(c *gin.Context) {
	var query dto.QueueQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	items, pagination, err := h.service.ListQueue(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a verifiable item
// @Tags Verification
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /verification/assessments/{id} [get]
// @Router /verification/responses/{id} [get]
func (h *VerificationHandler) Get(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := h.service.Get(c.Request.Context(), itemType, c.Param("id"))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, item, nil)
	}
}

// Approve godoc
// @Summary Approve a pending item
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body dto.ApproveRequest false "Approval payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/assessments/{id}/approve [post]
// @Router /verification/responses/{id}/approve [post]
func (h *VerificationHandler) Approve(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ApproveRequest
		if c.Request.ContentLength != 0 && !bindJSON(c, &req, "invalid approval payload") {
			return
		}
		result, err := h.service.Approve(c.Request.Context(), itemType, c.Param("id"), req, claimsFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}

// Reject godoc
// @Summary Reject a pending item
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body dto.RejectRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/assessments/{id}/reject [post]
// @Router /verification/responses/{id}/reject [post]
func (h *VerificationHandler) Reject(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RejectRequest
		if !bindJSON(c, &req, "invalid rejection payload") {
			return
		}
		result, err := h.service.Reject(c.Request.Context(), itemType, c.Param("id"), req, claimsFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}

// BatchApprove godoc
// @Summary Approve several pending items
// @Description Items are processed one by one; the result reports each item. Only one batch may run per queue.
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.BatchApproveRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/assessments/batch-approve [post]
// @Router /verification/responses/batch-approve [post]
func (h *VerificationHandler) BatchApprove(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.BatchApproveRequest
		if !bindJSON(c, &req, "invalid batch payload") {
			return
		}
		result, err := h.service.BatchApprove(c.Request.Context(), itemType, req, claimsFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}

// BatchReject godoc
// @Summary Reject several pending items
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.BatchRejectRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/assessments/batch-reject [post]
// @Router /verification/responses/batch-reject [post]
func (h *VerificationHandler) BatchReject(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.BatchRejectRequest
		if !bindJSON(c, &req, "invalid batch payload") {
			return
		}
		result, err := h.service.BatchReject(c.Request.Context(), itemType, req, claimsFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}

// Progress godoc
// @Summary Batch progress for a queue
// @Tags Verification
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /verification/assessments/batch-progress [get]
// @Router /verification/responses/batch-progress [get]
func (h *VerificationHandler) Progress(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		progress, err := h.service.Progress(c.Request.Context(), itemType)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, progress, nil)
	}
}

// Override godoc
// @Summary Override auto-verified items
// @Description Moves every target back to PENDING or to REJECTED and writes one audit record per item. All or nothing.
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.OverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /verification/assessments/override [post]
// @Router /verification/responses/override [post]
func (h *VerificationHandler) Override(itemType models.VerifiableType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.OverrideRequest
		if !bindJSON(c, &req, "invalid override payload") {
			return
		}
		result, err := h.service.Override(c.Request.Context(), itemType, req, claimsFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}

// Overrides godoc
// @Summary List override audit records
// @Tags Verification
// @Produce json
// @Param type query string false "ASSESSMENT or RESPONSE"
// @Param targetId query string false "Item ID"
// @Param coordinatorId query string false "Coordinator ID"
// @Param from query string false "From (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "To (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /verification/overrides [get]
func (h *VerificationHandler) Overrides(c *gin.Context) {
	var query dto.OverrideQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	records, err := h.service.ListOverrides(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ExportOverrides godoc
// @Summary Export override audit records
// @Tags Verification
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /verification/overrides/export [get]
func (h *VerificationHandler) ExportOverrides(c *gin.Context) {
	var query dto.OverrideQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	file, err := h.service.ExportOverrides(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
