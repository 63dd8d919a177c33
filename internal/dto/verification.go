package dto

import (
	"time"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// Coordinator identifies who takes a verification decision. Empty fields are filled from the token.
type Coordinator struct {
	CoordinatorID   string `json:"coordinatorId"`
	CoordinatorName string `json:"coordinatorName"`
}

// ApproveRequest approves a single pending item.
type ApproveRequest struct {
	Coordinator
	ApprovalNote    string `json:"approvalNote"`
	NotifyAssessor  bool   `json:"notifyAssessor"`
	NotifyResponder bool   `json:"notifyResponder"`
}

// Notify reports whether the submitter asked to be notified, whichever item type it is.
func (r ApproveRequest) Notify() bool { return r.NotifyAssessor || r.NotifyResponder }

// RejectRequest rejects a single pending item. Required fields are checked by VerificationService.
type RejectRequest struct {
	Coordinator
	RejectionReason      string                  `json:"rejectionReason"`
	RejectionComments    string                  `json:"rejectionComments"`
	Priority             models.FeedbackPriority `json:"priority"`
	RequiresResubmission bool                    `json:"requiresResubmission"`
	NotifyAssessor       bool                    `json:"notifyAssessor"`
	NotifyResponder      bool                    `json:"notifyResponder"`
}

// Notify reports whether the submitter asked to be notified.
func (r RejectRequest) Notify() bool { return r.NotifyAssessor || r.NotifyResponder }

// BatchApproveRequest approves several items sequentially.
type BatchApproveRequest struct {
	Coordinator
	AssessmentIDs []string `json:"assessmentIds"`
	ResponseIDs   []string `json:"responseIds"`
	ApprovalNote  string   `json:"approvalNote"`
	Notify        bool     `json:"notify"`
}

// IDs returns whichever id list was supplied.
func (r BatchApproveRequest) IDs() []string { return pickIDs(r.AssessmentIDs, r.ResponseIDs) }

// BatchRejectRequest rejects several items sequentially.
type BatchRejectRequest struct {
	Coordinator
	AssessmentIDs        []string                `json:"assessmentIds"`
	ResponseIDs          []string                `json:"responseIds"`
	RejectionReason      string                  `json:"rejectionReason"`
	RejectionComments    string                  `json:"rejectionComments"`
	Priority             models.FeedbackPriority `json:"priority"`
	RequiresResubmission bool                    `json:"requiresResubmission"`
	Notify               bool                    `json:"notify"`
}

// IDs returns whichever id list was supplied.
func (r BatchRejectRequest) IDs() []string { return pickIDs(r.AssessmentIDs, r.ResponseIDs) }

func pickIDs(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

// OverrideRequest reverses auto-verified items. Required fields are checked by VerificationService.
type OverrideRequest struct {
	Coordinator
	TargetIDs     []string                  `json:"targetIds"`
	NewStatus     models.VerificationStatus `json:"newStatus"`
	Reason        models.OverrideReasonCode `json:"reason"`
	Justification string                    `json:"justification"`
}

// BatchItemStatus is the per-item outcome of a batch operation.
type BatchItemStatus string

const (
	BatchItemSucceeded BatchItemStatus = "SUCCEEDED"
	BatchItemSkipped   BatchItemStatus = "SKIPPED"
	BatchItemFailed    BatchItemStatus = "FAILED"
)

// BatchItemResult reports one item of a batch.
type BatchItemResult struct {
	ID     string          `json:"id"`
	Status BatchItemStatus `json:"status"`
	Error  string          `json:"error,omitempty"`
}

// BatchResult aggregates a completed batch.
type BatchResult struct {
	Operation string            `json:"operation"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
	StartedAt time.Time         `json:"startedAt"`
	EndedAt   time.Time         `json:"endedAt"`
}

// BatchProgress reports the state of the batch running on a queue.
type BatchProgress struct {
	Type             models.VerifiableType `json:"type"`
	Running          bool                  `json:"running"`
	Processed        int                   `json:"processed"`
	Total            int                   `json:"total"`
	CurrentOperation string                `json:"currentOperation,omitempty"`
	LastResult       *BatchResult          `json:"lastResult,omitempty"`
}

// OverrideResult returns the written audit records and updated items.
type OverrideResult struct {
	Overrides []models.AutoApprovalOverride `json:"overrides"`
	Items     []models.VerifiableItem       `json:"items"`
}

// VerificationResult is returned by single-item approve/reject.
type VerificationResult struct {
	Item            *models.VerifiableItem    `json:"item"`
	Feedback        *models.Feedback          `json:"feedback,omitempty"`
	NewAchievements []models.DonorAchievement `json:"newAchievements,omitempty"`
}

// QueueQuery mirrors supported queue listing parameters.
type QueueQuery struct {
	Type            string   `form:"type"`
	Status          []string `form:"status"`
	Subtype         string   `form:"subtype"`
	SubmitterID     string   `form:"submitterId"`
	DonorID         string   `form:"donorId"`
	SubmittedFrom   string   `form:"submittedFrom"`
	SubmittedTo     string   `form:"submittedTo"`
	MinCompleteness *float64 `form:"minCompleteness"`
	SortBy          string   `form:"sortBy"`
	SortOrder       string   `form:"sortOrder"`
	Page            int      `form:"page"`
	PageSize        int      `form:"pageSize"`
}

// OverrideQuery filters the override audit listing and export.
type OverrideQuery struct {
	Type          string `form:"type"`
	TargetID      string `form:"targetId"`
	CoordinatorID string `form:"coordinatorId"`
	From          string `form:"from"`
	To            string `form:"to"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
	Format        string `form:"format"`
}

// ExportedFile carries a rendered export.
type ExportedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
