package models

import "time"

// FeedbackType classifies coordinator feedback.
type FeedbackType string

const (
	FeedbackTypeRejection            FeedbackType = "REJECTION"
	FeedbackTypeClarificationRequest FeedbackType = "CLARIFICATION_REQUEST"
	FeedbackTypeApprovalNote         FeedbackType = "APPROVAL_NOTE"
)

// FeedbackPriority signals urgency to the submitter.
type FeedbackPriority string

const (
	FeedbackPriorityLow    FeedbackPriority = "LOW"
	FeedbackPriorityNormal FeedbackPriority = "NORMAL"
	FeedbackPriorityHigh   FeedbackPriority = "HIGH"
	FeedbackPriorityUrgent FeedbackPriority = "URGENT"
)

// Valid reports whether the priority is known.
func (p FeedbackPriority) Valid() bool {
	switch p {
	case FeedbackPriorityLow, FeedbackPriorityNormal, FeedbackPriorityHigh, FeedbackPriorityUrgent:
		return true
	}
	return false
}

// RejectionReason codes offered to coordinators.
const (
	RejectionReasonIncompleteData   = "INCOMPLETE_DATA"
	RejectionReasonInaccurateData   = "INACCURATE_DATA"
	RejectionReasonMissingEvidence  = "MISSING_EVIDENCE"
	RejectionReasonDuplicate        = "DUPLICATE_SUBMISSION"
	RejectionReasonLocationMismatch = "LOCATION_MISMATCH"
	RejectionReasonOther            = "OTHER"
	ApprovalNoteReasonCode          = "APPROVED"
	DefaultClarificationReasonCode  = "CLARIFICATION"
)

// Feedback is a structured coordinator message attached to a verification decision.
type Feedback struct {
	ID                   string           `db:"id" json:"id"`
	TargetType           VerifiableType   `db:"target_type" json:"targetType"`
	TargetID             string           `db:"target_id" json:"targetId"`
	SubmitterID          string           `db:"submitter_id" json:"submitterId"`
	CoordinatorID        string           `db:"coordinator_id" json:"coordinatorId"`
	CoordinatorName      string           `db:"coordinator_name" json:"coordinatorName"`
	Type                 FeedbackType     `db:"feedback_type" json:"feedbackType"`
	ReasonCode           string           `db:"reason_code" json:"reason"`
	Comments             string           `db:"comments" json:"comments"`
	Priority             FeedbackPriority `db:"priority" json:"priority"`
	RequiresResubmission bool             `db:"requires_resubmission" json:"requiresResubmission"`
	IsRead               bool             `db:"is_read" json:"isRead"`
	IsResolved           bool             `db:"is_resolved" json:"isResolved"`
	ReadAt               *time.Time       `db:"read_at" json:"readAt,omitempty"`
	ResolvedAt           *time.Time       `db:"resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updatedAt"`
}

// FeedbackFilter constrains feedback listings.
type FeedbackFilter struct {
	SubmitterID    string
	TargetType     VerifiableType
	TargetID       string
	UnreadOnly     bool
	UnresolvedOnly bool
	Limit          int
	Offset         int
}
