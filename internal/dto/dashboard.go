package dto

import (
	"time"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// DashboardResponse is personalised by role; only the section for the caller's role is set.
type DashboardResponse struct {
	Role        models.UserRole       `json:"role"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Coordinator *CoordinatorDashboard `json:"coordinator,omitempty"`
	Submitter   *SubmitterDashboard   `json:"submitter,omitempty"`
	Donor       *DonorDashboard       `json:"donor,omitempty"`
}

// CoordinatorDashboard summarises the verification workload.
type CoordinatorDashboard struct {
	Queue                   []models.StatusCount `json:"queue"`
	PendingTotal            int                  `json:"pendingTotal"`
	AutoVerifiedLast24h     int                  `json:"autoVerifiedLast24h"`
	OverridesLast24h        int                  `json:"overridesLast24h"`
	UnresolvedFeedback      int                  `json:"unresolvedFeedback"`
	AutoApprovalEnabled     bool                 `json:"autoApprovalEnabled"`
	AutoApprovalsThisHour   int                  `json:"autoApprovalsThisHour"`
	MaxAutoApprovalsPerHour int                  `json:"maxAutoApprovalsPerHour"`
}

// SubmitterDashboard summarises an assessor or responder's own submissions.
type SubmitterDashboard struct {
	Submissions    []models.StatusCount `json:"submissions"`
	UnreadFeedback int                  `json:"unreadFeedback"`
}

// DonorDashboard summarises a donor's verified deliveries.
type DonorDashboard struct {
	Stats        *models.DonorVerificationStats `json:"stats"`
	Achievements []models.DonorAchievement      `json:"achievements"`
}
