package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// SubmitAssessmentRequest is the intake payload for a rapid assessment.
type SubmitAssessmentRequest struct {
	AssessmentType    string          `json:"assessmentType" validate:"required,oneof=HEALTH WASH SHELTER FOOD SECURITY POPULATION PRELIMINARY"`
	AffectedEntityID  string          `json:"affectedEntityId" validate:"required"`
	SubmittedAt       *time.Time      `json:"submittedAt"`
	Completeness      *float64        `json:"completeness" validate:"omitempty,gte=0,lte=100"`
	GPSAccuracyMeters *float64        `json:"gpsAccuracyMeters" validate:"omitempty,gte=0"`
	MediaCount        int             `json:"mediaCount" validate:"gte=0"`
	Data              json.RawMessage `json:"data"`
}

// SubmitResponseRequest is the intake payload for a response delivery.
type SubmitResponseRequest struct {
	ResponseType        string          `json:"responseType" validate:"required,oneof=HEALTH WASH SHELTER FOOD SECURITY POPULATION LOGISTICS"`
	AffectedEntityID    string          `json:"affectedEntityId" validate:"required"`
	DonorID             string          `json:"donorId"`
	CommitmentID        string          `json:"commitmentId" validate:"required_with=DonorID"`
	BeneficiariesServed int             `json:"beneficiariesServed" validate:"gte=0"`
	SubmittedAt         *time.Time      `json:"submittedAt"`
	Completeness        *float64        `json:"completeness" validate:"omitempty,gte=0,lte=100"`
	GPSAccuracyMeters   *float64        `json:"gpsAccuracyMeters" validate:"omitempty,gte=0"`
	MediaCount          int             `json:"mediaCount" validate:"gte=0"`
	Data                json.RawMessage `json:"data"`
}

// SubmissionResult reports the stored item and the auto-approval decision.
type SubmissionResult struct {
	Item            *models.VerifiableItem      `json:"item"`
	Decision        models.AutoApprovalDecision `json:"decision"`
	NewAchievements []models.DonorAchievement   `json:"newAchievements,omitempty"`
}
