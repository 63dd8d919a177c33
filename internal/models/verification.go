package models

import (
	"encoding/json"
	"time"
)

// VerifiableType distinguishes the two submission kinds coordinators review.
type VerifiableType string

const (
	VerifiableTypeAssessment VerifiableType = "ASSESSMENT"
	VerifiableTypeResponse   VerifiableType = "RESPONSE"
)

// Valid reports whether the type is one of the known submission kinds.
func (t VerifiableType) Valid() bool {
	return t == VerifiableTypeAssessment || t == VerifiableTypeResponse
}

// VerificationStatus captures the verification workflow state.
type VerificationStatus string

const (
	VerificationStatusPending      VerificationStatus = "PENDING"
	VerificationStatusVerified     VerificationStatus = "VERIFIED"
	VerificationStatusAutoVerified VerificationStatus = "AUTO_VERIFIED"
	VerificationStatusRejected     VerificationStatus = "REJECTED"
)

// Valid reports whether the status is known.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationStatusPending, VerificationStatusVerified, VerificationStatusAutoVerified, VerificationStatusRejected:
		return true
	}
	return false
}

// IsVerified reports whether the item counts as a verified submission.
func (s VerificationStatus) IsVerified() bool {
	return s == VerificationStatusVerified || s == VerificationStatusAutoVerified
}

// Assessment subtypes.
const (
	AssessmentTypeHealth      = "HEALTH"
	AssessmentTypeWASH        = "WASH"
	AssessmentTypeShelter     = "SHELTER"
	AssessmentTypeFood        = "FOOD"
	AssessmentTypeSecurity    = "SECURITY"
	AssessmentTypePopulation  = "POPULATION"
	AssessmentTypePreliminary = "PRELIMINARY"
)

// Response subtypes. Responses reuse the sector names and add logistics.
const (
	ResponseTypeHealth     = "HEALTH"
	ResponseTypeWASH       = "WASH"
	ResponseTypeShelter    = "SHELTER"
	ResponseTypeFood       = "FOOD"
	ResponseTypeSecurity   = "SECURITY"
	ResponseTypePopulation = "POPULATION"
	ResponseTypeLogistics  = "LOGISTICS"
)

// VerifiableItem is an assessment or response awaiting or holding a verification decision.
type VerifiableItem struct {
	ID                  string             `db:"id" json:"id"`
	Type                VerifiableType     `db:"item_type" json:"type"`
	Subtype             string             `db:"subtype" json:"subtype"`
	AffectedEntityID    string             `db:"affected_entity_id" json:"affectedEntityId"`
	SubmitterID         string             `db:"submitter_id" json:"submitterId"`
	SubmitterName       string             `db:"submitter_name" json:"submitterName"`
	SubmitterReputation *float64           `db:"submitter_reputation" json:"submitterReputation,omitempty"`
	SubmittedAt         time.Time          `db:"submitted_at" json:"submittedAt"`
	Completeness        float64            `db:"completeness" json:"completeness"`
	GPSAccuracyMeters   *float64           `db:"gps_accuracy_meters" json:"gpsAccuracyMeters,omitempty"`
	MediaCount          int                `db:"media_count" json:"mediaCount"`
	Data                json.RawMessage    `db:"data" json:"data"`
	Status              VerificationStatus `db:"verification_status" json:"verificationStatus"`
	AutoApprovalRuleID  *string            `db:"auto_approval_rule_id" json:"autoApprovalRuleId,omitempty"`
	VerifiedBy          *string            `db:"verified_by" json:"verifiedBy,omitempty"`
	VerifiedAt          *time.Time         `db:"verified_at" json:"verifiedAt,omitempty"`
	RejectionReason     *string            `db:"rejection_reason" json:"rejectionReason,omitempty"`
	DonorID             *string            `db:"donor_id" json:"donorId,omitempty"`
	CommitmentID        *string            `db:"commitment_id" json:"commitmentId,omitempty"`
	BeneficiariesServed int                `db:"beneficiaries_served" json:"beneficiariesServed"`
	CreatedAt           time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time          `db:"updated_at" json:"updatedAt"`
}

// HasDonorCommitment reports whether the item is a response delivered against a donor commitment.
func (i *VerifiableItem) HasDonorCommitment() bool {
	return i != nil && i.Type == VerifiableTypeResponse && i.DonorID != nil && *i.DonorID != "" && i.CommitmentID != nil && *i.CommitmentID != ""
}

// Fields decodes the submitted payload into a generic map. Invalid payloads decode as empty.
func (i *VerifiableItem) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if i == nil || len(i.Data) == 0 {
		return fields
	}
	_ = json.Unmarshal(i.Data, &fields)
	return fields
}

// QueueSortField enumerates supported queue orderings.
type QueueSortField string

const (
	QueueSortSubmittedAt  QueueSortField = "submittedAt"
	QueueSortCompleteness QueueSortField = "completeness"
	QueueSortSubtype      QueueSortField = "subtype"
)

// VerificationQueueFilter constrains queue listings.
type VerificationQueueFilter struct {
	Type            VerifiableType
	Status          []VerificationStatus
	Subtype         string
	SubmitterID     string
	DonorID         string
	SubmittedFrom   *time.Time
	SubmittedTo     *time.Time
	MinCompleteness *float64
	SortBy          QueueSortField
	SortDesc        bool
	Page            int
	PageSize        int
}

// StatusCount aggregates items per type and status.
type StatusCount struct {
	Type   VerifiableType     `db:"item_type" json:"type"`
	Status VerificationStatus `db:"verification_status" json:"status"`
	Count  int                `db:"count" json:"count"`
}
