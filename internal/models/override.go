package models

import (
	"time"

	"github.com/lib/pq"
)

// OverrideReasonCode classifies why a coordinator reversed an auto-verification.
type OverrideReasonCode string

const (
	OverrideReasonDataQuality  OverrideReasonCode = "DATA_QUALITY_CONCERN"
	OverrideReasonEmergency    OverrideReasonCode = "EMERGENCY_OVERRIDE"
	OverrideReasonPolicyChange OverrideReasonCode = "POLICY_CHANGE"
	OverrideReasonManualReview OverrideReasonCode = "MANUAL_REVIEW_REQUIRED"
	OverrideReasonOther        OverrideReasonCode = "OTHER"
)

// Valid reports whether the reason code is known.
func (c OverrideReasonCode) Valid() bool {
	switch c {
	case OverrideReasonDataQuality, OverrideReasonEmergency, OverrideReasonPolicyChange, OverrideReasonManualReview, OverrideReasonOther:
		return true
	}
	return false
}

// AutoApprovalOverride is an append-only record of a reversed auto-verification.
type AutoApprovalOverride struct {
	ID              string             `db:"id" json:"id"`
	TargetType      VerifiableType     `db:"target_type" json:"targetType"`
	TargetIDs       pq.StringArray     `db:"target_ids" json:"targetIds"`
	OriginalStatus  VerificationStatus `db:"original_status" json:"originalStatus"`
	NewStatus       VerificationStatus `db:"new_status" json:"newStatus"`
	ReasonCode      OverrideReasonCode `db:"reason_code" json:"reason"`
	Justification   string             `db:"justification" json:"justification"`
	RuleID          *string            `db:"rule_id" json:"ruleId,omitempty"`
	CoordinatorID   string             `db:"coordinator_id" json:"coordinatorId"`
	CoordinatorName string             `db:"coordinator_name" json:"coordinatorName"`
	CreatedAt       time.Time          `db:"created_at" json:"createdAt"`
}

// OverrideFilter constrains override listings.
type OverrideFilter struct {
	TargetType    VerifiableType
	TargetID      string
	CoordinatorID string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
