package models

import "time"

// QualityThreshold is the minimum quality bar an item must clear to be auto-verified.
// Nil optional fields disable the corresponding check.
type QualityThreshold struct {
	CompletenessPercentage  float64  `json:"completenessPercentage" validate:"gte=0,lte=100"`
	RequiredFieldsComplete  bool     `json:"requiredFieldsComplete"`
	HasMediaAttachments     bool     `json:"hasMediaAttachments"`
	GPSAccuracyMeters       *float64 `json:"gpsAccuracyMeters,omitempty" validate:"omitempty,gt=0"`
	AssessorReputationScore *float64 `json:"assessorReputationScore,omitempty" validate:"omitempty,gte=0"`
	TimeSinceSubmission     *int     `json:"timeSinceSubmission,omitempty" validate:"omitempty,gt=0"`
	MaxBatchSize            *int     `json:"maxBatchSize,omitempty" validate:"omitempty,gt=0"`
}

// AutoApprovalRule selects items of a type (and optionally a subtype) for auto-verification.
type AutoApprovalRule struct {
	ID         string           `json:"id"`
	Name       string           `json:"name" validate:"required"`
	Type       VerifiableType   `json:"type" validate:"required,oneof=ASSESSMENT RESPONSE"`
	Subtype    string           `json:"subtype,omitempty"`
	Enabled    bool             `json:"enabled"`
	Priority   int              `json:"priority" validate:"gte=1"`
	Conditions QualityThreshold `json:"conditions"`
	CreatedBy  string           `json:"createdBy,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// AppliesTo reports whether the rule targets the item's type and subtype.
func (r AutoApprovalRule) AppliesTo(item *VerifiableItem) bool {
	if item == nil || r.Type != item.Type {
		return false
	}
	return r.Subtype == "" || r.Subtype == item.Subtype
}

// AutoApprovalGlobalSettings caps automation across all rules.
type AutoApprovalGlobalSettings struct {
	MaxAutoApprovalsPerHour  int  `json:"maxAutoApprovalsPerHour" validate:"gte=0"`
	RequireCoordinatorOnline bool `json:"requireCoordinatorOnline"`
	EmergencyOverrideEnabled bool `json:"emergencyOverrideEnabled"`
	AuditLogRetentionDays    int  `json:"auditLogRetentionDays" validate:"gte=0"`
}

// AutoApprovalConfig is the persisted auto-approval document.
type AutoApprovalConfig struct {
	Enabled        bool                       `json:"enabled"`
	Rules          []AutoApprovalRule         `json:"rules" validate:"dive"`
	GlobalSettings AutoApprovalGlobalSettings `json:"globalSettings"`
	UpdatedBy      string                     `json:"updatedBy,omitempty"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}

// AutoApprovalReason explains why an item was or was not auto-verified.
type AutoApprovalReason string

const (
	AutoApprovalReasonRuleMatched        AutoApprovalReason = "RULE_MATCHED"
	AutoApprovalReasonNoMatchingRule     AutoApprovalReason = "NO_MATCHING_RULE"
	AutoApprovalReasonDisabled           AutoApprovalReason = "AUTO_APPROVAL_DISABLED"
	AutoApprovalReasonRateLimited        AutoApprovalReason = "RATE_LIMITED"
	AutoApprovalReasonBatchLimit         AutoApprovalReason = "BATCH_LIMIT_REACHED"
	AutoApprovalReasonCoordinatorOffline AutoApprovalReason = "COORDINATOR_OFFLINE"
	AutoApprovalReasonUnavailable        AutoApprovalReason = "AUTO_APPROVAL_UNAVAILABLE"
)

// AutoApprovalDecision is the outcome of running an item through the rule matcher.
type AutoApprovalDecision struct {
	Verdict VerificationStatus `json:"verdict"`
	RuleID  *string            `json:"ruleId,omitempty"`
	Reason  AutoApprovalReason `json:"reason"`

	// Counter slots held by a positive decision, returned if the decision is not persisted.
	MatchedAt       time.Time `json:"-"`
	HoldsRuleSlot   bool      `json:"-"`
	HoldsGlobalSlot bool      `json:"-"`
}

// AutoVerified reports whether the decision bypasses manual review.
func (d AutoApprovalDecision) AutoVerified() bool {
	return d.Verdict == VerificationStatusAutoVerified
}
