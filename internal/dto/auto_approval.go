package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// ToggleAutoApprovalRequest flips the master switch.
type ToggleAutoApprovalRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// PreviewRequest describes a hypothetical item to dry-run against the rules.
type PreviewRequest struct {
	Type              models.VerifiableType `json:"type" validate:"required,oneof=ASSESSMENT RESPONSE"`
	Subtype           string                `json:"subtype" validate:"required"`
	SubmitterID       string                `json:"submitterId"`
	Completeness      *float64              `json:"completeness" validate:"omitempty,gte=0,lte=100"`
	GPSAccuracyMeters *float64              `json:"gpsAccuracyMeters" validate:"omitempty,gte=0"`
	MediaCount        int                   `json:"mediaCount" validate:"gte=0"`
	SubmittedAt       *time.Time            `json:"submittedAt"`
	Data              json.RawMessage       `json:"data"`
}

// ThresholdCheck is the outcome of one quality check.
type ThresholdCheck struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// RuleEvaluation explains how one rule judged the item.
type RuleEvaluation struct {
	RuleID   string           `json:"ruleId"`
	RuleName string           `json:"ruleName"`
	Priority int              `json:"priority"`
	Passed   bool             `json:"passed"`
	Checks   []ThresholdCheck `json:"checks"`
}

// PreviewResult is the dry-run outcome.
type PreviewResult struct {
	Enabled      bool             `json:"enabled"`
	MatchedRule  *string          `json:"matchedRuleId,omitempty"`
	Evaluations  []RuleEvaluation `json:"evaluations"`
	Completeness float64          `json:"completeness"`
}
