package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
)

// requiredFields lists the payload keys that must be filled for each type and subtype.
var requiredFields = map[models.VerifiableType]map[string][]string{
	models.VerifiableTypeAssessment: {
		models.AssessmentTypeHealth:      {"hasFunctionalClinic", "numberHealthFacilities", "qualifiedHealthWorkers", "hasMedicineSupply"},
		models.AssessmentTypeWASH:        {"isWaterSufficient", "hasFunctionalLatrines", "hasHandwashingFacilities"},
		models.AssessmentTypeShelter:     {"areSheltersSufficient", "numberSheltersRequired", "shelterTypes"},
		models.AssessmentTypeFood:        {"foodSource", "availableFoodDurationDays"},
		models.AssessmentTypeSecurity:    {"isSafeFromViolence", "hasSecurityPresence"},
		models.AssessmentTypePopulation:  {"totalHouseholds", "totalPopulation", "livesLost"},
		models.AssessmentTypePreliminary: {"reportingDate", "incidentType", "affectedPopulationEstimate"},
	},
	models.VerifiableTypeResponse: {
		models.ResponseTypeHealth:     {"deliveryDate", "itemsDelivered", "patientsTreated"},
		models.ResponseTypeWASH:       {"deliveryDate", "itemsDelivered", "waterLitresDistributed"},
		models.ResponseTypeShelter:    {"deliveryDate", "itemsDelivered", "sheltersProvided"},
		models.ResponseTypeFood:       {"deliveryDate", "itemsDelivered", "foodPackagesDistributed"},
		models.ResponseTypeSecurity:   {"deliveryDate", "personnelDeployed"},
		models.ResponseTypePopulation: {"deliveryDate", "householdsReached"},
		models.ResponseTypeLogistics:  {"deliveryDate", "itemsDelivered", "vehiclesUsed"},
	},
}

// RequiredFields returns the mandatory payload keys for a type and subtype.
func RequiredFields(itemType models.VerifiableType, subtype string) []string {
	return requiredFields[itemType][strings.ToUpper(subtype)]
}

// ValidSubtype reports whether subtype is known for itemType.
func ValidSubtype(itemType models.VerifiableType, subtype string) bool {
	_, ok := requiredFields[itemType][strings.ToUpper(subtype)]
	return ok
}

// MissingRequiredFields returns the mandatory keys that are absent or empty, sorted.
func MissingRequiredFields(item *models.VerifiableItem) []string {
	fields := item.Fields()
	missing := make([]string, 0)
	for _, key := range RequiredFields(item.Type, item.Subtype) {
		if isEmptyValue(fields[key]) {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// ComputeCompleteness derives a completeness percentage from the mandatory fields.
func ComputeCompleteness(item *models.VerifiableItem) float64 {
	required := RequiredFields(item.Type, item.Subtype)
	if len(required) == 0 {
		return 100
	}
	filled := len(required) - len(MissingRequiredFields(item))
	return math.Round(float64(filled)/float64(len(required))*10000) / 100
}

func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

// EvaluateQuality reports whether item clears every configured check of threshold at time now.
// Unset optional checks are skipped.
func EvaluateQuality(item *models.VerifiableItem, threshold models.QualityThreshold, now time.Time) bool {
	for _, check := range ExplainQuality(item, threshold, now) {
		if !check.Passed {
			return false
		}
	}
	return true
}

// ExplainQuality runs each configured check and reports its result.
func ExplainQuality(item *models.VerifiableItem, threshold models.QualityThreshold, now time.Time) []dto.ThresholdCheck {
	checks := []dto.ThresholdCheck{{
		Name:     "completeness",
		Passed:   item.Completeness >= threshold.CompletenessPercentage,
		Expected: fmt.Sprintf(">= %.2f", threshold.CompletenessPercentage),
		Actual:   fmt.Sprintf("%.2f", item.Completeness),
	}}

	if threshold.RequiredFieldsComplete {
		missing := MissingRequiredFields(item)
		actual := "complete"
		if len(missing) > 0 {
			actual = "missing " + strings.Join(missing, ",")
		}
		checks = append(checks, dto.ThresholdCheck{Name: "requiredFields", Passed: len(missing) == 0, Expected: "complete", Actual: actual})
	}

	if threshold.HasMediaAttachments {
		checks = append(checks, dto.ThresholdCheck{
			Name:     "media",
			Passed:   item.MediaCount > 0,
			Expected: ">= 1",
			Actual:   fmt.Sprintf("%d", item.MediaCount),
		})
	}

	if threshold.GPSAccuracyMeters != nil {
		check := dto.ThresholdCheck{Name: "gpsAccuracy", Expected: fmt.Sprintf("<= %.1fm", *threshold.GPSAccuracyMeters), Actual: "missing"}
		if item.GPSAccuracyMeters != nil {
			check.Actual = fmt.Sprintf("%.1fm", *item.GPSAccuracyMeters)
			check.Passed = *item.GPSAccuracyMeters <= *threshold.GPSAccuracyMeters
		}
		checks = append(checks, check)
	}

	if threshold.AssessorReputationScore != nil {
		check := dto.ThresholdCheck{Name: "reputation", Expected: fmt.Sprintf(">= %.2f", *threshold.AssessorReputationScore), Actual: "missing"}
		if item.SubmitterReputation != nil {
			check.Actual = fmt.Sprintf("%.2f", *item.SubmitterReputation)
			check.Passed = *item.SubmitterReputation >= *threshold.AssessorReputationScore
		}
		checks = append(checks, check)
	}

	if threshold.TimeSinceSubmission != nil {
		elapsed := now.Sub(item.SubmittedAt).Minutes()
		checks = append(checks, dto.ThresholdCheck{
			Name:     "timeSinceSubmission",
			Passed:   elapsed <= float64(*threshold.TimeSinceSubmission),
			Expected: fmt.Sprintf("<= %d min", *threshold.TimeSinceSubmission),
			Actual:   fmt.Sprintf("%.0f min", elapsed),
		})
	}
	return checks
}
