package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

func TestEvaluateQualityCompletenessFloor(t *testing.T) {
	threshold := models.QualityThreshold{CompletenessPercentage: 80}
	item := pendingItem("a1", models.VerifiableTypeAssessment)

	for _, completeness := range []float64{0, 50, 79.99} {
		item.Completeness = completeness
		assert.False(t, EvaluateQuality(item, threshold, fixedNow), "completeness %.2f", completeness)
	}
	item.Completeness = 80
	assert.True(t, EvaluateQuality(item, threshold, fixedNow))
}

func TestEvaluateQualityGPSCeiling(t *testing.T) {
	threshold := models.QualityThreshold{CompletenessPercentage: 80, GPSAccuracyMeters: floatPtr(10)}
	item := pendingItem("a1", models.VerifiableTypeAssessment)
	item.Completeness = 85

	item.GPSAccuracyMeters = floatPtr(15)
	assert.False(t, EvaluateQuality(item, threshold, fixedNow))

	item.GPSAccuracyMeters = floatPtr(10)
	assert.True(t, EvaluateQuality(item, threshold, fixedNow))

	item.GPSAccuracyMeters = nil
	assert.False(t, EvaluateQuality(item, threshold, fixedNow), "missing reading cannot satisfy a ceiling")
}

func TestEvaluateQualityOptionalChecks(t *testing.T) {
	item := pendingItem("a1", models.VerifiableTypeAssessment)
	item.Completeness = 100

	t.Run("media", func(t *testing.T) {
		threshold := models.QualityThreshold{HasMediaAttachments: true}
		assert.False(t, EvaluateQuality(item, threshold, fixedNow))
		withMedia := *item
		withMedia.MediaCount = 2
		assert.True(t, EvaluateQuality(&withMedia, threshold, fixedNow))
	})

	t.Run("reputation", func(t *testing.T) {
		threshold := models.QualityThreshold{AssessorReputationScore: floatPtr(4)}
		assert.False(t, EvaluateQuality(item, threshold, fixedNow))
		trusted := *item
		trusted.SubmitterReputation = floatPtr(4.5)
		assert.True(t, EvaluateQuality(&trusted, threshold, fixedNow))
	})

	t.Run("age", func(t *testing.T) {
		threshold := models.QualityThreshold{TimeSinceSubmission: intPtr(30)}
		assert.False(t, EvaluateQuality(item, threshold, fixedNow), "submitted an hour ago")
		fresh := *item
		fresh.SubmittedAt = fixedNow.Add(-10 * time.Minute)
		assert.True(t, EvaluateQuality(&fresh, threshold, fixedNow))
	})
}

func TestRequiredFieldsCompleteness(t *testing.T) {
	item := pendingItem("a1", models.VerifiableTypeAssessment)
	item.Subtype = models.AssessmentTypeFood
	item.Data = json.RawMessage(`{"foodSource":"market","availableFoodDurationDays":""}`)

	assert.Equal(t, []string{"availableFoodDurationDays"}, MissingRequiredFields(item))
	assert.Equal(t, 50.0, ComputeCompleteness(item))

	threshold := models.QualityThreshold{RequiredFieldsComplete: true}
	item.Completeness = 100
	assert.False(t, EvaluateQuality(item, threshold, fixedNow))

	item.Data = json.RawMessage(`{"foodSource":"market","availableFoodDurationDays":3}`)
	assert.Empty(t, MissingRequiredFields(item))
	assert.Equal(t, 100.0, ComputeCompleteness(item))
	assert.True(t, EvaluateQuality(item, threshold, fixedNow))
}

func TestExplainQualityReportsEveryConfiguredCheck(t *testing.T) {
	item := pendingItem("a1", models.VerifiableTypeAssessment)
	item.Completeness = 85
	item.GPSAccuracyMeters = floatPtr(15)
	threshold := models.QualityThreshold{CompletenessPercentage: 80, GPSAccuracyMeters: floatPtr(10), HasMediaAttachments: true}

	checks := ExplainQuality(item, threshold, fixedNow)
	require.Len(t, checks, 3)
	byName := map[string]bool{}
	for _, check := range checks {
		byName[check.Name] = check.Passed
	}
	assert.Equal(t, map[string]bool{"completeness": true, "media": false, "gpsAccuracy": false}, byName)
}
