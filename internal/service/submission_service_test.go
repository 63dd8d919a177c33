package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/internal/repository"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type userStub struct {
	users map[string]*models.User
}

func (u userStub) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := u.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

type submissionFixture struct {
	svc          *SubmissionService
	store        *memItemStore
	matcher      *RuleMatcher
	counter      *repository.MemoryApprovalCounter
	achievements *recordingAchievements
	audit        *recordingAudit
}

func newSubmissionFixture(cfg *models.AutoApprovalConfig) *submissionFixture {
	f := &submissionFixture{
		store:        newMemItemStore(),
		achievements: &recordingAchievements{},
		audit:        &recordingAudit{},
	}
	f.matcher, f.counter = newTestMatcher(cfg)
	users := userStub{users: map[string]*models.User{
		"assessor-1":  {ID: "assessor-1", ReputationScore: floatPtr(4.8)},
		"responder-1": {ID: "responder-1", ReputationScore: floatPtr(3)},
	}}
	f.svc = NewSubmissionService(f.store, users, f.matcher, f.achievements, f.audit, nil, nil)
	f.svc.now = fixedClock
	return f
}

func assessorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "assessor-1", Role: models.RoleAssessor, FullName: "Ari Assessor"}
}

func responderClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "responder-1", Role: models.RoleResponder, FullName: "Rin Responder"}
}

func healthAssessment() dto.SubmitAssessmentRequest {
	return dto.SubmitAssessmentRequest{
		AssessmentType:    "health",
		AffectedEntityID:  "entity-1",
		GPSAccuracyMeters: floatPtr(5),
		MediaCount:        1,
		Data:              json.RawMessage(`{"hasFunctionalClinic":true,"numberHealthFacilities":2,"qualifiedHealthWorkers":4,"hasMedicineSupply":false}`),
	}
}

func TestSubmitAssessmentAutoVerifies(t *testing.T) {
	rule := healthRule("r1", 1, 90)
	rule.Conditions.RequiredFieldsComplete = true
	rule.Conditions.AssessorReputationScore = floatPtr(4)
	f := newSubmissionFixture(enabledConfig(rule))

	result, err := f.svc.SubmitAssessment(context.Background(), healthAssessment(), assessorClaims())
	require.NoError(t, err)

	assert.Equal(t, models.VerificationStatusAutoVerified, result.Decision.Verdict)
	assert.Equal(t, models.AutoApprovalReasonRuleMatched, result.Decision.Reason)
	assert.Equal(t, 100.0, result.Item.Completeness, "completeness derived from required fields")
	assert.Equal(t, "HEALTH", result.Item.Subtype)
	assert.Equal(t, "Ari Assessor", result.Item.SubmitterName)
	assert.Equal(t, models.VerificationStatusAutoVerified, f.store.status(result.Item.ID))
	require.NotNil(t, result.Item.AutoApprovalRuleID)
	assert.Equal(t, "r1", *result.Item.AutoApprovalRuleID)
	assert.Equal(t, []string{models.AuditActionAutoVerify}, f.audit.actions())
}

func TestSubmitAssessmentFallsBackToQueue(t *testing.T) {
	f := newSubmissionFixture(enabledConfig(healthRule("r1", 1, 100)))
	req := healthAssessment()
	req.Completeness = floatPtr(60)

	result, err := f.svc.SubmitAssessment(context.Background(), req, assessorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, result.Decision.Verdict)
	assert.Equal(t, models.AutoApprovalReasonNoMatchingRule, result.Decision.Reason)
	assert.Equal(t, models.VerificationStatusPending, f.store.status(result.Item.ID))
	assert.Empty(t, f.audit.logs)
}

func TestSubmitAutoVerifyPersistFailureReleasesSlots(t *testing.T) {
	cfg := enabledConfig(healthRule("r1", 1, 0))
	cfg.GlobalSettings.MaxAutoApprovalsPerHour = 5
	f := newSubmissionFixture(cfg)
	failing := &failingTransitionStore{memItemStore: f.store}
	f.svc.items = failing

	result, err := f.svc.SubmitAssessment(context.Background(), healthAssessment(), assessorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusPending, result.Decision.Verdict)
	assert.Equal(t, models.AutoApprovalReasonUnavailable, result.Decision.Reason)
	assert.Equal(t, models.VerificationStatusPending, f.store.status(result.Item.ID))

	used, err := f.matcher.ApprovalsThisHour(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, used)
}

type failingTransitionStore struct {
	*memItemStore
}

func (f *failingTransitionStore) Transition(context.Context, repository.StatusTransition, *models.Feedback) error {
	return errStoreDown
}

func TestSubmitResponseWithDonorAwardsAchievements(t *testing.T) {
	rule := models.AutoApprovalRule{ID: "resp", Name: "resp", Type: models.VerifiableTypeResponse, Enabled: true, Priority: 1}
	f := newSubmissionFixture(enabledConfig(rule))
	f.achievements.result = []models.DonorAchievement{{Type: models.AchievementFirstVerifiedDelivery}}

	result, err := f.svc.SubmitResponse(context.Background(), dto.SubmitResponseRequest{
		ResponseType:        "FOOD",
		AffectedEntityID:    "entity-1",
		DonorID:             "donor-1",
		CommitmentID:        "commit-1",
		BeneficiariesServed: 40,
	}, responderClaims())
	require.NoError(t, err)
	assert.True(t, result.Decision.AutoVerified())
	require.Len(t, f.achievements.calls, 1)
	assert.Equal(t, "donor-1", f.achievements.calls[0].donorID)
	assert.Equal(t, f.audit.logs[0].ID, f.achievements.calls[0].verificationID)
	assert.Len(t, result.NewAchievements, 1)
}

func TestSubmitValidation(t *testing.T) {
	f := newSubmissionFixture(enabledConfig())
	ctx := context.Background()

	_, err := f.svc.SubmitAssessment(ctx, healthAssessment(), responderClaims())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.SubmitAssessment(ctx, healthAssessment(), nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	bad := healthAssessment()
	bad.AssessmentType = "WEATHER"
	_, err = f.svc.SubmitAssessment(ctx, bad, assessorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	future := healthAssessment()
	later := fixedNow.Add(time.Hour)
	future.SubmittedAt = &later
	_, err = f.svc.SubmitAssessment(ctx, future, assessorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.SubmitResponse(ctx, dto.SubmitResponseRequest{
		ResponseType:     "FOOD",
		AffectedEntityID: "entity-1",
		DonorID:          "donor-1",
	}, responderClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "commitmentId is required with donorId")
}

func TestSubmitStoreFailure(t *testing.T) {
	f := newSubmissionFixture(enabledConfig())
	f.store.createErr = errStoreDown

	_, err := f.svc.SubmitAssessment(context.Background(), healthAssessment(), assessorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrDownstream))
}
