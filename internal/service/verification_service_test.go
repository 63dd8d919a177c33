package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/internal/repository"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type verificationFixture struct {
	svc          *VerificationService
	store        *memItemStore
	audit        *recordingAudit
	notifier     *recordingNotifier
	achievements *recordingAchievements
	config       *staticConfig
}

func newVerificationFixture(items ...*models.VerifiableItem) *verificationFixture {
	f := &verificationFixture{
		store:        newMemItemStore(items...),
		audit:        &recordingAudit{},
		notifier:     &recordingNotifier{},
		achievements: &recordingAchievements{},
		config: &staticConfig{cfg: &models.AutoApprovalConfig{
			GlobalSettings: models.AutoApprovalGlobalSettings{EmergencyOverrideEnabled: true},
		}},
	}
	f.svc = NewVerificationService(VerificationDeps{
		Items:        f.store,
		Config:       f.config,
		Achievements: f.achievements,
		Audit:        f.audit,
		Notifier:     f.notifier,
	}, VerificationServiceConfig{MaxBatchSize: 5})
	f.svc.now = fixedClock
	return f
}

func autoVerifiedItem(id string) *models.VerifiableItem {
	item := pendingItem(id, models.VerifiableTypeAssessment)
	item.Status = models.VerificationStatusAutoVerified
	item.AutoApprovalRuleID = strPtr("rule-1")
	return item
}

func TestApproveMovesPendingToVerified(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))

	result, err := f.svc.Approve(context.Background(), models.VerifiableTypeAssessment, "a1", dto.ApproveRequest{
		ApprovalNote:   "  looks good ",
		NotifyAssessor: true,
	}, coordinatorClaims())
	require.NoError(t, err)

	assert.Equal(t, models.VerificationStatusVerified, result.Item.Status)
	assert.Equal(t, models.VerificationStatusVerified, f.store.status("a1"))
	require.NotNil(t, result.Feedback)
	assert.Equal(t, models.FeedbackTypeApprovalNote, result.Feedback.Type)
	assert.Equal(t, "looks good", result.Feedback.Comments)
	assert.Equal(t, "coord-1", result.Feedback.CoordinatorID)
	assert.Equal(t, []string{models.AuditActionVerificationApprove}, f.audit.actions())
	assert.Equal(t, []models.NotificationEvent{models.NotificationItemApproved}, f.notifier.events())
	assert.Empty(t, f.achievements.calls, "assessments never trigger achievements")
}

func TestApproveWithoutNoteOrNotify(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))

	result, err := f.svc.Approve(context.Background(), models.VerifiableTypeAssessment, "a1", dto.ApproveRequest{}, coordinatorClaims())
	require.NoError(t, err)
	assert.Nil(t, result.Feedback)
	assert.Empty(t, f.store.feedback)
	assert.Empty(t, f.notifier.events())
}

func TestApproveDonorResponseTriggersAchievements(t *testing.T) {
	item := pendingItem("r1", models.VerifiableTypeResponse)
	item.DonorID = strPtr("donor-1")
	item.CommitmentID = strPtr("commit-1")
	f := newVerificationFixture(item)
	f.achievements.result = []models.DonorAchievement{{Type: models.AchievementFirstVerifiedDelivery}}

	result, err := f.svc.Approve(context.Background(), models.VerifiableTypeResponse, "r1", dto.ApproveRequest{}, coordinatorClaims())
	require.NoError(t, err)

	require.Len(t, f.achievements.calls, 1)
	call := f.achievements.calls[0]
	assert.Equal(t, "donor-1", call.donorID)
	assert.Equal(t, "r1", call.responseID)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, f.audit.logs[0].ID, call.verificationID)
	assert.Len(t, result.NewAchievements, 1)
}

func TestApproveAchievementFailureDoesNotFailApproval(t *testing.T) {
	item := pendingItem("r1", models.VerifiableTypeResponse)
	item.DonorID = strPtr("donor-1")
	item.CommitmentID = strPtr("commit-1")
	f := newVerificationFixture(item)
	f.achievements.err = errStoreDown

	_, err := f.svc.Approve(context.Background(), models.VerifiableTypeResponse, "r1", dto.ApproveRequest{}, coordinatorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusVerified, f.store.status("r1"))
}

func TestApproveRejectsNonPendingItems(t *testing.T) {
	for _, status := range []models.VerificationStatus{
		models.VerificationStatusVerified,
		models.VerificationStatusAutoVerified,
		models.VerificationStatusRejected,
	} {
		item := pendingItem("a1", models.VerifiableTypeAssessment)
		item.Status = status
		f := newVerificationFixture(item)

		_, err := f.svc.Approve(context.Background(), models.VerifiableTypeAssessment, "a1", dto.ApproveRequest{}, coordinatorClaims())
		require.Error(t, err, status)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition), status)
		assert.Equal(t, status, f.store.status("a1"))
	}
}

func TestApproveRequiresCoordinator(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))
	ctx := context.Background()

	_, err := f.svc.Approve(ctx, models.VerifiableTypeAssessment, "a1", dto.ApproveRequest{}, nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	assessor := &models.JWTClaims{UserID: "assessor-1", Role: models.RoleAssessor}
	_, err = f.svc.Approve(ctx, models.VerifiableTypeAssessment, "a1", dto.ApproveRequest{}, assessor)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	spoofed := dto.ApproveRequest{Coordinator: dto.Coordinator{CoordinatorID: "someone-else"}}
	_, err = f.svc.Approve(ctx, models.VerifiableTypeAssessment, "a1", spoofed, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	assert.Equal(t, models.VerificationStatusPending, f.store.status("a1"))
}

func TestApproveUnknownItem(t *testing.T) {
	f := newVerificationFixture()
	_, err := f.svc.Approve(context.Background(), models.VerifiableTypeAssessment, "missing", dto.ApproveRequest{}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestApproveSurfacesDownstreamFailure(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))
	f.store.failTransition["a1"] = errors.New("pq: deadlock detected")

	_, err := f.svc.Approve(context.Background(), models.VerifiableTypeAssessment, "a1", dto.ApproveRequest{}, coordinatorClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDownstream.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "deadlock detected")
}

func TestRejectRequiresComments(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))

	for _, comments := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.Reject(context.Background(), models.VerifiableTypeAssessment, "a1", dto.RejectRequest{
			RejectionReason:   models.RejectionReasonIncompleteData,
			RejectionComments: comments,
		}, coordinatorClaims())
		require.Error(t, err)
		assert.Equal(t, "Comments Required", appErrors.FromError(err).Message)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	}
	assert.Equal(t, models.VerificationStatusPending, f.store.status("a1"))
	assert.Empty(t, f.store.feedback)
}

func TestRejectCreatesRejectionFeedback(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))

	result, err := f.svc.Reject(context.Background(), models.VerifiableTypeAssessment, "a1", dto.RejectRequest{
		RejectionReason:      models.RejectionReasonMissingEvidence,
		RejectionComments:    "Please attach photos",
		Priority:             models.FeedbackPriorityHigh,
		RequiresResubmission: true,
		NotifyAssessor:       true,
	}, coordinatorClaims())
	require.NoError(t, err)

	assert.Equal(t, models.VerificationStatusRejected, f.store.status("a1"))
	require.NotNil(t, result.Item.RejectionReason)
	assert.Equal(t, models.RejectionReasonMissingEvidence, *result.Item.RejectionReason)
	require.Len(t, f.store.feedback, 1)
	fb := f.store.feedback[0]
	assert.Equal(t, models.FeedbackTypeRejection, fb.Type)
	assert.Equal(t, models.FeedbackPriorityHigh, fb.Priority)
	assert.True(t, fb.RequiresResubmission)
	assert.Equal(t, "assessor-1", fb.SubmitterID)
	assert.Equal(t, []models.NotificationEvent{models.NotificationItemRejected}, f.notifier.events())
}

func TestRejectInvalidPriority(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))
	_, err := f.svc.Reject(context.Background(), models.VerifiableTypeAssessment, "a1", dto.RejectRequest{
		RejectionReason:   models.RejectionReasonOther,
		RejectionComments: "x",
		Priority:          "CRITICAL",
	}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestBatchApproveSkipsItemsOutsidePending(t *testing.T) {
	verified := pendingItem("a2", models.VerifiableTypeAssessment)
	verified.Status = models.VerificationStatusVerified
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment), verified)

	result, err := f.svc.BatchApprove(context.Background(), models.VerifiableTypeAssessment, dto.BatchApproveRequest{
		AssessmentIDs: []string{"a1", "a2"},
	}, coordinatorClaims())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, result.Items, 2)
	assert.Equal(t, dto.BatchItemSucceeded, result.Items[0].Status)
	assert.Equal(t, dto.BatchItemSkipped, result.Items[1].Status)
	assert.Equal(t, models.VerificationStatusVerified, f.store.status("a1"))
}

func TestBatchApproveCollectsFailuresWithoutAborting(t *testing.T) {
	f := newVerificationFixture(
		pendingItem("a1", models.VerifiableTypeAssessment),
		pendingItem("a2", models.VerifiableTypeAssessment),
		pendingItem("a3", models.VerifiableTypeAssessment),
	)
	f.store.failTransition["a2"] = errors.New("write timeout")

	result, err := f.svc.BatchApprove(context.Background(), models.VerifiableTypeAssessment, dto.BatchApproveRequest{
		AssessmentIDs: []string{"a1", "a2", "a3", "missing", "a1"},
	}, coordinatorClaims())
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total, "duplicate ids are processed once")
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, "write timeout", result.Items[1].Error)
	assert.Equal(t, models.VerificationStatusPending, f.store.status("a2"))
	assert.Equal(t, models.VerificationStatusVerified, f.store.status("a3"))

	progress, err := f.svc.Progress(context.Background(), models.VerifiableTypeAssessment)
	require.NoError(t, err)
	assert.False(t, progress.Running)
	assert.Equal(t, 4, progress.Processed)
	assert.Equal(t, 4, progress.Total)
	require.NotNil(t, progress.LastResult)
	assert.Equal(t, 2, progress.LastResult.Failed)
	assert.Contains(t, f.audit.actions(), models.AuditActionBatchApprove)
}

func TestBatchRejectValidatesBeforeProcessing(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment))
	ctx := context.Background()

	_, err := f.svc.BatchReject(ctx, models.VerifiableTypeAssessment, dto.BatchRejectRequest{
		AssessmentIDs:   []string{"a1"},
		RejectionReason: models.RejectionReasonDuplicate,
	}, coordinatorClaims())
	assert.Equal(t, "Comments Required", appErrors.FromError(err).Message)

	_, err = f.svc.BatchReject(ctx, models.VerifiableTypeAssessment, dto.BatchRejectRequest{
		AssessmentIDs:     []string{"1", "2", "3", "4", "5", "6"},
		RejectionReason:   models.RejectionReasonDuplicate,
		RejectionComments: "dup",
	}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.BatchReject(ctx, models.VerifiableTypeAssessment, dto.BatchRejectRequest{
		RejectionReason:   models.RejectionReasonDuplicate,
		RejectionComments: "dup",
	}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, models.VerificationStatusPending, f.store.status("a1"))
}

func TestBatchRejectAppliesToEveryItem(t *testing.T) {
	f := newVerificationFixture(pendingItem("r1", models.VerifiableTypeResponse), pendingItem("r2", models.VerifiableTypeResponse))

	result, err := f.svc.BatchReject(context.Background(), models.VerifiableTypeResponse, dto.BatchRejectRequest{
		ResponseIDs:       []string{"r1", "r2"},
		RejectionReason:   models.RejectionReasonInaccurateData,
		RejectionComments: "figures do not add up",
	}, coordinatorClaims())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Len(t, f.store.feedback, 2)
}

// blockingStore pauses the first transition so a second batch can be attempted mid-flight.
type blockingStore struct {
	*memItemStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) Transition(ctx context.Context, change repository.StatusTransition, fb *models.Feedback) error {
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return b.memItemStore.Transition(ctx, change, fb)
}

func TestSecondBatchOnSameQueueIsRejected(t *testing.T) {
	store := &blockingStore{
		memItemStore: newMemItemStore(pendingItem("a1", models.VerifiableTypeAssessment), pendingItem("r1", models.VerifiableTypeResponse)),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	svc := NewVerificationService(VerificationDeps{Items: store}, VerificationServiceConfig{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.BatchApprove(ctx, models.VerifiableTypeAssessment, dto.BatchApproveRequest{AssessmentIDs: []string{"a1"}}, coordinatorClaims())
		done <- err
	}()
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first batch never started")
	}

	progress, err := svc.Progress(ctx, models.VerifiableTypeAssessment)
	require.NoError(t, err)
	assert.True(t, progress.Running)
	assert.Equal(t, 1, progress.Total)
	assert.True(t, strings.HasPrefix(progress.CurrentOperation, "approve"))

	_, err = svc.BatchApprove(ctx, models.VerifiableTypeAssessment, dto.BatchApproveRequest{AssessmentIDs: []string{"a1"}}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrBatchInProgress))

	close(store.release)
	require.NoError(t, <-done)

	// The lock is per queue and released once the batch completes.
	_, err = svc.BatchApprove(ctx, models.VerifiableTypeResponse, dto.BatchApproveRequest{ResponseIDs: []string{"r1"}}, coordinatorClaims())
	require.NoError(t, err)
	_, err = svc.BatchApprove(ctx, models.VerifiableTypeAssessment, dto.BatchApproveRequest{AssessmentIDs: []string{"a1"}}, coordinatorClaims())
	require.NoError(t, err)
}

type sharedProgressStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (p *sharedProgressStore) Save(_ context.Context, key string, snapshot []byte, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = append([]byte(nil), snapshot...)
	return nil
}

func (p *sharedProgressStore) Load(_ context.Context, key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data[key], nil
}

func TestBatchProgressVisibleFromAnotherReplica(t *testing.T) {
	store := &blockingStore{
		memItemStore: newMemItemStore(pendingItem("a1", models.VerifiableTypeAssessment), pendingItem("a2", models.VerifiableTypeAssessment)),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	locks := repository.NewMemoryBatchLock()
	progress := &sharedProgressStore{data: map[string][]byte{}}
	running := NewVerificationService(VerificationDeps{Items: store, Locks: locks, Progress: progress}, VerificationServiceConfig{})
	other := NewVerificationService(VerificationDeps{Items: store, Locks: locks, Progress: progress}, VerificationServiceConfig{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := running.BatchApprove(ctx, models.VerifiableTypeAssessment, dto.BatchApproveRequest{AssessmentIDs: []string{"a1", "a2"}}, coordinatorClaims())
		done <- err
	}()
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("batch never started")
	}

	snapshot, err := other.Progress(ctx, models.VerifiableTypeAssessment)
	require.NoError(t, err)
	assert.True(t, snapshot.Running)
	assert.Equal(t, 2, snapshot.Total)
	assert.Equal(t, "approve a1", snapshot.CurrentOperation)

	_, err = other.BatchApprove(ctx, models.VerifiableTypeAssessment, dto.BatchApproveRequest{AssessmentIDs: []string{"a2"}}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrBatchInProgress))

	close(store.release)
	require.NoError(t, <-done)

	snapshot, err = other.Progress(ctx, models.VerifiableTypeAssessment)
	require.NoError(t, err)
	assert.False(t, snapshot.Running)
	assert.Equal(t, 2, snapshot.Processed)
	require.NotNil(t, snapshot.LastResult)
	assert.Equal(t, 2, snapshot.LastResult.Succeeded)
}

func TestOverrideWritesOneRecordPerItem(t *testing.T) {
	f := newVerificationFixture(autoVerifiedItem("a1"), autoVerifiedItem("a2"))

	result, err := f.svc.Override(context.Background(), models.VerifiableTypeAssessment, dto.OverrideRequest{
		TargetIDs:     []string{"a1", "a2", "a1"},
		NewStatus:     models.VerificationStatusPending,
		Reason:        models.OverrideReasonDataQuality,
		Justification: "GPS readings look fabricated",
	}, coordinatorClaims())
	require.NoError(t, err)

	require.Len(t, f.store.overrides, 2)
	for i, id := range []string{"a1", "a2"} {
		record := f.store.overrides[i]
		assert.Equal(t, []string{id}, []string(record.TargetIDs))
		assert.Equal(t, models.VerificationStatusAutoVerified, record.OriginalStatus)
		assert.Equal(t, models.VerificationStatusPending, record.NewStatus)
		assert.Equal(t, "rule-1", *record.RuleID)
		assert.Equal(t, "Dana Coordinator", record.CoordinatorName)
		assert.Equal(t, models.VerificationStatusPending, f.store.status(id))
	}
	assert.Len(t, result.Overrides, 2)
	assert.Len(t, result.Items, 2)
	assert.Nil(t, result.Items[0].VerifiedBy)
	assert.Len(t, f.notifier.events(), 2)
}

func TestOverrideToRejected(t *testing.T) {
	f := newVerificationFixture(autoVerifiedItem("a1"))

	result, err := f.svc.Override(context.Background(), models.VerifiableTypeAssessment, dto.OverrideRequest{
		TargetIDs:     []string{"a1"},
		NewStatus:     models.VerificationStatusRejected,
		Reason:        models.OverrideReasonPolicyChange,
		Justification: "Policy now requires photos",
	}, coordinatorClaims())
	require.NoError(t, err)
	assert.Equal(t, models.VerificationStatusRejected, result.Items[0].Status)
	assert.Equal(t, string(models.OverrideReasonPolicyChange), *result.Items[0].RejectionReason)
}

func TestOverrideIsAllOrNothing(t *testing.T) {
	f := newVerificationFixture(autoVerifiedItem("a1"), pendingItem("a2", models.VerifiableTypeAssessment))

	_, err := f.svc.Override(context.Background(), models.VerifiableTypeAssessment, dto.OverrideRequest{
		TargetIDs:     []string{"a1", "a2"},
		NewStatus:     models.VerificationStatusPending,
		Reason:        models.OverrideReasonManualReview,
		Justification: "Needs review",
	}, coordinatorClaims())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Empty(t, f.store.overrides)
	assert.Equal(t, models.VerificationStatusAutoVerified, f.store.status("a1"))
}

func TestOverrideLostRaceMapsToInvalidTransition(t *testing.T) {
	f := newVerificationFixture(autoVerifiedItem("a1"))
	f.store.overrideErr = wrapNoRows("a1")

	_, err := f.svc.Override(context.Background(), models.VerifiableTypeAssessment, dto.OverrideRequest{
		TargetIDs:     []string{"a1"},
		NewStatus:     models.VerificationStatusPending,
		Reason:        models.OverrideReasonOther,
		Justification: "x",
	}, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestOverrideValidation(t *testing.T) {
	f := newVerificationFixture(autoVerifiedItem("a1"))
	ctx := context.Background()
	base := dto.OverrideRequest{
		TargetIDs:     []string{"a1"},
		NewStatus:     models.VerificationStatusPending,
		Reason:        models.OverrideReasonDataQuality,
		Justification: "reason",
	}

	blank := base
	blank.Justification = "   "
	_, err := f.svc.Override(ctx, models.VerifiableTypeAssessment, blank, coordinatorClaims())
	assert.Equal(t, "Justification Required", appErrors.FromError(err).Message)

	verified := base
	verified.NewStatus = models.VerificationStatusVerified
	_, err = f.svc.Override(ctx, models.VerifiableTypeAssessment, verified, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	unknown := base
	unknown.Reason = "BORED"
	_, err = f.svc.Override(ctx, models.VerifiableTypeAssessment, unknown, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	f.config.cfg.GlobalSettings.EmergencyOverrideEnabled = false
	emergency := base
	emergency.Reason = models.OverrideReasonEmergency
	_, err = f.svc.Override(ctx, models.VerifiableTypeAssessment, emergency, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	assert.Empty(t, f.store.overrides)
	assert.Equal(t, models.VerificationStatusAutoVerified, f.store.status("a1"))
}

func TestRequiredDecisionFieldsAreEnforced(t *testing.T) {
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment), autoVerifiedItem("a2"))
	ctx := context.Background()

	_, err := f.svc.Reject(ctx, models.VerifiableTypeAssessment, "a1", dto.RejectRequest{
		RejectionReason:   "  ",
		RejectionComments: "photos missing",
	}, coordinatorClaims())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Equal(t, "rejectionReason is required", appErrors.FromError(err).Message)

	_, err = f.svc.BatchReject(ctx, models.VerifiableTypeAssessment, dto.BatchRejectRequest{
		AssessmentIDs:     []string{"a1"},
		RejectionComments: "photos missing",
	}, coordinatorClaims())
	require.Error(t, err)
	assert.Equal(t, "rejectionReason is required", appErrors.FromError(err).Message)

	_, err = f.svc.Override(ctx, models.VerifiableTypeAssessment, dto.OverrideRequest{
		TargetIDs:     []string{" ", ""},
		NewStatus:     models.VerificationStatusPending,
		Reason:        models.OverrideReasonDataQuality,
		Justification: "gps drift",
	}, coordinatorClaims())
	require.Error(t, err)
	assert.Equal(t, "targetIds must not be empty", appErrors.FromError(err).Message)

	_, err = f.svc.Override(ctx, models.VerifiableTypeAssessment, dto.OverrideRequest{
		TargetIDs:     []string{"a2"},
		Reason:        models.OverrideReasonDataQuality,
		Justification: "gps drift",
	}, coordinatorClaims())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Equal(t, models.VerificationStatusPending, f.store.status("a1"))
	assert.Equal(t, models.VerificationStatusAutoVerified, f.store.status("a2"))
	assert.Empty(t, f.store.overrides)
}

func TestListQueueDefaultsToPending(t *testing.T) {
	done := pendingItem("a2", models.VerifiableTypeAssessment)
	done.Status = models.VerificationStatusVerified
	f := newVerificationFixture(pendingItem("a1", models.VerifiableTypeAssessment), done)

	items, pagination, err := f.svc.ListQueue(context.Background(), dto.QueueQuery{Type: "assessment"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].ID)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 1, pagination.TotalCount)

	items, _, err = f.svc.ListQueue(context.Background(), dto.QueueQuery{Type: "ASSESSMENT", Status: []string{"PENDING,VERIFIED"}})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestBuildQueueFilter(t *testing.T) {
	filter, err := buildQueueFilter(dto.QueueQuery{
		Type:          "RESPONSE",
		SortBy:        "completeness",
		SortOrder:     "desc",
		SubmittedFrom: "2024-03-01",
		PageSize:      1000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.QueueSortCompleteness, filter.SortBy)
	assert.True(t, filter.SortDesc)
	assert.Equal(t, 200, filter.PageSize)
	require.NotNil(t, filter.SubmittedFrom)
	assert.Equal(t, 2024, filter.SubmittedFrom.Year())

	for _, query := range []dto.QueueQuery{
		{},
		{Type: "ASSESSMENT", SortBy: "submitterName"},
		{Type: "ASSESSMENT", SortOrder: "sideways"},
		{Type: "ASSESSMENT", Status: []string{"DONE"}},
		{Type: "ASSESSMENT", SubmittedFrom: "yesterday"},
		{Type: "ASSESSMENT", MinCompleteness: floatPtr(120)},
	} {
		_, err := buildQueueFilter(query)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), "%+v", query)
	}
}

type overrideListStub struct {
	records []models.AutoApprovalOverride
	filter  models.OverrideFilter
}

func (o *overrideListStub) List(_ context.Context, filter models.OverrideFilter) ([]models.AutoApprovalOverride, error) {
	o.filter = filter
	return o.records, nil
}

func TestExportOverridesCSV(t *testing.T) {
	lister := &overrideListStub{records: []models.AutoApprovalOverride{{
		ID:              "o1",
		TargetType:      models.VerifiableTypeAssessment,
		TargetIDs:       []string{"a1"},
		OriginalStatus:  models.VerificationStatusAutoVerified,
		NewStatus:       models.VerificationStatusPending,
		ReasonCode:      models.OverrideReasonDataQuality,
		Justification:   "blurry photos",
		CoordinatorName: "Dana",
		CreatedAt:       fixedNow,
	}}}
	svc := NewVerificationService(VerificationDeps{Items: newMemItemStore(), Overrides: lister}, VerificationServiceConfig{})
	svc.now = fixedClock

	file, err := svc.ExportOverrides(context.Background(), dto.OverrideQuery{Format: "csv", Type: "assessment"})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "overrides-20240304-103000.csv", file.Filename)
	assert.Contains(t, string(file.Payload), "blurry photos")
	assert.Equal(t, maxOverrideExport, lister.filter.Limit)
	assert.Equal(t, models.VerifiableTypeAssessment, lister.filter.TargetType)

	_, err = svc.ExportOverrides(context.Background(), dto.OverrideQuery{Format: "xlsx"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func wrapNoRows(id string) error {
	return fmt.Errorf("override %s: %w", id, sql.ErrNoRows)
}
