package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type mapCache struct {
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]byte{}} }

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *mapCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *mapCache) DeleteByPattern(context.Context, string) error { return nil }

type countStub struct {
	count int
	err   error
}

func (c countStub) CountSince(context.Context, time.Time) (int, error) { return c.count, c.err }

type feedbackCountStub struct {
	open   int
	unread int
}

func (f feedbackCountStub) CountOpen(_ context.Context, _ string, unreadOnly bool) (int, error) {
	if unreadOnly {
		return f.unread, nil
	}
	return f.open, nil
}

type usageStub struct {
	used int
	err  error
}

func (u usageStub) ApprovalsThisHour(context.Context) (int, error) { return u.used, u.err }

func newDashboardFixture(cache *mapCache) (*DashboardService, *memItemStore) {
	auto := pendingItem("a2", models.VerifiableTypeAssessment)
	auto.Status = models.VerificationStatusAutoVerified
	mine := pendingItem("a3", models.VerifiableTypeAssessment)
	mine.SubmitterID = "assessor-2"
	store := newMemItemStore(pendingItem("a1", models.VerifiableTypeAssessment), auto, mine)

	cfg := enabledConfig()
	cfg.GlobalSettings.MaxAutoApprovalsPerHour = 25
	params := DashboardServiceParams{
		Items:     store,
		Overrides: countStub{count: 2},
		Feedback:  feedbackCountStub{open: 4, unread: 1},
		Donors:    newMemAchievementStore(&models.DonorVerificationStats{TotalVerifiedDeliveries: 2}),
		Config:    &staticConfig{cfg: cfg},
		Usage:     usageStub{used: 7},
	}
	if cache != nil {
		params.Cache = NewCacheService(cache, nil, time.Minute, nil, true)
	}
	svc := NewDashboardService(params)
	svc.now = fixedClock
	return svc, store
}

func TestCoordinatorDashboard(t *testing.T) {
	svc, _ := newDashboardFixture(nil)

	resp, hit, err := svc.ForUser(context.Background(), coordinatorClaims())
	require.NoError(t, err)
	assert.False(t, hit)
	require.NotNil(t, resp.Coordinator)
	assert.Nil(t, resp.Submitter)
	assert.Equal(t, 2, resp.Coordinator.PendingTotal)
	assert.Equal(t, 1, resp.Coordinator.AutoVerifiedLast24h)
	assert.Equal(t, 2, resp.Coordinator.OverridesLast24h)
	assert.Equal(t, 4, resp.Coordinator.UnresolvedFeedback)
	assert.True(t, resp.Coordinator.AutoApprovalEnabled)
	assert.Equal(t, 7, resp.Coordinator.AutoApprovalsThisHour)
	assert.Equal(t, 25, resp.Coordinator.MaxAutoApprovalsPerHour)
}

func TestSubmitterDashboardShowsOwnWork(t *testing.T) {
	svc, _ := newDashboardFixture(nil)

	resp, _, err := svc.ForUser(context.Background(), &models.JWTClaims{UserID: "assessor-2", Role: models.RoleAssessor})
	require.NoError(t, err)
	require.NotNil(t, resp.Submitter)
	require.Len(t, resp.Submitter.Submissions, 1)
	assert.Equal(t, 1, resp.Submitter.Submissions[0].Count)
	assert.Equal(t, 1, resp.Submitter.UnreadFeedback)
}

func TestDonorDashboard(t *testing.T) {
	svc, _ := newDashboardFixture(nil)

	resp, _, err := svc.ForUser(context.Background(), &models.JWTClaims{UserID: "donor-1", Role: models.RoleDonor})
	require.NoError(t, err)
	require.NotNil(t, resp.Donor)
	assert.Equal(t, 2, resp.Donor.Stats.TotalVerifiedDeliveries)
	assert.NotNil(t, resp.Donor.Achievements)
}

func TestDashboardServedFromCache(t *testing.T) {
	cache := newMapCache()
	svc, store := newDashboardFixture(cache)
	ctx := context.Background()

	first, hit, err := svc.ForUser(ctx, coordinatorClaims())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Contains(t, cache.entries, "dash:coordinator")

	store.items["a9"] = pendingItem("a9", models.VerifiableTypeAssessment)
	second, hit, err := svc.ForUser(ctx, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Coordinator.PendingTotal, second.Coordinator.PendingTotal)
}

func TestDashboardErrors(t *testing.T) {
	svc, _ := newDashboardFixture(nil)
	ctx := context.Background()

	_, _, err := svc.ForUser(ctx, nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, _, err = svc.ForUser(ctx, &models.JWTClaims{UserID: "x", Role: "AUDITOR"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	svc.overrides = countStub{err: errStoreDown}
	_, _, err = svc.ForUser(ctx, coordinatorClaims())
	assert.True(t, errors.Is(err, appErrors.ErrDownstream))

	svc.overrides = countStub{}
	svc.usage = usageStub{err: errStoreDown}
	resp, _, err := svc.ForUser(ctx, coordinatorClaims())
	require.NoError(t, err, "usage counter failures do not block the dashboard")
	assert.Zero(t, resp.Coordinator.AutoApprovalsThisHour)
}
