package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/internal/repository"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

var fixedNow = time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func coordinatorClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator, FullName: "Dana Coordinator"}
}

func pendingItem(id string, itemType models.VerifiableType) *models.VerifiableItem {
	return &models.VerifiableItem{
		ID:          id,
		Type:        itemType,
		Subtype:     models.AssessmentTypeHealth,
		SubmitterID: "assessor-1",
		SubmittedAt: fixedNow.Add(-time.Hour),
		Status:      models.VerificationStatusPending,
		Data:        json.RawMessage(`{}`),
	}
}

// memItemStore emulates the compare-and-set semantics of VerificationRepository.
type memItemStore struct {
	mu             sync.Mutex
	items          map[string]*models.VerifiableItem
	feedback       []*models.Feedback
	overrides      []*models.AutoApprovalOverride
	transitions    []repository.StatusTransition
	failTransition map[string]error
	createErr      error
	overrideErr    error
}

func newMemItemStore(items ...*models.VerifiableItem) *memItemStore {
	store := &memItemStore{items: map[string]*models.VerifiableItem{}, failTransition: map[string]error{}}
	for _, item := range items {
		store.items[item.ID] = item
	}
	return store
}

func (m *memItemStore) status(id string) models.VerificationStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id].Status
}

func (m *memItemStore) Create(_ context.Context, item *models.VerifiableItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *memItemStore) GetByID(_ context.Context, itemType models.VerifiableType, id string) (*models.VerifiableItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || item.Type != itemType {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (m *memItemStore) List(_ context.Context, filter models.VerificationQueueFilter) ([]models.VerifiableItem, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []models.VerifiableItem{}
	for _, item := range m.items {
		if item.Type != filter.Type {
			continue
		}
		for _, status := range filter.Status {
			if item.Status == status {
				result = append(result, *item)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (m *memItemStore) Transition(_ context.Context, change repository.StatusTransition, feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failTransition[change.ID]; err != nil {
		return err
	}
	item, ok := m.items[change.ID]
	if !ok || item.Type != change.Type || item.Status != change.From {
		return sql.ErrNoRows
	}
	item.Status = change.To
	if change.RuleID != nil {
		item.AutoApprovalRuleID = change.RuleID
	}
	m.transitions = append(m.transitions, change)
	if feedback != nil {
		m.feedback = append(m.feedback, feedback)
	}
	return nil
}

func (m *memItemStore) ApplyOverride(_ context.Context, itemType models.VerifiableType, overrides []*models.AutoApprovalOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overrideErr != nil {
		return m.overrideErr
	}
	for _, override := range overrides {
		item, ok := m.items[override.TargetIDs[0]]
		if !ok || item.Type != itemType || item.Status != models.VerificationStatusAutoVerified {
			return sql.ErrNoRows
		}
	}
	for _, override := range overrides {
		if override.ID == "" {
			override.ID = "ovr-" + override.TargetIDs[0]
		}
		m.items[override.TargetIDs[0]].Status = override.NewStatus
		m.overrides = append(m.overrides, override)
	}
	return nil
}

func (m *memItemStore) CountByStatus(_ context.Context, submitterID string) ([]models.StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[models.StatusCount]int{}
	for _, item := range m.items {
		if submitterID != "" && item.SubmitterID != submitterID {
			continue
		}
		counts[models.StatusCount{Type: item.Type, Status: item.Status}]++
	}
	result := []models.StatusCount{}
	for key, count := range counts {
		key.Count = count
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Type != result[j].Type {
			return result[i].Type < result[j].Type
		}
		return result[i].Status < result[j].Status
	})
	return result, nil
}

func (m *memItemStore) CountAutoVerifiedSince(_ context.Context, _ time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, item := range m.items {
		if item.Status == models.VerificationStatusAutoVerified {
			total++
		}
	}
	return total, nil
}

type staticConfig struct {
	cfg *models.AutoApprovalConfig
	err error
}

func (s *staticConfig) Current(context.Context) (*models.AutoApprovalConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

type presenceStub struct {
	online bool
	err    error
}

func (p presenceStub) AnyOnline(context.Context) (bool, error) { return p.online, p.err }

type recordingAudit struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return r.err
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.logs))
	for _, log := range r.logs {
		out = append(out, log.Action)
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) events() []models.NotificationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationEvent, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Event)
	}
	return out
}

type achievementCall struct {
	donorID        string
	responseID     string
	verificationID string
}

type recordingAchievements struct {
	calls  []achievementCall
	result []models.DonorAchievement
	err    error
}

func (r *recordingAchievements) CalculateForVerifiedResponse(_ context.Context, donorID, responseID, verificationID string) ([]models.DonorAchievement, error) {
	r.calls = append(r.calls, achievementCall{donorID: donorID, responseID: responseID, verificationID: verificationID})
	return r.result, r.err
}

// memAchievementStore enforces the (donor, type) uniqueness of the achievements table.
type memAchievementStore struct {
	stats       *models.DonorVerificationStats
	statsErr    error
	earned      map[models.AchievementType]models.DonorAchievement
	raceOn      models.AchievementType
	createCalls int
}

func newMemAchievementStore(stats *models.DonorVerificationStats) *memAchievementStore {
	return &memAchievementStore{stats: stats, earned: map[models.AchievementType]models.DonorAchievement{}}
}

func (m *memAchievementStore) DonorStats(_ context.Context, donorID string) (*models.DonorVerificationStats, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	stats := *m.stats
	stats.DonorID = donorID
	return &stats, nil
}

func (m *memAchievementStore) Exists(_ context.Context, _ string, achievementType models.AchievementType) (bool, error) {
	if achievementType == m.raceOn {
		// Another writer inserts between the check and the insert.
		return false, nil
	}
	_, ok := m.earned[achievementType]
	return ok, nil
}

func (m *memAchievementStore) Create(_ context.Context, achievement *models.DonorAchievement) (bool, error) {
	m.createCalls++
	if achievement.Type == m.raceOn {
		return false, nil
	}
	if _, ok := m.earned[achievement.Type]; ok {
		return false, nil
	}
	achievement.ID = "ach-" + string(achievement.Type)
	m.earned[achievement.Type] = *achievement
	return true, nil
}

func (m *memAchievementStore) ListByDonor(_ context.Context, _ string) ([]models.DonorAchievement, error) {
	out := make([]models.DonorAchievement, 0, len(m.earned))
	for _, a := range m.earned {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

var errStoreDown = errors.New("connection refused")
