package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// SelectRule returns the first enabled rule for the item's type and subtype, by ascending priority
// (ties keep list order), whose threshold the item clears. Nil means the item needs manual review.
func SelectRule(item *models.VerifiableItem, rules []models.AutoApprovalRule, now time.Time) *models.AutoApprovalRule {
	candidates := make([]models.AutoApprovalRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled && rule.AppliesTo(item) {
			candidates = append(candidates, rule)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})
	for i := range candidates {
		if EvaluateQuality(item, candidates[i].Conditions, now) {
			rule := candidates[i]
			return &rule
		}
	}
	return nil
}

type autoApprovalConfigSource interface {
	Current(ctx context.Context) (*models.AutoApprovalConfig, error)
}

type approvalCounter interface {
	Reserve(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Count(ctx context.Context, key string) (int, error)
}

type presenceChecker interface {
	AnyOnline(ctx context.Context) (bool, error)
}

// RuleMatcher applies SelectRule behind the global hourly cap, the per-rule batch cap and the
// coordinator presence requirement.
type RuleMatcher struct {
	config   autoApprovalConfigSource
	counter  approvalCounter
	presence presenceChecker
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewRuleMatcher constructs a RuleMatcher.
func NewRuleMatcher(config autoApprovalConfigSource, counter approvalCounter, presence presenceChecker, metrics *MetricsService, logger *zap.Logger) *RuleMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RuleMatcher{config: config, counter: counter, presence: presence, metrics: metrics, logger: logger, now: time.Now}
}

const counterWindow = time.Hour

func hourBucket(t time.Time) string {
	return t.UTC().Format("2006010215")
}

func globalCounterKey(t time.Time) string {
	return "global:" + hourBucket(t)
}

func ruleCounterKey(ruleID string, t time.Time) string {
	return fmt.Sprintf("rule:%s:%s", ruleID, hourBucket(t))
}

// Match decides whether item is auto-verified. A successful match holds a slot in the hourly
// counters; callers that fail to persist the decision must hand it back with Release.
func (m *RuleMatcher) Match(ctx context.Context, item *models.VerifiableItem) (models.AutoApprovalDecision, error) {
	decision := models.AutoApprovalDecision{Verdict: models.VerificationStatusPending}
	defer func() {
		m.metrics.RecordAutoApprovalDecision(string(item.Type), string(decision.Reason))
	}()

	cfg, err := m.config.Current(ctx)
	if err != nil {
		decision.Reason = models.AutoApprovalReasonUnavailable
		return decision, err
	}
	if !cfg.Enabled {
		decision.Reason = models.AutoApprovalReasonDisabled
		return decision, nil
	}
	if cfg.GlobalSettings.RequireCoordinatorOnline && m.presence != nil {
		online, err := m.presence.AnyOnline(ctx)
		if err != nil {
			decision.Reason = models.AutoApprovalReasonUnavailable
			return decision, err
		}
		if !online {
			decision.Reason = models.AutoApprovalReasonCoordinatorOffline
			return decision, nil
		}
	}

	now := m.now()
	rule := SelectRule(item, cfg.Rules, now)
	if rule == nil {
		decision.Reason = models.AutoApprovalReasonNoMatchingRule
		return decision, nil
	}

	if limit := cfg.GlobalSettings.MaxAutoApprovalsPerHour; limit > 0 {
		ok, err := m.counter.Reserve(ctx, globalCounterKey(now), limit, counterWindow)
		if err != nil {
			decision.Reason = models.AutoApprovalReasonUnavailable
			return decision, err
		}
		if !ok {
			decision.Reason = models.AutoApprovalReasonRateLimited
			return decision, nil
		}
	}
	if rule.Conditions.MaxBatchSize != nil {
		ok, err := m.counter.Reserve(ctx, ruleCounterKey(rule.ID, now), *rule.Conditions.MaxBatchSize, counterWindow)
		if err != nil || !ok {
			m.releaseGlobal(ctx, cfg, now)
			if err != nil {
				decision.Reason = models.AutoApprovalReasonUnavailable
				return decision, err
			}
			decision.Reason = models.AutoApprovalReasonBatchLimit
			return decision, nil
		}
	}

	ruleID := rule.ID
	decision.Verdict = models.VerificationStatusAutoVerified
	decision.RuleID = &ruleID
	decision.Reason = models.AutoApprovalReasonRuleMatched
	decision.MatchedAt = now
	decision.HoldsRuleSlot = rule.Conditions.MaxBatchSize != nil
	decision.HoldsGlobalSlot = cfg.GlobalSettings.MaxAutoApprovalsPerHour > 0
	return decision, nil
}

// Release hands back the counter slots held by an auto-verified decision that was not persisted.
func (m *RuleMatcher) Release(ctx context.Context, decision models.AutoApprovalDecision) {
	if !decision.AutoVerified() || decision.RuleID == nil {
		return
	}
	if decision.HoldsRuleSlot {
		if err := m.counter.Release(ctx, ruleCounterKey(*decision.RuleID, decision.MatchedAt)); err != nil {
			m.logger.Warn("failed to release rule approval slot", zap.String("rule_id", *decision.RuleID), zap.Error(err))
		}
	}
	if decision.HoldsGlobalSlot {
		if err := m.counter.Release(ctx, globalCounterKey(decision.MatchedAt)); err != nil {
			m.logger.Warn("failed to release global approval slot", zap.Error(err))
		}
	}
}

// ApprovalsThisHour reports how many global slots are taken in the current hour.
func (m *RuleMatcher) ApprovalsThisHour(ctx context.Context) (int, error) {
	return m.counter.Count(ctx, globalCounterKey(m.now()))
}

func (m *RuleMatcher) releaseGlobal(ctx context.Context, cfg *models.AutoApprovalConfig, now time.Time) {
	if cfg.GlobalSettings.MaxAutoApprovalsPerHour <= 0 {
		return
	}
	if err := m.counter.Release(ctx, globalCounterKey(now)); err != nil {
		m.logger.Warn("failed to release global approval slot", zap.Error(err))
	}
}
