package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type statusCounter interface {
	CountByStatus(ctx context.Context, submitterID string) ([]models.StatusCount, error)
	CountAutoVerifiedSince(ctx context.Context, since time.Time) (int, error)
}

type overrideCounter interface {
	CountSince(ctx context.Context, since time.Time) (int, error)
}

type feedbackCounter interface {
	CountOpen(ctx context.Context, submitterID string, unreadOnly bool) (int, error)
}

type donorSummaryReader interface {
	DonorStats(ctx context.Context, donorID string) (*models.DonorVerificationStats, error)
	ListByDonor(ctx context.Context, donorID string) ([]models.DonorAchievement, error)
}

type approvalUsage interface {
	ApprovalsThisHour(ctx context.Context) (int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the role-specific dashboard payloads.
type DashboardService struct {
	items     statusCounter
	overrides overrideCounter
	feedback  feedbackCounter
	donors    donorSummaryReader
	config    autoApprovalConfigSource
	usage     approvalUsage
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Items     statusCounter
	Overrides overrideCounter
	Feedback  feedbackCounter
	Donors    donorSummaryReader
	Config    autoApprovalConfigSource
	Usage     approvalUsage
	Cache     *CacheService
	Logger    *zap.Logger
	Options   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Options
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		items:     params.Items,
		overrides: params.Overrides,
		feedback:  params.Feedback,
		donors:    params.Donors,
		config:    params.Config,
		usage:     params.Usage,
		cache:     params.Cache,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// ForUser returns the dashboard for the caller's role and whether it came from cache.
func (s *DashboardService) ForUser(ctx context.Context, actor *models.JWTClaims) (*dto.DashboardResponse, bool, error) {
	if actor == nil || actor.UserID == "" {
		return nil, false, appErrors.ErrUnauthorized
	}
	cacheKey := dashboardCacheKey(actor)
	var cached dto.DashboardResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, true, nil
	}

	resp := &dto.DashboardResponse{Role: actor.Role, GeneratedAt: s.now().UTC()}
	var err error
	switch actor.Role {
	case models.RoleCoordinator, models.RoleAdmin:
		resp.Coordinator, err = s.coordinator(ctx)
	case models.RoleAssessor, models.RoleResponder:
		resp.Submitter, err = s.submitter(ctx, actor.UserID)
	case models.RoleDonor:
		resp.Donor, err = s.donor(ctx, actor.UserID)
	default:
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "no dashboard for role "+string(actor.Role))
	}
	if err != nil {
		return nil, false, err
	}
	s.cache.Set(ctx, cacheKey, resp, s.cfg.CacheTTL)
	return resp, false, nil
}

func dashboardCacheKey(actor *models.JWTClaims) string {
	if actor.IsCoordinator() {
		// Coordinators share one view of the queue.
		return "dash:coordinator"
	}
	return fmt.Sprintf("dash:%s:%s", actor.Role, actor.UserID)
}

func (s *DashboardService) coordinator(ctx context.Context) (*dto.CoordinatorDashboard, error) {
	counts, err := s.items.CountByStatus(ctx, "")
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to count verification queue")
	}
	since := s.now().UTC().Add(-24 * time.Hour)
	section := &dto.CoordinatorDashboard{Queue: counts}
	for _, count := range counts {
		if count.Status == models.VerificationStatusPending {
			section.PendingTotal += count.Count
		}
	}
	if section.AutoVerifiedLast24h, err = s.items.CountAutoVerifiedSince(ctx, since); err != nil {
		return nil, appErrors.Downstream(err, "failed to count auto-verified items")
	}
	if section.OverridesLast24h, err = s.overrides.CountSince(ctx, since); err != nil {
		return nil, appErrors.Downstream(err, "failed to count overrides")
	}
	if section.UnresolvedFeedback, err = s.feedback.CountOpen(ctx, "", false); err != nil {
		return nil, appErrors.Downstream(err, "failed to count feedback")
	}
	if s.config != nil {
		cfg, err := s.config.Current(ctx)
		if err != nil {
			return nil, err
		}
		section.AutoApprovalEnabled = cfg.Enabled
		section.MaxAutoApprovalsPerHour = cfg.GlobalSettings.MaxAutoApprovalsPerHour
	}
	if s.usage != nil {
		used, err := s.usage.ApprovalsThisHour(ctx)
		if err != nil {
			s.logger.Warn("failed to read auto-approval usage", zap.Error(err))
		}
		section.AutoApprovalsThisHour = used
	}
	return section, nil
}

func (s *DashboardService) submitter(ctx context.Context, userID string) (*dto.SubmitterDashboard, error) {
	counts, err := s.items.CountByStatus(ctx, userID)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to count submissions")
	}
	unread, err := s.feedback.CountOpen(ctx, userID, true)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to count feedback")
	}
	return &dto.SubmitterDashboard{Submissions: counts, UnreadFeedback: unread}, nil
}

func (s *DashboardService) donor(ctx context.Context, donorID string) (*dto.DonorDashboard, error) {
	stats, err := s.donors.DonorStats(ctx, donorID)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to load donor statistics")
	}
	achievements, err := s.donors.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to list donor achievements")
	}
	if achievements == nil {
		achievements = []models.DonorAchievement{}
	}
	return &dto.DonorDashboard{Stats: stats, Achievements: achievements}, nil
}
