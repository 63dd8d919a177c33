package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type achievementStore interface {
	DonorStats(ctx context.Context, donorID string) (*models.DonorVerificationStats, error)
	Exists(ctx context.Context, donorID string, achievementType models.AchievementType) (bool, error)
	Create(ctx context.Context, achievement *models.DonorAchievement) (bool, error)
	ListByDonor(ctx context.Context, donorID string) ([]models.DonorAchievement, error)
}

type notifier interface {
	Notify(ctx context.Context, notification models.Notification)
}

type achievementRule struct {
	Type        models.AchievementType
	Title       string
	Description string
	Category    string
	Icon        string
	Earned      func(stats *models.DonorVerificationStats) bool
}

const specialistThreshold = 10

func specialistRule(achievementType models.AchievementType, subtype, label, icon string) achievementRule {
	return achievementRule{
		Type:        achievementType,
		Title:       label + " Specialist",
		Description: fmt.Sprintf("Completed %d verified %s deliveries", specialistThreshold, label),
		Category:    models.AchievementCategorySpecialist,
		Icon:        icon,
		Earned: func(stats *models.DonorVerificationStats) bool {
			return stats.ResponseTypeCounts[subtype] >= specialistThreshold
		},
	}
}

// achievementRules are evaluated in order; the order is also the order of returned achievements.
var achievementRules = []achievementRule{
	{
		Type:        models.AchievementFirstVerifiedDelivery,
		Title:       "First Verified Delivery",
		Description: "Your first delivery was verified",
		Category:    models.AchievementCategoryMilestone,
		Icon:        "trophy",
		Earned:      func(s *models.DonorVerificationStats) bool { return s.TotalVerifiedDeliveries >= 1 },
	},
	{
		Type:        models.AchievementStreak5,
		Title:       "Reliable Partner",
		Description: "5 verified deliveries in a row",
		Category:    models.AchievementCategoryConsistency,
		Icon:        "flame",
		Earned:      func(s *models.DonorVerificationStats) bool { return s.CurrentStreak >= 5 },
	},
	{
		Type:        models.AchievementStreak10,
		Title:       "Trusted Partner",
		Description: "10 verified deliveries in a row",
		Category:    models.AchievementCategoryConsistency,
		Icon:        "shield",
		Earned:      func(s *models.DonorVerificationStats) bool { return s.CurrentStreak >= 10 },
	},
	specialistRule(models.AchievementHealthSpecialist, models.ResponseTypeHealth, "Health", "medical"),
	specialistRule(models.AchievementWASHSpecialist, models.ResponseTypeWASH, "WASH", "droplet"),
	specialistRule(models.AchievementShelterSpecialist, models.ResponseTypeShelter, "Shelter", "home"),
	specialistRule(models.AchievementFoodSpecialist, models.ResponseTypeFood, "Food", "wheat"),
	specialistRule(models.AchievementSecuritySpecialist, models.ResponseTypeSecurity, "Security", "lock"),
	specialistRule(models.AchievementPopulationSpecialist, models.ResponseTypePopulation, "Population", "users"),
	specialistRule(models.AchievementLogisticsSpecialist, models.ResponseTypeLogistics, "Logistics", "truck"),
	{
		Type:        models.AchievementImpact50,
		Title:       "Community Helper",
		Description: "Helped 50 beneficiaries through verified deliveries",
		Category:    models.AchievementCategoryImpact,
		Icon:        "heart",
		Earned:      func(s *models.DonorVerificationStats) bool { return s.TotalBeneficiaries >= 50 },
	},
	{
		Type:        models.AchievementImpact200,
		Title:       "Community Champion",
		Description: "Helped 200 beneficiaries through verified deliveries",
		Category:    models.AchievementCategoryImpact,
		Icon:        "star",
		Earned:      func(s *models.DonorVerificationStats) bool { return s.TotalBeneficiaries >= 200 },
	},
}

// AchievementService awards donor badges from cumulative verified delivery statistics.
type AchievementService struct {
	repo     achievementStore
	notifier notifier
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewAchievementService constructs the service.
func NewAchievementService(repo achievementStore, notifier notifier, metrics *MetricsService, logger *zap.Logger) *AchievementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementService{repo: repo, notifier: notifier, metrics: metrics, logger: logger, now: time.Now}
}

// CalculateForVerifiedResponse awards every achievement the donor now qualifies for and does not
// hold yet, returning only the new ones. Safe to call repeatedly for the same event.
func (s *AchievementService) CalculateForVerifiedResponse(ctx context.Context, donorID, responseID, verificationID string) ([]models.DonorAchievement, error) {
	if donorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "donorId is required")
	}
	stats, err := s.repo.DonorStats(ctx, donorID)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to load donor statistics")
	}

	created := make([]models.DonorAchievement, 0)
	for _, rule := range achievementRules {
		if !rule.Earned(stats) {
			continue
		}
		exists, err := s.repo.Exists(ctx, donorID, rule.Type)
		if err != nil {
			return created, appErrors.Downstream(err, "failed to check donor achievements")
		}
		if exists {
			continue
		}
		achievement := models.DonorAchievement{
			DonorID:     donorID,
			Type:        rule.Type,
			Title:       rule.Title,
			Description: rule.Description,
			Category:    rule.Category,
			Icon:        rule.Icon,
			EarnedAt:    s.now().UTC(),
		}
		if responseID != "" {
			achievement.ResponseID = &responseID
		}
		if verificationID != "" {
			achievement.VerificationID = &verificationID
		}
		inserted, err := s.repo.Create(ctx, &achievement)
		if err != nil {
			return created, appErrors.Downstream(err, "failed to store donor achievement")
		}
		if !inserted {
			// A concurrent calculation got there first.
			continue
		}
		created = append(created, achievement)
		s.metrics.RecordAchievement(string(rule.Type))
		if s.notifier != nil {
			s.notifier.Notify(ctx, models.Notification{
				Event:       models.NotificationAchievementEarned,
				RecipientID: donorID,
				TargetType:  string(models.VerifiableTypeResponse),
				TargetID:    responseID,
				Payload:     map[string]interface{}{"achievementType": rule.Type, "title": rule.Title},
			})
		}
	}
	if len(created) > 0 {
		s.logger.Info("donor achievements awarded", zap.String("donor_id", donorID), zap.Int("count", len(created)))
	}
	return created, nil
}

// ListForDonor returns a donor's achievements.
func (s *AchievementService) ListForDonor(ctx context.Context, donorID string, actor *models.JWTClaims) ([]models.DonorAchievement, error) {
	if err := authorizeDonorView(donorID, actor); err != nil {
		return nil, err
	}
	achievements, err := s.repo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to list donor achievements")
	}
	if achievements == nil {
		achievements = []models.DonorAchievement{}
	}
	return achievements, nil
}

// Stats returns a donor's verification statistics.
func (s *AchievementService) Stats(ctx context.Context, donorID string, actor *models.JWTClaims) (*models.DonorVerificationStats, error) {
	if err := authorizeDonorView(donorID, actor); err != nil {
		return nil, err
	}
	stats, err := s.repo.DonorStats(ctx, donorID)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to load donor statistics")
	}
	return stats, nil
}

func authorizeDonorView(donorID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.IsCoordinator() || (actor.Role == models.RoleDonor && actor.UserID == donorID) {
		return nil
	}
	return appErrors.ErrForbidden
}
