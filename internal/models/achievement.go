package models

import "time"

// AchievementType identifies a donor badge.
type AchievementType string

const (
	AchievementFirstVerifiedDelivery AchievementType = "FIRST_VERIFIED_DELIVERY"
	AchievementStreak5               AchievementType = "VERIFIED_STREAK_5"
	AchievementStreak10              AchievementType = "VERIFIED_STREAK_10"
	AchievementHealthSpecialist      AchievementType = "HEALTH_SPECIALIST"
	AchievementWASHSpecialist        AchievementType = "WASH_SPECIALIST"
	AchievementShelterSpecialist     AchievementType = "SHELTER_SPECIALIST"
	AchievementFoodSpecialist        AchievementType = "FOOD_SPECIALIST"
	AchievementSecuritySpecialist    AchievementType = "SECURITY_SPECIALIST"
	AchievementPopulationSpecialist  AchievementType = "POPULATION_SPECIALIST"
	AchievementLogisticsSpecialist   AchievementType = "LOGISTICS_SPECIALIST"
	AchievementImpact50              AchievementType = "IMPACT_50_BENEFICIARIES"
	AchievementImpact200             AchievementType = "IMPACT_200_BENEFICIARIES"
)

// Achievement categories.
const (
	AchievementCategoryMilestone   = "MILESTONE"
	AchievementCategoryConsistency = "CONSISTENCY"
	AchievementCategorySpecialist  = "SPECIALIST"
	AchievementCategoryImpact      = "IMPACT"
)

// DonorAchievement is a badge earned by a donor. At most one per (donor, type).
type DonorAchievement struct {
	ID             string          `db:"id" json:"id"`
	DonorID        string          `db:"donor_id" json:"donorId"`
	Type           AchievementType `db:"achievement_type" json:"type"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	Category       string          `db:"category" json:"category"`
	Icon           string          `db:"icon" json:"icon"`
	ResponseID     *string         `db:"response_id" json:"responseId,omitempty"`
	VerificationID *string         `db:"verification_id" json:"verificationId,omitempty"`
	EarnedAt       time.Time       `db:"earned_at" json:"earnedAt"`
}

// DonorVerificationStats aggregates a donor's verified delivery history.
type DonorVerificationStats struct {
	DonorID                 string         `json:"donorId"`
	TotalVerifiedDeliveries int            `json:"totalVerifiedDeliveries"`
	TotalBeneficiaries      int            `json:"totalBeneficiariesHelped"`
	CurrentStreak           int            `json:"currentStreak"`
	ResponseTypeCounts      map[string]int `json:"responseTypeCounts"`
}
