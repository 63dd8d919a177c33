package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// AchievementRepository stores donor badges and derives donor verification statistics.
type AchievementRepository struct {
	db *sqlx.DB
}

// NewAchievementRepository constructs the repository.
func NewAchievementRepository(db *sqlx.DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// DonorStats aggregates verified deliveries for a donor. The streak counts verified deliveries
// since the donor's most recent rejected one.
func (r *AchievementRepository) DonorStats(ctx context.Context, donorID string) (*models.DonorVerificationStats, error) {
	stats := &models.DonorVerificationStats{DonorID: donorID, ResponseTypeCounts: map[string]int{}}
	verified := []interface{}{donorID, models.VerificationStatusVerified, models.VerificationStatusAutoVerified}

	var totals struct {
		Deliveries    int `db:"deliveries"`
		Beneficiaries int `db:"beneficiaries"`
	}
	const totalsQuery = `SELECT COUNT(*) AS deliveries, COALESCE(SUM(beneficiaries_served), 0) AS beneficiaries
FROM rapid_responses WHERE donor_id = $1 AND verification_status IN ($2, $3)`
	if err := r.db.GetContext(ctx, &totals, totalsQuery, verified...); err != nil {
		return nil, fmt.Errorf("donor delivery totals: %w", err)
	}
	stats.TotalVerifiedDeliveries = totals.Deliveries
	stats.TotalBeneficiaries = totals.Beneficiaries

	var perType []struct {
		Subtype string `db:"subtype"`
		Count   int    `db:"count"`
	}
	const perTypeQuery = `SELECT subtype, COUNT(*) AS count FROM rapid_responses
WHERE donor_id = $1 AND verification_status IN ($2, $3) GROUP BY subtype`
	if err := r.db.SelectContext(ctx, &perType, perTypeQuery, verified...); err != nil {
		return nil, fmt.Errorf("donor delivery types: %w", err)
	}
	for _, row := range perType {
		stats.ResponseTypeCounts[row.Subtype] = row.Count
	}

	var history []models.VerificationStatus
	const historyQuery = `SELECT verification_status FROM rapid_responses
WHERE donor_id = $1 AND verification_status IN ($2, $3, $4) ORDER BY submitted_at DESC`
	if err := r.db.SelectContext(ctx, &history, historyQuery, donorID,
		models.VerificationStatusVerified, models.VerificationStatusAutoVerified, models.VerificationStatusRejected); err != nil {
		return nil, fmt.Errorf("donor delivery history: %w", err)
	}
	for _, status := range history {
		if !status.IsVerified() {
			break
		}
		stats.CurrentStreak++
	}
	return stats, nil
}

// Exists reports whether the donor already holds an achievement of the given type.
func (r *AchievementRepository) Exists(ctx context.Context, donorID string, achievementType models.AchievementType) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM donor_achievements WHERE donor_id = $1 AND achievement_type = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, donorID, achievementType); err != nil {
		return false, fmt.Errorf("check achievement: %w", err)
	}
	return exists, nil
}

// Create inserts an achievement unless the donor already holds that type. The boolean reports
// whether a row was written.
func (r *AchievementRepository) Create(ctx context.Context, achievement *models.DonorAchievement) (bool, error) {
	if achievement.ID == "" {
		achievement.ID = uuid.NewString()
	}
	if achievement.EarnedAt.IsZero() {
		achievement.EarnedAt = time.Now().UTC()
	}
	const query = `INSERT INTO donor_achievements
	(id, donor_id, achievement_type, title, description, category, icon, response_id, verification_id, earned_at)
	VALUES (:id, :donor_id, :achievement_type, :title, :description, :category, :icon, :response_id, :verification_id, :earned_at)
	ON CONFLICT (donor_id, achievement_type) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, achievement)
	if err != nil {
		return false, fmt.Errorf("create achievement: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check achievement rows: %w", err)
	}
	return rows > 0, nil
}

// ListByDonor returns a donor's achievements, most recent first.
func (r *AchievementRepository) ListByDonor(ctx context.Context, donorID string) ([]models.DonorAchievement, error) {
	const query = `SELECT id, donor_id, achievement_type, title, description, category, icon, response_id, verification_id, earned_at
FROM donor_achievements WHERE donor_id = $1 ORDER BY earned_at DESC`
	var achievements []models.DonorAchievement
	if err := r.db.SelectContext(ctx, &achievements, query, donorID); err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return achievements, nil
}
