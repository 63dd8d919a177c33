package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

const insertOverrideQuery = `INSERT INTO auto_approval_overrides
	(id, target_type, target_ids, original_status, new_status, reason_code, justification, rule_id, coordinator_id, coordinator_name, created_at)
	VALUES (:id, :target_type, :target_ids, :original_status, :new_status, :reason_code, :justification, :rule_id, :coordinator_id, :coordinator_name, :created_at)`

func prepareOverride(override *models.AutoApprovalOverride) {
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	if override.CreatedAt.IsZero() {
		override.CreatedAt = time.Now().UTC()
	}
}

// OverrideRepository reads the append-only override log. Records are written by
// VerificationRepository.ApplyOverride and never updated or deleted.
type OverrideRepository struct {
	db *sqlx.DB
}

// NewOverrideRepository constructs the repository.
func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// List returns override records matching the filter, newest first.
func (r *OverrideRepository) List(ctx context.Context, filter models.OverrideFilter) ([]models.AutoApprovalOverride, error) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	if filter.TargetType != "" {
		args = append(args, filter.TargetType)
		conditions = append(conditions, fmt.Sprintf("target_type = $%d", len(args)))
	}
	if filter.TargetID != "" {
		args = append(args, filter.TargetID)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(target_ids)", len(args)))
	}
	if filter.CoordinatorID != "" {
		args = append(args, filter.CoordinatorID)
		conditions = append(conditions, fmt.Sprintf("coordinator_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT id, target_type, target_ids, original_status, new_status, reason_code, justification, rule_id,
       coordinator_id, coordinator_name, created_at FROM auto_approval_overrides`)
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset))

	var overrides []models.AutoApprovalOverride
	if err := r.db.SelectContext(ctx, &overrides, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return overrides, nil
}

// CountSince counts override records created at or after since.
func (r *OverrideRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM auto_approval_overrides WHERE created_at >= $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, since); err != nil {
		return 0, fmt.Errorf("count overrides: %w", err)
	}
	return total, nil
}
