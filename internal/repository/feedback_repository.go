package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

const feedbackColumns = `id, target_type, target_id, submitter_id, coordinator_id, coordinator_name, feedback_type, reason_code,
       comments, priority, requires_resubmission, is_read, is_resolved, read_at, resolved_at, created_at, updated_at`

const insertFeedbackQuery = `INSERT INTO verification_feedback
	(id, target_type, target_id, submitter_id, coordinator_id, coordinator_name, feedback_type, reason_code, comments,
	 priority, requires_resubmission, is_read, is_resolved, created_at, updated_at)
	VALUES (:id, :target_type, :target_id, :submitter_id, :coordinator_id, :coordinator_name, :feedback_type, :reason_code, :comments,
	 :priority, :requires_resubmission, :is_read, :is_resolved, :created_at, :updated_at)`

func prepareFeedback(feedback *models.Feedback, at time.Time) {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.Priority == "" {
		feedback.Priority = models.FeedbackPriorityNormal
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	feedback.CreatedAt = at
	feedback.UpdatedAt = at
}

// FeedbackRepository persists coordinator feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs the repository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts feedback outside a verification transition.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	prepareFeedback(feedback, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertFeedbackQuery, feedback); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// GetByID fetches feedback by identifier.
func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	query := fmt.Sprintf("SELECT %s FROM verification_feedback WHERE id = $1", feedbackColumns)
	var feedback models.Feedback
	if err := r.db.GetContext(ctx, &feedback, query, id); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// List returns feedback matching the filter, newest first.
func (r *FeedbackRepository) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	conditions := make([]string, 0, 5)
	args := make([]interface{}, 0, 3)
	if filter.SubmitterID != "" {
		args = append(args, filter.SubmitterID)
		conditions = append(conditions, fmt.Sprintf("submitter_id = $%d", len(args)))
	}
	if filter.TargetType != "" {
		args = append(args, filter.TargetType)
		conditions = append(conditions, fmt.Sprintf("target_type = $%d", len(args)))
	}
	if filter.TargetID != "" {
		args = append(args, filter.TargetID)
		conditions = append(conditions, fmt.Sprintf("target_id = $%d", len(args)))
	}
	if filter.UnreadOnly {
		conditions = append(conditions, "is_read = FALSE")
	}
	if filter.UnresolvedOnly {
		conditions = append(conditions, "is_resolved = FALSE")
	}

	builder := strings.Builder{}
	builder.WriteString("SELECT ")
	builder.WriteString(feedbackColumns)
	builder.WriteString(" FROM verification_feedback")
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset))

	var feedback []models.Feedback
	if err := r.db.SelectContext(ctx, &feedback, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}

// MarkRead flags feedback as read. Repeated calls keep the first read timestamp.
func (r *FeedbackRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE verification_feedback SET is_read = TRUE, read_at = COALESCE(read_at, $2), updated_at = $2 WHERE id = $1`
	return r.flip(ctx, query, id, at, "mark feedback read")
}

// MarkResolved flags feedback as resolved, implying read.
func (r *FeedbackRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE verification_feedback SET is_resolved = TRUE, resolved_at = COALESCE(resolved_at, $2),
       is_read = TRUE, read_at = COALESCE(read_at, $2), updated_at = $2 WHERE id = $1`
	return r.flip(ctx, query, id, at, "mark feedback resolved")
}

func (r *FeedbackRepository) flip(ctx context.Context, query, id string, at time.Time, op string) error {
	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountOpen counts unresolved feedback, optionally for a single submitter and only unread.
func (r *FeedbackRepository) CountOpen(ctx context.Context, submitterID string, unreadOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM verification_feedback WHERE is_resolved = FALSE"
	args := []interface{}{}
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	if submitterID != "" {
		args = append(args, submitterID)
		query += " AND submitter_id = $1"
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count open feedback: %w", err)
	}
	return total, nil
}
