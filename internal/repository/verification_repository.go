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

const (
	assessmentTable = "rapid_assessments"
	responseTable   = "rapid_responses"
)

// VerificationRepository persists assessments and responses together with their verification state.
type VerificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository constructs the repository.
func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func tableFor(itemType models.VerifiableType) (string, error) {
	switch itemType {
	case models.VerifiableTypeAssessment:
		return assessmentTable, nil
	case models.VerifiableTypeResponse:
		return responseTable, nil
	}
	return "", fmt.Errorf("unknown verifiable type %q", itemType)
}

// selectColumns projects both tables onto the VerifiableItem shape. Assessments carry no donor columns.
func selectColumns(itemType models.VerifiableType) string {
	extras := "t.donor_id, t.commitment_id, t.beneficiaries_served"
	if itemType == models.VerifiableTypeAssessment {
		extras = "NULL::text AS donor_id, NULL::text AS commitment_id, 0 AS beneficiaries_served"
	}
	return fmt.Sprintf(`'%s' AS item_type, t.id, t.subtype, t.affected_entity_id, t.submitter_id, t.submitter_name,
       u.reputation_score AS submitter_reputation, t.submitted_at, t.completeness, t.gps_accuracy_meters,
       t.media_count, t.data, t.verification_status, t.auto_approval_rule_id, t.verified_by, t.verified_at,
       t.rejection_reason, %s, t.created_at, t.updated_at`, itemType, extras)
}

// Create inserts a new submission. Status defaults to PENDING.
func (r *VerificationRepository) Create(ctx context.Context, item *models.VerifiableItem) error {
	table, err := tableFor(item.Type)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = models.VerificationStatusPending
	}
	if item.SubmittedAt.IsZero() {
		item.SubmittedAt = now
	}
	if len(item.Data) == 0 {
		item.Data = []byte("{}")
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	columns := []string{"id", "subtype", "affected_entity_id", "submitter_id", "submitter_name", "submitted_at",
		"completeness", "gps_accuracy_meters", "media_count", "data", "verification_status", "created_at", "updated_at"}
	if item.Type == models.VerifiableTypeResponse {
		columns = append(columns, "donor_id", "commitment_id", "beneficiaries_served")
	}
	values := make([]string, len(columns))
	for i, column := range columns {
		values[i] = ":" + column
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(values, ", "))
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create %s: %w", strings.ToLower(string(item.Type)), err)
	}
	return nil
}

// GetByID fetches an item by type and identifier.
func (r *VerificationRepository) GetByID(ctx context.Context, itemType models.VerifiableType, id string) (*models.VerifiableItem, error) {
	table, err := tableFor(itemType)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s t LEFT JOIN users u ON u.id = t.submitter_id WHERE t.id = $1`, selectColumns(itemType), table)
	var item models.VerifiableItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

var queueSortColumns = map[models.QueueSortField]string{
	models.QueueSortSubmittedAt:  "t.submitted_at",
	models.QueueSortCompleteness: "t.completeness",
	models.QueueSortSubtype:      "t.subtype",
}

// List returns a page of items matching the filter together with the total count.
func (r *VerificationRepository) List(ctx context.Context, filter models.VerificationQueueFilter) ([]models.VerifiableItem, int, error) {
	table, err := tableFor(filter.Type)
	if err != nil {
		return nil, 0, err
	}
	conditions := make([]string, 0, 6)
	args := make([]interface{}, 0, 8)

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("t.verification_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Subtype != "" {
		args = append(args, filter.Subtype)
		conditions = append(conditions, fmt.Sprintf("t.subtype = $%d", len(args)))
	}
	if filter.SubmitterID != "" {
		args = append(args, filter.SubmitterID)
		conditions = append(conditions, fmt.Sprintf("t.submitter_id = $%d", len(args)))
	}
	if filter.DonorID != "" && filter.Type == models.VerifiableTypeResponse {
		args = append(args, filter.DonorID)
		conditions = append(conditions, fmt.Sprintf("t.donor_id = $%d", len(args)))
	}
	if filter.SubmittedFrom != nil {
		args = append(args, *filter.SubmittedFrom)
		conditions = append(conditions, fmt.Sprintf("t.submitted_at >= $%d", len(args)))
	}
	if filter.SubmittedTo != nil {
		args = append(args, *filter.SubmittedTo)
		conditions = append(conditions, fmt.Sprintf("t.submitted_at <= $%d", len(args)))
	}
	if filter.MinCompleteness != nil {
		args = append(args, *filter.MinCompleteness)
		conditions = append(conditions, fmt.Sprintf("t.completeness >= $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s t%s", table, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count verification queue: %w", err)
	}

	sortColumn, ok := queueSortColumns[filter.SortBy]
	if !ok {
		sortColumn = queueSortColumns[models.QueueSortSubmittedAt]
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM %s t LEFT JOIN users u ON u.id = t.submitter_id%s ORDER BY %s %s, t.id ASC LIMIT %d OFFSET %d`,
		selectColumns(filter.Type), table, where, sortColumn, direction, size, (page-1)*size)
	var items []models.VerifiableItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list verification queue: %w", err)
	}
	return items, total, nil
}

// StatusTransition describes a compare-and-set status change.
type StatusTransition struct {
	Type            models.VerifiableType
	ID              string
	From            models.VerificationStatus
	To              models.VerificationStatus
	ActorID         *string
	At              time.Time
	RuleID          *string
	RejectionReason *string
}

func transitionQuery(table string) string {
	return fmt.Sprintf(`UPDATE %s SET verification_status = :to_status, verified_by = :actor_id, verified_at = :verified_at,
       auto_approval_rule_id = COALESCE(:rule_id, auto_approval_rule_id), rejection_reason = :rejection_reason, updated_at = :at
WHERE id = :id AND verification_status = :from_status`, table)
}

func (t StatusTransition) args() map[string]interface{} {
	// Returning to PENDING clears the decision stamp.
	var verifiedAt *time.Time
	actor := t.ActorID
	if t.To == models.VerificationStatusPending {
		actor = nil
	} else {
		at := t.At
		verifiedAt = &at
	}
	return map[string]interface{}{
		"id":               t.ID,
		"from_status":      t.From,
		"to_status":        t.To,
		"actor_id":         actor,
		"verified_at":      verifiedAt,
		"at":               t.At,
		"rule_id":          t.RuleID,
		"rejection_reason": t.RejectionReason,
	}
}

// Transition moves an item between statuses only if it still holds the expected status, and
// optionally stores the decision feedback in the same transaction. Returns sql.ErrNoRows when the
// item no longer holds the expected status.
func (r *VerificationRepository) Transition(ctx context.Context, change StatusTransition, feedback *models.Feedback) error {
	table, err := tableFor(change.Type)
	if err != nil {
		return err
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition tx: %w", err)
	}
	result, err := tx.NamedExecContext(ctx, transitionQuery(table), change.args())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update verification status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check verification update rows: %w", err)
	}
	if rows == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	if feedback != nil {
		prepareFeedback(feedback, change.At)
		if _, err := tx.NamedExecContext(ctx, insertFeedbackQuery, feedback); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("create feedback: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition tx: %w", err)
	}
	return nil
}

// ApplyOverride reverses auto-verified items and appends one override record per item, atomically.
// If any item is no longer AUTO_VERIFIED nothing is written and sql.ErrNoRows is returned.
func (r *VerificationRepository) ApplyOverride(ctx context.Context, itemType models.VerifiableType, overrides []*models.AutoApprovalOverride) error {
	table, err := tableFor(itemType)
	if err != nil {
		return err
	}
	if len(overrides) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin override tx: %w", err)
	}
	for _, override := range overrides {
		if len(override.TargetIDs) != 1 {
			_ = tx.Rollback()
			return fmt.Errorf("override record must target exactly one item")
		}
		prepareOverride(override)
		actor := override.CoordinatorID
		change := StatusTransition{
			Type:    itemType,
			ID:      override.TargetIDs[0],
			From:    models.VerificationStatusAutoVerified,
			To:      override.NewStatus,
			ActorID: &actor,
			At:      override.CreatedAt,
		}
		if override.NewStatus == models.VerificationStatusRejected {
			reason := string(override.ReasonCode)
			change.RejectionReason = &reason
		}
		result, err := tx.NamedExecContext(ctx, transitionQuery(table), change.args())
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("override verification status: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("check override rows: %w", err)
		}
		if rows == 0 {
			_ = tx.Rollback()
			return fmt.Errorf("override %s: %w", change.ID, sql.ErrNoRows)
		}
		if _, err := tx.NamedExecContext(ctx, insertOverrideQuery, override); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append override record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit override tx: %w", err)
	}
	return nil
}

// CountByStatus aggregates both tables per type and status. An empty submitterID counts everything.
func (r *VerificationRepository) CountByStatus(ctx context.Context, submitterID string) ([]models.StatusCount, error) {
	filter := ""
	args := []interface{}{}
	if submitterID != "" {
		filter = " WHERE submitter_id = $1"
		args = append(args, submitterID)
	}
	query := fmt.Sprintf(`SELECT '%s' AS item_type, verification_status, COUNT(*) AS count FROM %s%s GROUP BY verification_status
UNION ALL
SELECT '%s' AS item_type, verification_status, COUNT(*) AS count FROM %s%s GROUP BY verification_status`,
		models.VerifiableTypeAssessment, assessmentTable, filter,
		models.VerifiableTypeResponse, responseTable, filter)
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count verification status: %w", err)
	}
	return counts, nil
}

// CountAutoVerifiedSince counts items auto-verified at or after since across both tables.
func (r *VerificationRepository) CountAutoVerifiedSince(ctx context.Context, since time.Time) (int, error) {
	query := fmt.Sprintf(`SELECT
  (SELECT COUNT(*) FROM %s WHERE verification_status = $1 AND verified_at >= $2) +
  (SELECT COUNT(*) FROM %s WHERE verification_status = $1 AND verified_at >= $2)`, assessmentTable, responseTable)
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.VerificationStatusAutoVerified, since); err != nil {
		return 0, fmt.Errorf("count auto verified: %w", err)
	}
	return total, nil
}
