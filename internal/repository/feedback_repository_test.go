package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

func TestFeedbackRepositoryListUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "target_type", "target_id", "submitter_id", "coordinator_id", "coordinator_name",
		"feedback_type", "reason_code", "comments", "priority", "requires_resubmission", "is_read", "is_resolved",
		"read_at", "resolved_at", "created_at", "updated_at"}).
		AddRow("fb-1", "ASSESSMENT", "as-1", "asr-1", "coord-1", "Coordinator", "REJECTION", "INCOMPLETE_DATA",
			"Missing delivery evidence", "HIGH", true, false, false, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM verification_feedback WHERE submitter_id = $1 AND is_read = FALSE ORDER BY created_at DESC")).
		WithArgs("asr-1").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.FeedbackFilter{SubmitterID: "asr-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].RequiresResubmission)
	assert.Equal(t, models.FeedbackPriorityHigh, list[0].Priority)
}

func TestFeedbackRepositoryMarkReadIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("read_at = COALESCE(read_at, $2)")).WithArgs("fb-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("read_at = COALESCE(read_at, $2)")).WithArgs("fb-1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRead(context.Background(), "fb-1", at))
	require.NoError(t, repo.MarkRead(context.Background(), "fb-1", at))

	mock.ExpectExec(regexp.QuoteMeta("SET is_resolved = TRUE")).WithArgs("missing", at).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.MarkResolved(context.Background(), "missing", at), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepositoryCountOpen(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_resolved = FALSE AND is_read = FALSE AND submitter_id = $1")).
		WithArgs("asr-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	total, err := repo.CountOpen(context.Background(), "asr-1", true)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}
