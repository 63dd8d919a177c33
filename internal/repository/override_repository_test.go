package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

var overrideColumns = []string{"id", "target_type", "target_ids", "original_status", "new_status", "reason_code",
	"justification", "rule_id", "coordinator_id", "coordinator_name", "created_at"}

func TestOverrideRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	created := from.Add(time.Hour)
	rows := sqlmock.NewRows(overrideColumns).
		AddRow("ov-1", "ASSESSMENT", "{a-1,a-2}", "AUTO_VERIFIED", "PENDING", "DATA_QUALITY_CONCERN",
			"gps drift", "rule-1", "coord-1", "Dana", created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM auto_approval_overrides WHERE target_type = $1 AND $2 = ANY(target_ids) AND created_at >= $3 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("ASSESSMENT", "a-1", from).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), models.OverrideFilter{
		TargetType: models.VerifiableTypeAssessment,
		TargetID:   "a-1",
		From:       &from,
		Limit:      20,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a-1", "a-2"}, []string(got[0].TargetIDs))
	assert.Equal(t, models.OverrideReasonCode("DATA_QUALITY_CONCERN"), got[0].ReasonCode)
	require.NotNil(t, got[0].RuleID)
	assert.Equal(t, "rule-1", *got[0].RuleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryListClampsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM auto_approval_overrides ORDER BY created_at DESC LIMIT 100 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows(overrideColumns))

	got, err := repo.List(context.Background(), models.OverrideFilter{Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryCountSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM auto_approval_overrides WHERE created_at >= $1")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM auto_approval_overrides")).
		WillReturnError(errors.New("connection reset"))
	_, err = repo.CountSince(context.Background(), since)
	assert.Error(t, err)
}
