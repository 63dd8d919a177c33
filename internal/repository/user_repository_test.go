package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

func TestUserRepositoryCreateAuditLog(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnResult(sqlmock.NewResult(1, 1))
	log := &models.AuditLog{Action: models.AuditActionVerificationApprove, Resource: "ASSESSMENT"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
}

func TestUserRepositoryPurgeAuditLogs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	cutoff := time.Now().Add(-90 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM audit_logs WHERE created_at < $1")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 12))
	removed, err := repo.PurgeAuditLogs(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(12), removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "full_name", "role", "organization", "reputation_score", "active", "last_seen_at", "created_at", "updated_at"}).
		AddRow("asr-1", "asr@example.org", "Budi", "ASSESSOR", nil, 3.8, true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("asr-1").WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "asr-1")
	require.NoError(t, err)
	require.NotNil(t, user.ReputationScore)
	assert.Equal(t, 3.8, *user.ReputationScore)
}
