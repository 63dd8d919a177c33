package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type feedbackStore interface {
	GetByID(ctx context.Context, id string) (*models.Feedback, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkResolved(ctx context.Context, id string, at time.Time) error
}

// FeedbackService exposes coordinator feedback to submitters.
type FeedbackService struct {
	repo   feedbackStore
	logger *zap.Logger
	now    func() time.Time
}

// NewFeedbackService constructs the service.
func NewFeedbackService(repo feedbackStore, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{repo: repo, logger: logger, now: time.Now}
}

// ListForSubmitter returns the caller's feedback inbox, newest first.
func (s *FeedbackService) ListForSubmitter(ctx context.Context, query dto.FeedbackQuery, actor *models.JWTClaims) ([]models.Feedback, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	return s.list(ctx, models.FeedbackFilter{
		SubmitterID:    actor.UserID,
		UnreadOnly:     query.UnreadOnly,
		UnresolvedOnly: query.UnresolvedOnly,
		Limit:          query.Limit,
		Offset:         query.Offset,
	})
}

// ListForTarget returns feedback attached to one item. Submitters only see their own.
func (s *FeedbackService) ListForTarget(ctx context.Context, targetType models.VerifiableType, targetID string, actor *models.JWTClaims) ([]models.Feedback, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := validateItemType(targetType); err != nil {
		return nil, err
	}
	filter := models.FeedbackFilter{TargetType: targetType, TargetID: strings.TrimSpace(targetID)}
	if !actor.IsCoordinator() {
		filter.SubmitterID = actor.UserID
	}
	return s.list(ctx, filter)
}

func (s *FeedbackService) list(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to list feedback")
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

// MarkRead flags feedback as read. Repeating the call keeps the first read time.
func (s *FeedbackService) MarkRead(ctx context.Context, id string, actor *models.JWTClaims) (*models.Feedback, error) {
	return s.flip(ctx, id, actor, s.repo.MarkRead)
}

// MarkResolved flags feedback as resolved (and read).
func (s *FeedbackService) MarkResolved(ctx context.Context, id string, actor *models.JWTClaims) (*models.Feedback, error) {
	return s.flip(ctx, id, actor, s.repo.MarkResolved)
}

func (s *FeedbackService) flip(ctx context.Context, id string, actor *models.JWTClaims, apply func(context.Context, string, time.Time) error) (*models.Feedback, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	feedback, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback.SubmitterID != actor.UserID && !actor.IsCoordinator() {
		return nil, appErrors.ErrForbidden
	}
	if err := apply(ctx, feedback.ID, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback not found")
		}
		return nil, appErrors.Downstream(err, "failed to update feedback")
	}
	return s.get(ctx, feedback.ID)
}

func (s *FeedbackService) get(ctx context.Context, id string) (*models.Feedback, error) {
	feedback, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback not found")
		}
		return nil, appErrors.Downstream(err, "failed to load feedback")
	}
	return feedback, nil
}
