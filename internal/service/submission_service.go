package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/internal/repository"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

type submissionStore interface {
	Create(ctx context.Context, item *models.VerifiableItem) error
	Transition(ctx context.Context, change repository.StatusTransition, feedback *models.Feedback) error
}

type autoApprover interface {
	Match(ctx context.Context, item *models.VerifiableItem) (models.AutoApprovalDecision, error)
	Release(ctx context.Context, decision models.AutoApprovalDecision)
}

// SubmissionService stores new assessments and responses and runs them through auto-approval.
type SubmissionService struct {
	items        submissionStore
	users        reputationReader
	matcher      autoApprover
	achievements achievementCalculator
	audit        auditLogger
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewSubmissionService constructs the service.
func NewSubmissionService(items submissionStore, users reputationReader, matcher autoApprover, achievements achievementCalculator, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		items:        items,
		users:        users,
		matcher:      matcher,
		achievements: achievements,
		audit:        audit,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// SubmitAssessment stores a rapid assessment.
func (s *SubmissionService) SubmitAssessment(ctx context.Context, req dto.SubmitAssessmentRequest, actor *models.JWTClaims) (*dto.SubmissionResult, error) {
	if err := authorizeSubmitter(actor, models.RoleAssessor); err != nil {
		return nil, err
	}
	req.AssessmentType = strings.ToUpper(strings.TrimSpace(req.AssessmentType))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment payload")
	}
	item := &models.VerifiableItem{
		Type:              models.VerifiableTypeAssessment,
		Subtype:           req.AssessmentType,
		AffectedEntityID:  req.AffectedEntityID,
		GPSAccuracyMeters: req.GPSAccuracyMeters,
		MediaCount:        req.MediaCount,
		Data:              req.Data,
	}
	return s.submit(ctx, item, req.SubmittedAt, req.Completeness, actor)
}

// SubmitResponse stores a response delivery. Responses tied to a donor commitment feed achievements
// once verified.
func (s *SubmissionService) SubmitResponse(ctx context.Context, req dto.SubmitResponseRequest, actor *models.JWTClaims) (*dto.SubmissionResult, error) {
	if err := authorizeSubmitter(actor, models.RoleResponder); err != nil {
		return nil, err
	}
	req.ResponseType = strings.ToUpper(strings.TrimSpace(req.ResponseType))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}
	item := &models.VerifiableItem{
		Type:                models.VerifiableTypeResponse,
		Subtype:             req.ResponseType,
		AffectedEntityID:    req.AffectedEntityID,
		GPSAccuracyMeters:   req.GPSAccuracyMeters,
		MediaCount:          req.MediaCount,
		Data:                req.Data,
		BeneficiariesServed: req.BeneficiariesServed,
	}
	if donor := strings.TrimSpace(req.DonorID); donor != "" {
		commitment := strings.TrimSpace(req.CommitmentID)
		item.DonorID = &donor
		item.CommitmentID = &commitment
	}
	return s.submit(ctx, item, req.SubmittedAt, req.Completeness, actor)
}

func authorizeSubmitter(actor *models.JWTClaims, role models.UserRole) error {
	if actor == nil || actor.UserID == "" {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != role && actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "role "+string(role)+" required")
	}
	return nil
}

func (s *SubmissionService) submit(ctx context.Context, item *models.VerifiableItem, submittedAt *time.Time, completeness *float64, actor *models.JWTClaims) (*dto.SubmissionResult, error) {
	if len(item.Data) > 0 && !json.Valid(item.Data) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "data must be a JSON object")
	}
	now := s.now().UTC()
	item.ID = uuid.NewString()
	item.SubmitterID = actor.UserID
	item.SubmitterName = actor.FullName
	item.Status = models.VerificationStatusPending
	item.SubmittedAt = now
	if submittedAt != nil && !submittedAt.IsZero() {
		if submittedAt.After(now) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "submittedAt must not be in the future")
		}
		item.SubmittedAt = submittedAt.UTC()
	}
	if completeness != nil {
		item.Completeness = *completeness
	} else {
		item.Completeness = ComputeCompleteness(item)
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, appErrors.Downstream(err, "failed to store submission")
	}
	s.loadReputation(ctx, item)

	result := &dto.SubmissionResult{Item: item}
	decision, err := s.matcher.Match(ctx, item)
	if err != nil {
		s.logger.Warn("auto-approval unavailable, item queued for review", zap.String("item_id", item.ID), zap.Error(err))
	}
	if decision.AutoVerified() {
		decision = s.autoVerify(ctx, item, decision, result)
	}
	result.Decision = decision
	s.logger.Info("submission received",
		zap.String("type", string(item.Type)),
		zap.String("item_id", item.ID),
		zap.String("status", string(item.Status)),
		zap.String("reason", string(decision.Reason)),
	)
	return result, nil
}

func (s *SubmissionService) loadReputation(ctx context.Context, item *models.VerifiableItem) {
	if s.users == nil {
		return
	}
	user, err := s.users.FindByID(ctx, item.SubmitterID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load submitter reputation", zap.String("submitter_id", item.SubmitterID), zap.Error(err))
		}
		return
	}
	item.SubmitterReputation = user.ReputationScore
}

// autoVerify persists a positive decision. If the status change cannot be stored the counter slots
// are handed back and the item stays in the manual queue.
func (s *SubmissionService) autoVerify(ctx context.Context, item *models.VerifiableItem, decision models.AutoApprovalDecision, result *dto.SubmissionResult) models.AutoApprovalDecision {
	now := s.now().UTC()
	change := repository.StatusTransition{
		Type:   item.Type,
		ID:     item.ID,
		From:   models.VerificationStatusPending,
		To:     models.VerificationStatusAutoVerified,
		At:     now,
		RuleID: decision.RuleID,
	}
	if err := s.items.Transition(ctx, change, nil); err != nil {
		s.matcher.Release(ctx, decision)
		s.logger.Warn("failed to persist auto-verification", zap.String("item_id", item.ID), zap.Error(err))
		return models.AutoApprovalDecision{Verdict: models.VerificationStatusPending, Reason: models.AutoApprovalReasonUnavailable}
	}
	item.Status = models.VerificationStatusAutoVerified
	item.AutoApprovalRuleID = decision.RuleID
	item.VerifiedAt = &now
	item.UpdatedAt = now

	verificationID := uuid.NewString()
	if s.audit != nil {
		payload, _ := json.Marshal(map[string]interface{}{"ruleId": decision.RuleID, "status": item.Status})
		itemID := item.ID
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			ID:         verificationID,
			Action:     models.AuditActionAutoVerify,
			Resource:   resourceFor(item.Type),
			ResourceID: &itemID,
			NewValues:  payload,
			IPAddress:  "system",
			UserAgent:  "auto-approval",
			CreatedAt:  now,
		}); err != nil {
			s.logger.Warn("failed to persist audit log", zap.String("action", models.AuditActionAutoVerify), zap.Error(err))
		}
	}
	if item.HasDonorCommitment() && s.achievements != nil {
		earned, err := s.achievements.CalculateForVerifiedResponse(ctx, *item.DonorID, item.ID, verificationID)
		if err != nil {
			s.logger.Warn("achievement calculation failed", zap.String("response_id", item.ID), zap.Error(err))
		}
		result.NewAchievements = earned
	}
	return decision
}
