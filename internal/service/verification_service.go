package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/internal/repository"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
	"github.com/noah-isme/relief-verification-api/pkg/export"
)

type verificationStore interface {
	GetByID(ctx context.Context, itemType models.VerifiableType, id string) (*models.VerifiableItem, error)
	List(ctx context.Context, filter models.VerificationQueueFilter) ([]models.VerifiableItem, int, error)
	Transition(ctx context.Context, change repository.StatusTransition, feedback *models.Feedback) error
	ApplyOverride(ctx context.Context, itemType models.VerifiableType, overrides []*models.AutoApprovalOverride) error
}

type overrideReader interface {
	List(ctx context.Context, filter models.OverrideFilter) ([]models.AutoApprovalOverride, error)
}

type batchLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
}

type progressStore interface {
	Save(ctx context.Context, key string, snapshot []byte, ttl time.Duration) error
	Load(ctx context.Context, key string) ([]byte, error)
}

type achievementCalculator interface {
	CalculateForVerifiedResponse(ctx context.Context, donorID, responseID, verificationID string) ([]models.DonorAchievement, error)
}

// VerificationServiceConfig tunes queue operations.
type VerificationServiceConfig struct {
	MaxBatchSize int
	BatchLockTTL time.Duration
}

// VerificationService drives coordinator decisions on the verification queue.
type VerificationService struct {
	items         verificationStore
	overrides     overrideReader
	config        autoApprovalConfigSource
	achievements  achievementCalculator
	audit         auditLogger
	notifier      notifier
	locks         batchLocker
	progressStore progressStore
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           VerificationServiceConfig
	csv           export.Exporter
	pdf           export.Exporter
	now           func() time.Time

	progressMu sync.RWMutex
	progress   map[models.VerifiableType]*dto.BatchProgress
}

// VerificationDeps groups the collaborators of VerificationService.
type VerificationDeps struct {
	Items        verificationStore
	Overrides    overrideReader
	Config       autoApprovalConfigSource
	Achievements achievementCalculator
	Audit        auditLogger
	Notifier     notifier
	Locks        batchLocker
	Progress     progressStore
	Metrics      *MetricsService
	Logger       *zap.Logger
}

// NewVerificationService constructs the service.
func NewVerificationService(deps VerificationDeps, cfg VerificationServiceConfig) *VerificationService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Locks == nil {
		deps.Locks = repository.NewMemoryBatchLock()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}
	if cfg.BatchLockTTL <= 0 {
		cfg.BatchLockTTL = 10 * time.Minute
	}
	return &VerificationService{
		items:         deps.Items,
		overrides:     deps.Overrides,
		config:        deps.Config,
		achievements:  deps.Achievements,
		audit:         deps.Audit,
		notifier:      deps.Notifier,
		locks:         deps.Locks,
		progressStore: deps.Progress,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		cfg:           cfg,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		now:           time.Now,
		progress:      make(map[models.VerifiableType]*dto.BatchProgress),
	}
}

// coordinator is the resolved identity behind a decision.
type coordinator struct {
	ID   string
	Name string
}

// resolveCoordinator takes the decision identity from the token. Only admins may act on behalf of
// another coordinator id.
func resolveCoordinator(body dto.Coordinator, actor *models.JWTClaims) (coordinator, error) {
	if actor == nil || actor.UserID == "" {
		return coordinator{}, appErrors.ErrUnauthorized
	}
	if !actor.IsCoordinator() {
		return coordinator{}, appErrors.Clone(appErrors.ErrForbidden, "coordinator role required")
	}
	c := coordinator{ID: actor.UserID, Name: actor.FullName}
	if id := strings.TrimSpace(body.CoordinatorID); id != "" && id != actor.UserID {
		if actor.Role != models.RoleAdmin {
			return coordinator{}, appErrors.Clone(appErrors.ErrForbidden, "coordinatorId does not match the authenticated user")
		}
		c.ID = id
		c.Name = ""
	}
	if name := strings.TrimSpace(body.CoordinatorName); name != "" {
		c.Name = name
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	return c, nil
}

func validateItemType(itemType models.VerifiableType) error {
	if !itemType.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "type must be ASSESSMENT or RESPONSE")
	}
	return nil
}

// Get returns a single item.
func (s *VerificationService) Get(ctx context.Context, itemType models.VerifiableType, id string) (*models.VerifiableItem, error) {
	if err := validateItemType(itemType); err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, itemType, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "verification item not found")
		}
		return nil, appErrors.Downstream(err, "failed to load verification item")
	}
	return item, nil
}

// Approve moves a PENDING item to VERIFIED.
func (s *VerificationService) Approve(ctx context.Context, itemType models.VerifiableType, id string, req dto.ApproveRequest, actor *models.JWTClaims) (*dto.VerificationResult, error) {
	c, err := resolveCoordinator(req.Coordinator, actor)
	if err != nil {
		return nil, err
	}
	result, err := s.approve(ctx, itemType, id, strings.TrimSpace(req.ApprovalNote), req.Notify(), c)
	s.metrics.RecordVerificationAction(string(itemType), "approve", err)
	return result, err
}

// Reject moves a PENDING item to REJECTED and records the rejection feedback.
func (s *VerificationService) Reject(ctx context.Context, itemType models.VerifiableType, id string, req dto.RejectRequest, actor *models.JWTClaims) (*dto.VerificationResult, error) {
	input, err := newRejection(req.RejectionReason, req.RejectionComments, req.Priority, req.RequiresResubmission, req.Notify())
	if err != nil {
		return nil, err
	}
	c, err := resolveCoordinator(req.Coordinator, actor)
	if err != nil {
		return nil, err
	}
	result, err := s.reject(ctx, itemType, id, input, c)
	s.metrics.RecordVerificationAction(string(itemType), "reject", err)
	return result, err
}

type rejection struct {
	reason               string
	comments             string
	priority             models.FeedbackPriority
	requiresResubmission bool
	notify               bool
}

func newRejection(reason, comments string, priority models.FeedbackPriority, resubmit, notify bool) (rejection, error) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return rejection{}, appErrors.ErrCommentsRequired
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return rejection{}, appErrors.Clone(appErrors.ErrValidation, "rejectionReason is required")
	}
	if priority == "" {
		priority = models.FeedbackPriorityNormal
	}
	if !priority.Valid() {
		return rejection{}, appErrors.Clone(appErrors.ErrValidation, "priority must be LOW, NORMAL, HIGH or URGENT")
	}
	return rejection{reason: reason, comments: comments, priority: priority, requiresResubmission: resubmit, notify: notify}, nil
}

func (s *VerificationService) loadPending(ctx context.Context, itemType models.VerifiableType, id string) (*models.VerifiableItem, error) {
	item, err := s.Get(ctx, itemType, id)
	if err != nil {
		return nil, err
	}
	if item.Status != models.VerificationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "item is "+string(item.Status)+", expected PENDING")
	}
	return item, nil
}

func (s *VerificationService) applyTransition(ctx context.Context, change repository.StatusTransition, feedback *models.Feedback) error {
	if err := s.items.Transition(ctx, change, feedback); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "item is no longer PENDING")
		}
		return appErrors.Downstream(err, "failed to update verification status")
	}
	return nil
}

func (s *VerificationService) approve(ctx context.Context, itemType models.VerifiableType, id, note string, notify bool, c coordinator) (*dto.VerificationResult, error) {
	if err := validateItemType(itemType); err != nil {
		return nil, err
	}
	item, err := s.loadPending(ctx, itemType, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var feedback *models.Feedback
	if note != "" {
		feedback = &models.Feedback{
			TargetType:      itemType,
			TargetID:        item.ID,
			SubmitterID:     item.SubmitterID,
			CoordinatorID:   c.ID,
			CoordinatorName: c.Name,
			Type:            models.FeedbackTypeApprovalNote,
			ReasonCode:      models.ApprovalNoteReasonCode,
			Comments:        note,
			Priority:        models.FeedbackPriorityNormal,
		}
	}
	change := repository.StatusTransition{
		Type:    itemType,
		ID:      item.ID,
		From:    models.VerificationStatusPending,
		To:      models.VerificationStatusVerified,
		ActorID: &c.ID,
		At:      now,
	}
	if err := s.applyTransition(ctx, change, feedback); err != nil {
		return nil, err
	}
	item.Status = models.VerificationStatusVerified
	item.VerifiedBy = &c.ID
	item.VerifiedAt = &now
	item.UpdatedAt = now

	verificationID := s.recordDecision(ctx, models.AuditActionVerificationApprove, c, item, nil)
	result := &dto.VerificationResult{Item: item, Feedback: feedback}
	if item.HasDonorCommitment() && s.achievements != nil {
		earned, err := s.achievements.CalculateForVerifiedResponse(ctx, *item.DonorID, item.ID, verificationID)
		if err != nil {
			s.logger.Warn("achievement calculation failed", zap.String("response_id", item.ID), zap.Error(err))
		}
		result.NewAchievements = earned
	}
	if notify {
		s.notify(ctx, models.NotificationItemApproved, item, map[string]interface{}{
			"coordinatorName": c.Name,
			"note":            note,
		})
	}
	return result, nil
}

func (s *VerificationService) reject(ctx context.Context, itemType models.VerifiableType, id string, input rejection, c coordinator) (*dto.VerificationResult, error) {
	if err := validateItemType(itemType); err != nil {
		return nil, err
	}
	item, err := s.loadPending(ctx, itemType, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	feedback := &models.Feedback{
		TargetType:           itemType,
		TargetID:             item.ID,
		SubmitterID:          item.SubmitterID,
		CoordinatorID:        c.ID,
		CoordinatorName:      c.Name,
		Type:                 models.FeedbackTypeRejection,
		ReasonCode:           input.reason,
		Comments:             input.comments,
		Priority:             input.priority,
		RequiresResubmission: input.requiresResubmission,
	}
	reason := input.reason
	change := repository.StatusTransition{
		Type:            itemType,
		ID:              item.ID,
		From:            models.VerificationStatusPending,
		To:              models.VerificationStatusRejected,
		ActorID:         &c.ID,
		At:              now,
		RejectionReason: &reason,
	}
	if err := s.applyTransition(ctx, change, feedback); err != nil {
		return nil, err
	}
	item.Status = models.VerificationStatusRejected
	item.VerifiedBy = &c.ID
	item.VerifiedAt = &now
	item.RejectionReason = &reason
	item.UpdatedAt = now

	s.recordDecision(ctx, models.AuditActionVerificationReject, c, item, map[string]interface{}{"reason": reason})
	if input.notify {
		s.notify(ctx, models.NotificationItemRejected, item, map[string]interface{}{
			"coordinatorName":      c.Name,
			"reason":               reason,
			"comments":             input.comments,
			"priority":             input.priority,
			"requiresResubmission": input.requiresResubmission,
		})
	}
	return &dto.VerificationResult{Item: item, Feedback: feedback}, nil
}

// recordDecision appends the decision to the audit trail and returns the audit id, which doubles as
// the verification id referenced by achievements.
func (s *VerificationService) recordDecision(ctx context.Context, action string, c coordinator, item *models.VerifiableItem, extra map[string]interface{}) string {
	values := map[string]interface{}{"status": item.Status}
	for k, v := range extra {
		values[k] = v
	}
	return s.writeAudit(ctx, action, c, item.Type, item.ID, values)
}

func (s *VerificationService) writeAudit(ctx context.Context, action string, c coordinator, itemType models.VerifiableType, resourceID string, values map[string]interface{}) string {
	id := uuid.NewString()
	if s.audit == nil {
		return id
	}
	values["coordinatorName"] = c.Name
	payload, _ := json.Marshal(values)
	userID := c.ID
	entry := &models.AuditLog{
		ID:        id,
		UserID:    &userID,
		Action:    action,
		Resource:  resourceFor(itemType),
		NewValues: payload,
		IPAddress: "system",
		UserAgent: "verification-service",
		CreatedAt: s.now().UTC(),
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
	return id
}

func resourceFor(itemType models.VerifiableType) string {
	if itemType == models.VerifiableTypeResponse {
		return "rapid_responses"
	}
	return "rapid_assessments"
}

func (s *VerificationService) notify(ctx context.Context, event models.NotificationEvent, item *models.VerifiableItem, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, models.Notification{
		Event:       event,
		RecipientID: item.SubmitterID,
		TargetType:  string(item.Type),
		TargetID:    item.ID,
		Payload:     payload,
	})
}
