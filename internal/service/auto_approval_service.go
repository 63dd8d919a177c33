package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

const autoApprovalCacheKey = "auto_approval:config"

type configurationStore interface {
	Get(ctx context.Context, key string) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type reputationReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AutoApprovalServiceConfig carries the defaults used before the document is first saved.
type AutoApprovalServiceConfig struct {
	DefaultMaxPerHour    int
	DefaultRetentionDays int
	CacheTTL             time.Duration
}

// AutoApprovalService owns the auto-approval document: rules plus global settings.
type AutoApprovalService struct {
	repo      configurationStore
	users     reputationReader
	audit     auditLogger
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AutoApprovalServiceConfig
	now       func() time.Time
}

// NewAutoApprovalService constructs the service.
func NewAutoApprovalService(repo configurationStore, users reputationReader, audit auditLogger, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg AutoApprovalServiceConfig) *AutoApprovalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultRetentionDays <= 0 {
		cfg.DefaultRetentionDays = 90
	}
	return &AutoApprovalService{
		repo:      repo,
		users:     users,
		audit:     audit,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *AutoApprovalService) defaults() *models.AutoApprovalConfig {
	return &models.AutoApprovalConfig{
		Enabled: false,
		Rules:   []models.AutoApprovalRule{},
		GlobalSettings: models.AutoApprovalGlobalSettings{
			MaxAutoApprovalsPerHour:  s.cfg.DefaultMaxPerHour,
			RequireCoordinatorOnline: false,
			EmergencyOverrideEnabled: true,
			AuditLogRetentionDays:    s.cfg.DefaultRetentionDays,
		},
	}
}

// Current returns the active document, from cache when possible. A missing row yields the defaults.
func (s *AutoApprovalService) Current(ctx context.Context) (*models.AutoApprovalConfig, error) {
	var cached models.AutoApprovalConfig
	if s.cache.Get(ctx, autoApprovalCacheKey, &cached) {
		return &cached, nil
	}
	row, err := s.repo.Get(ctx, models.ConfigurationKeyAutoApproval)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.defaults(), nil
		}
		return nil, appErrors.Downstream(err, "failed to load auto-approval configuration")
	}
	cfg := s.defaults()
	if err := json.Unmarshal([]byte(row.Value), cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored auto-approval configuration is corrupt")
	}
	if cfg.Rules == nil {
		cfg.Rules = []models.AutoApprovalRule{}
	}
	s.cache.Set(ctx, autoApprovalCacheKey, cfg, s.cfg.CacheTTL)
	return cfg, nil
}

// Update replaces the whole document after validating every rule.
func (s *AutoApprovalService) Update(ctx context.Context, doc models.AutoApprovalConfig, actor *models.JWTClaims) (*models.AutoApprovalConfig, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	previous, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&doc); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	existing := make(map[string]models.AutoApprovalRule, len(previous.Rules))
	for _, rule := range previous.Rules {
		existing[rule.ID] = rule
	}
	for i := range doc.Rules {
		rule := &doc.Rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		rule.Subtype = strings.ToUpper(strings.TrimSpace(rule.Subtype))
		if old, ok := existing[rule.ID]; ok && rule.ID != "" {
			rule.CreatedBy = old.CreatedBy
			rule.CreatedAt = old.CreatedAt
		} else {
			rule.ID = uuid.NewString()
			rule.CreatedBy = actor.UserID
			rule.CreatedAt = now
		}
		rule.UpdatedAt = now
	}
	if doc.Rules == nil {
		doc.Rules = []models.AutoApprovalRule{}
	}
	doc.UpdatedBy = actor.UserID
	doc.UpdatedAt = now

	if err := s.persist(ctx, &doc, actor); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, models.AuditActionAutoApprovalConfigUpdate, previous, &doc)
	return &doc, nil
}

// Toggle flips the master switch, keeping rules and settings.
func (s *AutoApprovalService) Toggle(ctx context.Context, enabled bool, actor *models.JWTClaims) (*models.AutoApprovalConfig, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	previous := *current
	next := *current
	next.Enabled = enabled
	next.UpdatedBy = actor.UserID
	next.UpdatedAt = s.now().UTC()
	if err := s.persist(ctx, &next, actor); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, models.AuditActionAutoApprovalToggle, &previous, &next)
	return &next, nil
}

// Preview dry-runs an item against every applicable rule without touching the hourly counters.
func (s *AutoApprovalService) Preview(ctx context.Context, req dto.PreviewRequest) (*dto.PreviewResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preview payload")
	}
	cfg, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	item := &models.VerifiableItem{
		Type:              req.Type,
		Subtype:           strings.ToUpper(req.Subtype),
		SubmitterID:       req.SubmitterID,
		GPSAccuracyMeters: req.GPSAccuracyMeters,
		MediaCount:        req.MediaCount,
		Data:              req.Data,
		SubmittedAt:       now,
	}
	if req.SubmittedAt != nil {
		item.SubmittedAt = *req.SubmittedAt
	}
	if req.Completeness != nil {
		item.Completeness = *req.Completeness
	} else {
		item.Completeness = ComputeCompleteness(item)
	}
	if req.SubmitterID != "" && s.users != nil {
		user, err := s.users.FindByID(ctx, req.SubmitterID)
		switch {
		case err == nil:
			item.SubmitterReputation = user.ReputationScore
		case errors.Is(err, sql.ErrNoRows):
		default:
			return nil, appErrors.Downstream(err, "failed to load submitter")
		}
	}

	result := &dto.PreviewResult{Enabled: cfg.Enabled, Completeness: item.Completeness, Evaluations: []dto.RuleEvaluation{}}
	for _, rule := range cfg.Rules {
		if !rule.Enabled || !rule.AppliesTo(item) {
			continue
		}
		checks := ExplainQuality(item, rule.Conditions, now)
		passed := true
		for _, check := range checks {
			passed = passed && check.Passed
		}
		result.Evaluations = append(result.Evaluations, dto.RuleEvaluation{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Priority: rule.Priority,
			Passed:   passed,
			Checks:   checks,
		})
	}
	if match := SelectRule(item, cfg.Rules, now); match != nil {
		id := match.ID
		result.MatchedRule = &id
	}
	return result, nil
}

func (s *AutoApprovalService) validate(doc *models.AutoApprovalConfig) error {
	if err := s.validator.Struct(doc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid auto-approval configuration")
	}
	seen := make(map[string]struct{}, len(doc.Rules))
	for i, rule := range doc.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if strings.TrimSpace(rule.Name) == "" {
			return appErrors.Clone(appErrors.ErrValidation, field+".name is required")
		}
		if !rule.Type.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, field+".type must be ASSESSMENT or RESPONSE")
		}
		if rule.Subtype != "" && !ValidSubtype(rule.Type, rule.Subtype) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s.subtype %q is not valid for %s", field, rule.Subtype, rule.Type))
		}
		if rule.Priority < 1 {
			return appErrors.Clone(appErrors.ErrValidation, field+".priority must be at least 1")
		}
		c := rule.Conditions
		if c.CompletenessPercentage < 0 || c.CompletenessPercentage > 100 {
			return appErrors.Clone(appErrors.ErrValidation, field+".conditions.completenessPercentage must be between 0 and 100")
		}
		if c.GPSAccuracyMeters != nil && *c.GPSAccuracyMeters <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, field+".conditions.gpsAccuracyMeters must be positive")
		}
		if c.AssessorReputationScore != nil && *c.AssessorReputationScore < 0 {
			return appErrors.Clone(appErrors.ErrValidation, field+".conditions.assessorReputationScore must not be negative")
		}
		if c.TimeSinceSubmission != nil && *c.TimeSinceSubmission <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, field+".conditions.timeSinceSubmission must be positive")
		}
		if c.MaxBatchSize != nil && *c.MaxBatchSize <= 0 {
			return appErrors.Clone(appErrors.ErrValidation, field+".conditions.maxBatchSize must be positive")
		}
		if rule.ID != "" {
			if _, dup := seen[rule.ID]; dup {
				return appErrors.Clone(appErrors.ErrValidation, field+".id is duplicated")
			}
			seen[rule.ID] = struct{}{}
		}
	}
	if doc.GlobalSettings.MaxAutoApprovalsPerHour < 0 || doc.GlobalSettings.AuditLogRetentionDays < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "globalSettings values must not be negative")
	}
	return nil
}

func (s *AutoApprovalService) persist(ctx context.Context, doc *models.AutoApprovalConfig, actor *models.JWTClaims) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode auto-approval configuration")
	}
	description := "Auto-approval rules and global settings"
	updatedBy := actor.UserID
	row := &models.Configuration{
		Key:         models.ConfigurationKeyAutoApproval,
		Value:       string(payload),
		Type:        models.ConfigurationTypeJSON,
		Description: &description,
		UpdatedBy:   &updatedBy,
		UpdatedAt:   doc.UpdatedAt,
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return appErrors.Downstream(err, "failed to save auto-approval configuration")
	}
	s.cache.Delete(ctx, autoApprovalCacheKey)
	return nil
}

func (s *AutoApprovalService) emitAudit(ctx context.Context, actor *models.JWTClaims, action string, before, after *models.AutoApprovalConfig) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(before)
	newValues, _ := json.Marshal(after)
	userID := actor.UserID
	key := models.ConfigurationKeyAutoApproval
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "configuration",
		ResourceID: &key,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "auto-approval-service",
	}); err != nil {
		s.logger.Warn("failed to persist audit log", zap.String("action", action), zap.Error(err))
	}
}
