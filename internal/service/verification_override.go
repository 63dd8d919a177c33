package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
	"github.com/noah-isme/relief-verification-api/pkg/export"
)

const (
	defaultQueuePage     = 1
	defaultQueuePageSize = 20
	maxQueuePageSize     = 200
	maxOverrideExport    = 5000
)

// Override reverses auto-verified items to PENDING or REJECTED. Every target must currently be
// AUTO_VERIFIED; otherwise nothing is changed. One override record is written per item.
func (s *VerificationService) Override(ctx context.Context, itemType models.VerifiableType, req dto.OverrideRequest, actor *models.JWTClaims) (*dto.OverrideResult, error) {
	result, err := s.override(ctx, itemType, req, actor)
	s.metrics.RecordVerificationAction(string(itemType), "override", err)
	return result, err
}

func (s *VerificationService) override(ctx context.Context, itemType models.VerifiableType, req dto.OverrideRequest, actor *models.JWTClaims) (*dto.OverrideResult, error) {
	justification := strings.TrimSpace(req.Justification)
	if justification == "" {
		return nil, appErrors.ErrJustificationEmpty
	}
	c, err := resolveCoordinator(req.Coordinator, actor)
	if err != nil {
		return nil, err
	}
	if err := validateItemType(itemType); err != nil {
		return nil, err
	}
	if req.NewStatus != models.VerificationStatusPending && req.NewStatus != models.VerificationStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "newStatus must be PENDING or REJECTED")
	}
	if !req.Reason.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is not a known override reason")
	}
	ids := uniqueIDs(req.TargetIDs)
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "targetIds must not be empty")
	}
	if len(ids) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("override exceeds the maximum of %d items", s.cfg.MaxBatchSize))
	}

	if req.Reason == models.OverrideReasonEmergency && s.config != nil {
		cfg, err := s.config.Current(ctx)
		if err != nil {
			return nil, appErrors.Downstream(err, "failed to load auto-approval configuration")
		}
		if !cfg.GlobalSettings.EmergencyOverrideEnabled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "emergency overrides are disabled")
		}
	}

	items := make([]*models.VerifiableItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, itemType, id)
		if err != nil {
			return nil, err
		}
		if item.Status != models.VerificationStatusAutoVerified {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("item %s is %s, expected AUTO_VERIFIED", id, item.Status))
		}
		items = append(items, item)
	}

	now := s.now().UTC()
	overrides := make([]*models.AutoApprovalOverride, 0, len(items))
	for _, item := range items {
		overrides = append(overrides, &models.AutoApprovalOverride{
			TargetType:      itemType,
			TargetIDs:       []string{item.ID},
			OriginalStatus:  models.VerificationStatusAutoVerified,
			NewStatus:       req.NewStatus,
			ReasonCode:      req.Reason,
			Justification:   justification,
			RuleID:          item.AutoApprovalRuleID,
			CoordinatorID:   c.ID,
			CoordinatorName: c.Name,
			CreatedAt:       now,
		})
	}
	if err := s.items.ApplyOverride(ctx, itemType, overrides); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "an item is no longer AUTO_VERIFIED")
		}
		return nil, appErrors.Downstream(err, "failed to apply override")
	}

	result := &dto.OverrideResult{
		Overrides: make([]models.AutoApprovalOverride, 0, len(overrides)),
		Items:     make([]models.VerifiableItem, 0, len(items)),
	}
	for i, item := range items {
		item.Status = req.NewStatus
		item.UpdatedAt = now
		if req.NewStatus == models.VerificationStatusPending {
			item.VerifiedBy = nil
			item.VerifiedAt = nil
		} else {
			reason := string(req.Reason)
			item.VerifiedBy = &c.ID
			item.VerifiedAt = &now
			item.RejectionReason = &reason
		}
		result.Overrides = append(result.Overrides, *overrides[i])
		result.Items = append(result.Items, *item)
		s.recordDecision(ctx, models.AuditActionVerificationOverride, c, item, map[string]interface{}{
			"overrideId":     overrides[i].ID,
			"originalStatus": models.VerificationStatusAutoVerified,
			"reason":         req.Reason,
		})
		s.notify(ctx, models.NotificationItemOverridden, item, map[string]interface{}{
			"newStatus":     req.NewStatus,
			"reason":        req.Reason,
			"justification": justification,
		})
	}
	s.logger.Info("auto-verification overridden",
		zap.String("type", string(itemType)),
		zap.Int("count", len(items)),
		zap.String("new_status", string(req.NewStatus)),
		zap.String("coordinator_id", c.ID),
	)
	return result, nil
}

func uniqueIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ListQueue returns queue items matching the query. Status defaults to PENDING.
func (s *VerificationService) ListQueue(ctx context.Context, query dto.QueueQuery) ([]models.VerifiableItem, *models.Pagination, error) {
	filter, err := buildQueueFilter(query)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Downstream(err, "failed to list verification queue")
	}
	if items == nil {
		items = []models.VerifiableItem{}
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func buildQueueFilter(query dto.QueueQuery) (models.VerificationQueueFilter, error) {
	filter := models.VerificationQueueFilter{
		Type:            models.VerifiableType(strings.ToUpper(strings.TrimSpace(query.Type))),
		Subtype:         strings.ToUpper(strings.TrimSpace(query.Subtype)),
		SubmitterID:     strings.TrimSpace(query.SubmitterID),
		DonorID:         strings.TrimSpace(query.DonorID),
		MinCompleteness: query.MinCompleteness,
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	if err := validateItemType(filter.Type); err != nil {
		return filter, err
	}
	for _, raw := range query.Status {
		for _, part := range strings.Split(raw, ",") {
			status := models.VerificationStatus(strings.ToUpper(strings.TrimSpace(part)))
			if status == "" {
				continue
			}
			if !status.Valid() {
				return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(status))
			}
			filter.Status = append(filter.Status, status)
		}
	}
	if len(filter.Status) == 0 {
		filter.Status = []models.VerificationStatus{models.VerificationStatusPending}
	}
	if filter.MinCompleteness != nil && (*filter.MinCompleteness < 0 || *filter.MinCompleteness > 100) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "minCompleteness must be between 0 and 100")
	}

	var err error
	if filter.SubmittedFrom, err = parseQueryTime(query.SubmittedFrom, "submittedFrom"); err != nil {
		return filter, err
	}
	if filter.SubmittedTo, err = parseQueryTime(query.SubmittedTo, "submittedTo"); err != nil {
		return filter, err
	}
	if filter.SubmittedFrom != nil && filter.SubmittedTo != nil && filter.SubmittedTo.Before(*filter.SubmittedFrom) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "submittedTo must not be before submittedFrom")
	}

	switch sortBy := models.QueueSortField(strings.TrimSpace(query.SortBy)); sortBy {
	case "":
		filter.SortBy = models.QueueSortSubmittedAt
	case models.QueueSortSubmittedAt, models.QueueSortCompleteness, models.QueueSortSubtype:
		filter.SortBy = sortBy
	default:
		return filter, appErrors.Clone(appErrors.ErrValidation, "sortBy must be submittedAt, completeness or subtype")
	}
	switch strings.ToLower(strings.TrimSpace(query.SortOrder)) {
	case "", "asc":
	case "desc":
		filter.SortDesc = true
	default:
		return filter, appErrors.Clone(appErrors.ErrValidation, "sortOrder must be asc or desc")
	}

	if filter.Page <= 0 {
		filter.Page = defaultQueuePage
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultQueuePageSize
	}
	if filter.PageSize > maxQueuePageSize {
		filter.PageSize = maxQueuePageSize
	}
	return filter, nil
}

func parseQueryTime(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, field+" must be RFC3339 or YYYY-MM-DD")
}

func buildOverrideFilter(query dto.OverrideQuery) (models.OverrideFilter, error) {
	filter := models.OverrideFilter{
		TargetType:    models.VerifiableType(strings.ToUpper(strings.TrimSpace(query.Type))),
		TargetID:      strings.TrimSpace(query.TargetID),
		CoordinatorID: strings.TrimSpace(query.CoordinatorID),
		Limit:         query.Limit,
		Offset:        query.Offset,
	}
	if filter.TargetType != "" {
		if err := validateItemType(filter.TargetType); err != nil {
			return filter, err
		}
	}
	var err error
	if filter.From, err = parseQueryTime(query.From, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseQueryTime(query.To, "to"); err != nil {
		return filter, err
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter, nil
}

// ListOverrides returns override audit records, newest first.
func (s *VerificationService) ListOverrides(ctx context.Context, query dto.OverrideQuery) ([]models.AutoApprovalOverride, error) {
	filter, err := buildOverrideFilter(query)
	if err != nil {
		return nil, err
	}
	records, err := s.overrides.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to list overrides")
	}
	if records == nil {
		records = []models.AutoApprovalOverride{}
	}
	return records, nil
}

// ExportOverrides renders the override audit trail as CSV or PDF.
func (s *VerificationService) ExportOverrides(ctx context.Context, query dto.OverrideQuery) (*dto.ExportedFile, error) {
	var exporter export.Exporter
	switch strings.ToLower(strings.TrimSpace(query.Format)) {
	case "", "csv":
		exporter = s.csv
	case "pdf":
		exporter = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if query.Limit <= 0 || query.Limit > maxOverrideExport {
		query.Limit = maxOverrideExport
	}
	records, err := s.ListOverrides(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   "Auto-verification overrides",
		Headers: []string{"Created At", "Type", "Target IDs", "Original Status", "New Status", "Reason", "Justification", "Rule ID", "Coordinator"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, record := range records {
		ruleID := ""
		if record.RuleID != nil {
			ruleID = *record.RuleID
		}
		dataset.Rows = append(dataset.Rows, []string{
			record.CreatedAt.UTC().Format(time.RFC3339),
			string(record.TargetType),
			strings.Join(record.TargetIDs, ";"),
			string(record.OriginalStatus),
			string(record.NewStatus),
			string(record.ReasonCode),
			record.Justification,
			ruleID,
			record.CoordinatorName,
		})
	}
	payload, err := exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render override export")
	}
	return &dto.ExportedFile{
		Filename:    fmt.Sprintf("overrides-%s.%s", s.now().UTC().Format("20060102-150405"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Payload:     payload,
	}, nil
}
