package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/dto"
	"github.com/noah-isme/relief-verification-api/internal/models"
	appErrors "github.com/noah-isme/relief-verification-api/pkg/errors"
)

const (
	batchOperationApprove = "approve"
	batchOperationReject  = "reject"

	// Finished snapshots stay readable from every replica for a day.
	batchProgressTTL = 24 * time.Hour
)

// BatchApprove approves each id sequentially. Items no longer PENDING are skipped and other
// failures are collected; neither aborts the batch.
func (s *VerificationService) BatchApprove(ctx context.Context, itemType models.VerifiableType, req dto.BatchApproveRequest, actor *models.JWTClaims) (*dto.BatchResult, error) {
	c, err := resolveCoordinator(req.Coordinator, actor)
	if err != nil {
		return nil, err
	}
	ids, err := s.prepareBatch(itemType, req.IDs())
	if err != nil {
		return nil, err
	}
	note := strings.TrimSpace(req.ApprovalNote)
	result, err := s.runBatch(ctx, itemType, batchOperationApprove, ids, func(ctx context.Context, id string) error {
		_, err := s.approve(ctx, itemType, id, note, req.Notify, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordBatch(ctx, models.AuditActionBatchApprove, itemType, c, result)
	return result, nil
}

// BatchReject rejects each id sequentially with the same reason and comments.
func (s *VerificationService) BatchReject(ctx context.Context, itemType models.VerifiableType, req dto.BatchRejectRequest, actor *models.JWTClaims) (*dto.BatchResult, error) {
	input, err := newRejection(req.RejectionReason, req.RejectionComments, req.Priority, req.RequiresResubmission, req.Notify)
	if err != nil {
		return nil, err
	}
	c, err := resolveCoordinator(req.Coordinator, actor)
	if err != nil {
		return nil, err
	}
	ids, err := s.prepareBatch(itemType, req.IDs())
	if err != nil {
		return nil, err
	}
	result, err := s.runBatch(ctx, itemType, batchOperationReject, ids, func(ctx context.Context, id string) error {
		_, err := s.reject(ctx, itemType, id, input, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordBatch(ctx, models.AuditActionBatchReject, itemType, c, result)
	return result, nil
}

// Progress reports the running or last completed batch for the queue. With a shared progress store
// the snapshot is the one written by whichever replica holds or last held the batch lock.
func (s *VerificationService) Progress(ctx context.Context, itemType models.VerifiableType) (*dto.BatchProgress, error) {
	if err := validateItemType(itemType); err != nil {
		return nil, err
	}
	if s.progressStore != nil {
		payload, err := s.progressStore.Load(ctx, string(itemType))
		if err != nil {
			s.logger.Warn("failed to load shared batch progress", zap.String("type", string(itemType)), zap.Error(err))
		} else if payload != nil {
			var shared dto.BatchProgress
			if err := json.Unmarshal(payload, &shared); err == nil {
				return &shared, nil
			}
			s.logger.Warn("discarding corrupt batch progress", zap.String("type", string(itemType)))
		}
	}
	s.progressMu.RLock()
	defer s.progressMu.RUnlock()
	current, ok := s.progress[itemType]
	if !ok {
		return &dto.BatchProgress{Type: itemType}, nil
	}
	snapshot := *current
	return &snapshot, nil
}

func (s *VerificationService) prepareBatch(itemType models.VerifiableType, raw []string) ([]string, error) {
	if err := validateItemType(itemType); err != nil {
		return nil, err
	}
	ids := uniqueIDs(raw)
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one id is required")
	}
	if len(ids) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("batch exceeds the maximum of %d items", s.cfg.MaxBatchSize))
	}
	return ids, nil
}

func (s *VerificationService) runBatch(ctx context.Context, itemType models.VerifiableType, operation string, ids []string, apply func(context.Context, string) error) (*dto.BatchResult, error) {
	release, acquired, err := s.locks.Acquire(ctx, string(itemType), s.cfg.BatchLockTTL)
	if err != nil {
		return nil, appErrors.Downstream(err, "failed to acquire batch lock")
	}
	if !acquired {
		return nil, appErrors.ErrBatchInProgress
	}
	defer release()

	// A started batch runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	result := &dto.BatchResult{
		Operation: operation,
		Total:     len(ids),
		Items:     make([]dto.BatchItemResult, 0, len(ids)),
		StartedAt: s.now().UTC(),
	}
	s.setProgress(ctx, itemType, func(p *dto.BatchProgress) {
		p.Running = true
		p.Processed = 0
		p.Total = len(ids)
		p.CurrentOperation = operation
	})

	for _, id := range ids {
		s.setProgress(ctx, itemType, func(p *dto.BatchProgress) {
			p.CurrentOperation = fmt.Sprintf("%s %s", operation, id)
		})
		outcome := dto.BatchItemResult{ID: id, Status: dto.BatchItemSucceeded}
		if err := apply(ctx, id); err != nil {
			outcome.Error = appErrors.FromError(err).Message
			if errors.Is(err, appErrors.ErrInvalidTransition) {
				outcome.Status = dto.BatchItemSkipped
			} else {
				outcome.Status = dto.BatchItemFailed
				s.logger.Warn("batch item failed", zap.String("operation", operation), zap.String("item_id", id), zap.Error(err))
			}
		}
		switch outcome.Status {
		case dto.BatchItemSucceeded:
			result.Succeeded++
		case dto.BatchItemSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
		result.Items = append(result.Items, outcome)
		s.setProgress(ctx, itemType, func(p *dto.BatchProgress) { p.Processed++ })
	}

	result.EndedAt = s.now().UTC()
	s.setProgress(ctx, itemType, func(p *dto.BatchProgress) {
		p.Running = false
		p.CurrentOperation = ""
		finished := *result
		p.LastResult = &finished
	})
	s.metrics.ObserveBatch(string(itemType), operation, result.EndedAt.Sub(result.StartedAt), result.Succeeded, result.Skipped, result.Failed)
	s.logger.Info("batch completed",
		zap.String("type", string(itemType)),
		zap.String("operation", operation),
		zap.Int("total", result.Total),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.EndedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (s *VerificationService) setProgress(ctx context.Context, itemType models.VerifiableType, mutate func(*dto.BatchProgress)) {
	s.progressMu.Lock()
	current, ok := s.progress[itemType]
	if !ok {
		current = &dto.BatchProgress{Type: itemType}
		s.progress[itemType] = current
	}
	mutate(current)
	snapshot := *current
	s.progressMu.Unlock()

	if s.progressStore == nil {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err == nil {
		err = s.progressStore.Save(ctx, string(itemType), payload, batchProgressTTL)
	}
	if err != nil {
		s.logger.Warn("failed to share batch progress", zap.String("type", string(itemType)), zap.Error(err))
	}
}

func (s *VerificationService) recordBatch(ctx context.Context, action string, itemType models.VerifiableType, c coordinator, result *dto.BatchResult) {
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}
	s.writeAudit(ctx, action, c, itemType, "", map[string]interface{}{
		"ids":       ids,
		"total":     result.Total,
		"succeeded": result.Succeeded,
		"skipped":   result.Skipped,
		"failed":    result.Failed,
		"duration":  result.EndedAt.Sub(result.StartedAt).String(),
	})
}
