package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/pkg/broker"
	"github.com/noah-isme/relief-verification-api/pkg/jobs"
)

const notificationJobType = "notification"

// NotificationServiceConfig tunes the dispatch queue.
type NotificationServiceConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// NotificationService hands notifications to the external delivery service asynchronously.
// Delivery failures are retried by the queue and never affect verification state.
type NotificationService struct {
	queue     *jobs.Queue
	publisher broker.Publisher
	metrics   *MetricsService
	logger    *zap.Logger
	enabled   bool
	now       func() time.Time
	closeOnce sync.Once
}

// NewNotificationService constructs the service. Call Start before Notify.
func NewNotificationService(publisher broker.Publisher, metrics *MetricsService, logger *zap.Logger, cfg NotificationServiceConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		enabled:   cfg.Enabled && publisher != nil,
		now:       time.Now,
	}
	s.queue = jobs.NewQueue("notifications", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains workers and closes the publisher. The service owns the publisher, so it is closed
// exactly once even when notifications are disabled.
func (s *NotificationService) Stop() {
	if s == nil {
		return
	}
	if s.enabled {
		s.queue.Stop()
	}
	s.closeOnce.Do(func() {
		if s.publisher == nil {
			return
		}
		if err := s.publisher.Close(); err != nil {
			s.logger.Warn("failed to close notification publisher", zap.Error(err))
		}
	})
}

// Stats reports queue throughput.
func (s *NotificationService) Stats() jobs.Stats {
	if s == nil {
		return jobs.Stats{}
	}
	return s.queue.Stats()
}

// Notify enqueues a notification without blocking the caller.
func (s *NotificationService) Notify(_ context.Context, notification models.Notification) {
	if s == nil || !s.enabled || notification.RecipientID == "" {
		return
	}
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = s.now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: notificationJobType, Payload: notification}); err != nil {
		s.metrics.RecordNotification(string(notification.Event), err)
		s.logger.Warn("notification dropped", zap.String("event", string(notification.Event)), zap.String("recipient_id", notification.RecipientID), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected notification payload %T", job.Payload)
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	err = s.publisher.Publish(ctx, notification.RecipientID, payload)
	s.metrics.RecordNotification(string(notification.Event), err)
	return err
}
