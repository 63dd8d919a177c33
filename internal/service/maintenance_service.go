package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type auditPurger interface {
	PurgeAuditLogs(ctx context.Context, before time.Time) (int64, error)
}

// MaintenanceConfig schedules housekeeping.
type MaintenanceConfig struct {
	AuditPurgeSchedule   string
	DefaultRetentionDays int
}

// MaintenanceService runs scheduled housekeeping: request audit logs older than the configured
// retention are purged. Override records live in their own table and are never touched.
type MaintenanceService struct {
	audit   auditPurger
	config  autoApprovalConfigSource
	metrics *MetricsService
	logger  *zap.Logger
	cfg     MaintenanceConfig
	now     func() time.Time

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewMaintenanceService constructs the service.
func NewMaintenanceService(audit auditPurger, config autoApprovalConfigSource, metrics *MetricsService, logger *zap.Logger, cfg MaintenanceConfig) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AuditPurgeSchedule == "" {
		cfg.AuditPurgeSchedule = "@daily"
	}
	if cfg.DefaultRetentionDays <= 0 {
		cfg.DefaultRetentionDays = 90
	}
	return &MaintenanceService{audit: audit, config: config, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// Start registers the jobs and starts the scheduler.
func (s *MaintenanceService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return nil
	}
	scheduler := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc(s.cfg.AuditPurgeSchedule, func() {
		if _, err := s.PurgeAuditLogs(ctx); err != nil {
			s.logger.Error("audit log purge failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	s.scheduler = scheduler
	s.logger.Info("maintenance scheduler started", zap.String("audit_purge", s.cfg.AuditPurgeSchedule))
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (s *MaintenanceService) Stop() {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()
	if scheduler == nil {
		return
	}
	<-scheduler.Stop().Done()
}

// PurgeAuditLogs removes audit rows older than auditLogRetentionDays. Zero retention keeps everything.
func (s *MaintenanceService) PurgeAuditLogs(ctx context.Context) (int64, error) {
	days := s.cfg.DefaultRetentionDays
	if s.config != nil {
		cfg, err := s.config.Current(ctx)
		if err != nil {
			s.logger.Warn("using default audit retention", zap.Error(err))
		} else {
			days = cfg.GlobalSettings.AuditLogRetentionDays
		}
	}
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	removed, err := s.audit.PurgeAuditLogs(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.metrics.AddAuditPurged(removed)
	s.logger.Info("audit logs purged", zap.Int64("removed", removed), zap.Time("cutoff", cutoff), zap.Int("retention_days", days))
	return removed, nil
}
