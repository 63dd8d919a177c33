package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/relief-verification-api/api/swagger"
	"github.com/noah-isme/relief-verification-api/internal/handler"
	"github.com/noah-isme/relief-verification-api/internal/middleware"
	"github.com/noah-isme/relief-verification-api/internal/models"
	"github.com/noah-isme/relief-verification-api/internal/repository"
	"github.com/noah-isme/relief-verification-api/internal/service"
	"github.com/noah-isme/relief-verification-api/pkg/broker"
	"github.com/noah-isme/relief-verification-api/pkg/cache"
	"github.com/noah-isme/relief-verification-api/pkg/config"
	"github.com/noah-isme/relief-verification-api/pkg/database"
	"github.com/noah-isme/relief-verification-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/relief-verification-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/relief-verification-api/pkg/middleware/requestid"
)

// @title Relief Verification API
// @version 1.0.0
// @description Verification queue, auto-approval and donor achievements for disaster response data.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

type guards struct {
	counter interface {
		Reserve(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
		Release(ctx context.Context, key string) error
		Count(ctx context.Context, key string) (int, error)
	}
	locks interface {
		Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
	}
	presence interface {
		Touch(ctx context.Context, userID string, ttl time.Duration) error
		AnyOnline(ctx context.Context) (bool, error)
	}
	// progress is nil without Redis; each replica then reports only its own batches.
	progress interface {
		Save(ctx context.Context, key string, snapshot []byte, ttl time.Duration) error
		Load(ctx context.Context, key string) ([]byte, error)
	}
}

// newGuards uses Redis when available so counters and locks hold across instances.
func newGuards(client *redis.Client) guards {
	if client == nil {
		return guards{
			counter:  repository.NewMemoryApprovalCounter(),
			locks:    repository.NewMemoryBatchLock(),
			presence: repository.NewMemoryPresenceTracker(),
		}
	}
	return guards{
		counter:  repository.NewRedisApprovalCounter(client),
		locks:    repository.NewRedisBatchLock(client),
		presence: repository.NewRedisPresenceTracker(client),
		progress: repository.NewRedisBatchProgress(client),
	}
}

func newPublisher(cfg config.NotificationConfig, logr *zap.Logger) broker.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return broker.NewLogPublisher(logr)
	}
	publisher, err := broker.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		logr.Warn("kafka publisher unavailable, logging notifications instead", zap.Error(err))
		return broker.NewLogPublisher(logr)
	}
	return publisher
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-process guards", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()
	guard := newGuards(redisClient)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	itemRepo := repository.NewVerificationRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})
	notificationSvc := service.NewNotificationService(newPublisher(cfg.Notifications, logr), metricsSvc, logr, service.NotificationServiceConfig{
		Enabled:    cfg.Notifications.Enabled,
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
	})
	autoApprovalSvc := service.NewAutoApprovalService(configRepo, userRepo, userRepo, cacheSvc, validate, logr, service.AutoApprovalServiceConfig{
		DefaultMaxPerHour:    cfg.AutoApproval.DefaultMaxPerHour,
		DefaultRetentionDays: cfg.Maintenance.DefaultRetentionDays,
		CacheTTL:             cfg.AutoApproval.ConfigCacheTTL,
	})
	matcher := service.NewRuleMatcher(autoApprovalSvc, guard.counter, guard.presence, metricsSvc, logr)
	achievementSvc := service.NewAchievementService(achievementRepo, notificationSvc, metricsSvc, logr)
	verificationSvc := service.NewVerificationService(service.VerificationDeps{
		Items:        itemRepo,
		Overrides:    overrideRepo,
		Config:       autoApprovalSvc,
		Achievements: achievementSvc,
		Audit:        userRepo,
		Notifier:     notificationSvc,
		Locks:        guard.locks,
		Progress:     guard.progress,
		Metrics:      metricsSvc,
		Logger:       logr,
	}, service.VerificationServiceConfig{
		MaxBatchSize: cfg.Verification.MaxBatchSize,
		BatchLockTTL: cfg.Verification.BatchLockTTL,
	})
	submissionSvc := service.NewSubmissionService(itemRepo, userRepo, matcher, achievementSvc, userRepo, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Items:     itemRepo,
		Overrides: overrideRepo,
		Feedback:  feedbackRepo,
		Donors:    achievementRepo,
		Config:    autoApprovalSvc,
		Usage:     matcher,
		Cache:     cacheSvc,
		Logger:    logr,
		Options:   service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	maintenanceSvc := service.NewMaintenanceService(userRepo, autoApprovalSvc, metricsSvc, logr, service.MaintenanceConfig{
		AuditPurgeSchedule:   cfg.Maintenance.AuditPurgeCron,
		DefaultRetentionDays: cfg.Maintenance.DefaultRetentionDays,
	})

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()
	if cfg.Maintenance.Enabled {
		if err := maintenanceSvc.Start(ctx); err != nil {
			logr.Sugar().Fatalw("failed to schedule maintenance", "error", err)
		}
		defer maintenanceSvc.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, readinessChecks(db, redisClient), notificationSvc.Stats)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	api.Use(middleware.CoordinatorPresence(guard.presence, cfg.AutoApproval.CoordinatorOnlineWindow, logr))

	api.GET("/auth/me", handler.NewAuthHandler(authSvc).Me)

	submissionHandler := handler.NewSubmissionHandler(submissionSvc)
	api.POST("/assessments", middleware.RequireRoles(models.RoleAssessor, models.RoleAdmin), submissionHandler.SubmitAssessment)
	api.POST("/responses", middleware.RequireRoles(models.RoleResponder, models.RoleAdmin), submissionHandler.SubmitResponse)

	verification := api.Group("/verification", middleware.RequireCoordinator())
	handler.NewVerificationHandler(verificationSvc).Register(verification,
		middleware.Audit(userRepo, logr, models.AuditActionOverrideExport, "auto_approval_overrides"))

	autoApprovalHandler := handler.NewAutoApprovalHandler(autoApprovalSvc)
	autoApproval := api.Group("/auto-approval")
	autoApproval.GET("/config", middleware.RequireCoordinator(), autoApprovalHandler.Get)
	autoApproval.PUT("/config", middleware.RequireRoles(models.RoleAdmin), autoApprovalHandler.Update)
	autoApproval.POST("/toggle", middleware.RequireRoles(models.RoleAdmin), autoApprovalHandler.Toggle)
	autoApproval.POST("/preview", middleware.RequireRoles(models.RoleAdmin), autoApprovalHandler.Preview)

	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	api.GET("/feedback", feedbackHandler.List)
	api.GET("/feedback/target/:type/:id", feedbackHandler.ListForTarget)
	api.POST("/feedback/:id/read", feedbackHandler.MarkRead)
	api.POST("/feedback/:id/resolve", feedbackHandler.MarkResolved)

	achievementHandler := handler.NewAchievementHandler(achievementSvc)
	donors := api.Group("/donors/:id", middleware.RBAC(string(models.RoleCoordinator), string(models.RoleAdmin), "SELF"))
	donors.GET("/achievements", achievementHandler.List)
	donors.GET("/stats", achievementHandler.Stats)

	if cfg.Dashboard.Enabled {
		api.GET("/dashboard", handler.NewDashboardHandler(dashboardSvc).Get)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped")
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"database": db.PingContext,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}
