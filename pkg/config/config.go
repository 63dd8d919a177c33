package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Verification  VerificationConfig
	AutoApproval  AutoApprovalConfig
	Notifications NotificationConfig
	Maintenance   MaintenanceConfig
	Dashboard     DashboardConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the shared secret used to validate tokens minted by the identity provider.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// VerificationConfig tunes the coordinator queue.
type VerificationConfig struct {
	MaxBatchSize int
	BatchLockTTL time.Duration
}

// AutoApprovalConfig tunes auto-approval evaluation.
type AutoApprovalConfig struct {
	ConfigCacheTTL          time.Duration
	DefaultMaxPerHour       int
	CoordinatorOnlineWindow time.Duration
}

// NotificationConfig controls asynchronous notification dispatch.
type NotificationConfig struct {
	Enabled      bool
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
	KafkaBrokers []string
	KafkaTopic   string
}

// MaintenanceConfig schedules housekeeping jobs.
type MaintenanceConfig struct {
	Enabled              bool
	AuditPurgeCron       string
	DefaultRetentionDays int
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Verification = VerificationConfig{
		MaxBatchSize: v.GetInt("VERIFICATION_MAX_BATCH_SIZE"),
		BatchLockTTL: parseDuration(v.GetString("VERIFICATION_BATCH_LOCK_TTL"), 10*time.Minute),
	}

	cfg.AutoApproval = AutoApprovalConfig{
		ConfigCacheTTL:          parseDuration(v.GetString("AUTO_APPROVAL_CONFIG_CACHE_TTL"), 5*time.Minute),
		DefaultMaxPerHour:       v.GetInt("AUTO_APPROVAL_DEFAULT_MAX_PER_HOUR"),
		CoordinatorOnlineWindow: parseDuration(v.GetString("AUTO_APPROVAL_COORDINATOR_ONLINE_WINDOW"), 15*time.Minute),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:      v.GetBool("ENABLE_NOTIFICATIONS"),
		Workers:      v.GetInt("NOTIFICATION_WORKERS"),
		MaxRetries:   v.GetInt("NOTIFICATION_MAX_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), 2*time.Second),
		KafkaBrokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_NOTIFICATION_TOPIC"),
	}

	cfg.Maintenance = MaintenanceConfig{
		Enabled:              v.GetBool("ENABLE_MAINTENANCE"),
		AuditPurgeCron:       v.GetString("AUDIT_PURGE_CRON"),
		DefaultRetentionDays: v.GetInt("AUDIT_LOG_RETENTION_DAYS"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 2*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "relief_verification")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("VERIFICATION_MAX_BATCH_SIZE", 100)
	v.SetDefault("VERIFICATION_BATCH_LOCK_TTL", "10m")

	v.SetDefault("AUTO_APPROVAL_CONFIG_CACHE_TTL", "5m")
	v.SetDefault("AUTO_APPROVAL_DEFAULT_MAX_PER_HOUR", 50)
	v.SetDefault("AUTO_APPROVAL_COORDINATOR_ONLINE_WINDOW", "15m")

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "2s")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_NOTIFICATION_TOPIC", "verification.notifications")

	v.SetDefault("ENABLE_MAINTENANCE", true)
	v.SetDefault("AUDIT_PURGE_CRON", "@daily")
	v.SetDefault("AUDIT_LOG_RETENTION_DAYS", 90)

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "2m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
