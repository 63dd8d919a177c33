package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/relief-verification-api/internal/models"
)

// ConfigurationRepository persists keyed configuration documents.
type ConfigurationRepository struct {
	db *sqlx.DB
}

// NewConfigurationRepository constructs the repository.
func NewConfigurationRepository(db *sqlx.DB) *ConfigurationRepository {
	return &ConfigurationRepository{db: db}
}

// Get fetches a single configuration by key.
func (r *ConfigurationRepository) Get(ctx context.Context, key string) (*models.Configuration, error) {
	const query = `SELECT key, value, type, description, updated_by, updated_at FROM configurations WHERE key = $1`
	var cfg models.Configuration
	if err := r.db.GetContext(ctx, &cfg, query, key); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert inserts or replaces a configuration entry.
func (r *ConfigurationRepository) Upsert(ctx context.Context, cfg *models.Configuration) error {
	const query = `INSERT INTO configurations (key, value, type, description, updated_by, updated_at)
VALUES (:key, :value, :type, :description, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type, description = EXCLUDED.description,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("upsert configuration: %w", err)
	}
	return nil
}
