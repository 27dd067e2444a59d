package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/plannerd/internal/database"
	"github.com/hray3182/plannerd/internal/models"
)

// SettingsRepository persists the single-row notification settings.
type SettingsRepository struct {
	db       *database.DB
	defaults models.Settings
}

func NewSettingsRepository(db *database.DB, defaults models.Settings) *SettingsRepository {
	return &SettingsRepository{db: db, defaults: defaults}
}

// Get returns the stored settings, or the configured defaults when the row
// has never been written.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var (
		s         models.Settings
		updatedAt time.Time
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT quiet_hours_enabled, quiet_start, quiet_end, updated_at
		 FROM settings WHERE settings_id = 1`,
	).Scan(&s.QuietHoursEnabled, &s.QuietHours.Start, &s.QuietHours.End, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return r.defaults, err
	}
	s.UpdatedAt = updatedAt
	return s, nil
}

// Save upserts the settings row.
func (r *SettingsRepository) Save(ctx context.Context, s models.Settings) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO settings (settings_id, quiet_hours_enabled, quiet_start, quiet_end, updated_at)
		 VALUES (1, $1, $2, $3, CURRENT_TIMESTAMP)
		 ON CONFLICT (settings_id) DO UPDATE
		 SET quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
		     quiet_start = EXCLUDED.quiet_start,
		     quiet_end = EXCLUDED.quiet_end,
		     updated_at = CURRENT_TIMESTAMP`,
		s.QuietHoursEnabled, s.QuietHours.Start, s.QuietHours.End,
	)
	return err
}
