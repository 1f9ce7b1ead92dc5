package repository

import (
	"github.com/jmoiron/sqlx"
)

// The settings table holds a single row seeded by the initial migration.
const settingsRowID = 1

type SettingsRepository interface {
	DefaultTimer() (int64, error)
	SetDefaultTimer(seconds int64) error
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *settingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) DefaultTimer() (int64, error) {
	var seconds int64
	err := r.db.Get(&seconds, `SELECT default_timer FROM settings WHERE id = $1`, settingsRowID)
	if err != nil {
		return 0, err
	}
	return seconds, nil
}

func (r *settingsRepository) SetDefaultTimer(seconds int64) error {
	_, err := r.db.Exec(`UPDATE settings SET default_timer = $1 WHERE id = $2`, seconds, settingsRowID)
	return err
}
