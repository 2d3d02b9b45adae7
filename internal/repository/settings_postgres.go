package repository

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

const (
	settingCheckpoint  = "ingest_checkpoint"
	settingLastRefresh = "last_refresh_at"
)

type SettingsPostgres struct {
	db *sql.DB
}

func NewSettingsPostgres(db *sql.DB) *SettingsPostgres {
	return &SettingsPostgres{db: db}
}

// SetCheckpoint records the pagination cursor of the last ingested
// listing page so an interrupted pass can resume.
func (r *SettingsPostgres) SetCheckpoint(lastMatchID int64) error {
	return r.set(settingCheckpoint, strconv.FormatInt(lastMatchID, 10))
}

func (r *SettingsPostgres) GetCheckpoint() (int64, error) {
	val, err := r.get(settingCheckpoint)
	if err != nil || val == "" {
		return 0, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	return id, nil
}

func (r *SettingsPostgres) SetLastRefresh(t time.Time) error {
	return r.set(settingLastRefresh, t.UTC().Format(time.RFC3339))
}

func (r *SettingsPostgres) GetLastRefresh() (time.Time, error) {
	val, err := r.get(settingLastRefresh)
	if err != nil || val == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last refresh time: %w", err)
	}
	return t, nil
}

func (r *SettingsPostgres) set(key, value string) error {
	_, err := r.db.Exec(`INSERT INTO app_settings (key, value) VALUES ($1, $2)
	                     ON CONFLICT (key) DO UPDATE SET value = $2`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func (r *SettingsPostgres) get(key string) (string, error) {
	var val string
	err := r.db.QueryRow("SELECT value FROM app_settings WHERE key = $1", key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return val, nil
}
