package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SaveSetting upserts a JSON-encoded setting value under the given key.
func (db *DB) SaveSetting(ctx context.Context, key string, value interface{}) error {
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting value: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, val,
	)
	if err != nil {
		return fmt.Errorf("failed to save setting to DB: %w", err)
	}

	return nil
}

// GetSetting unmarshals the stored value for key into target. A missing key
// leaves target untouched and returns nil, so callers keep their defaults.
func (db *DB) GetSetting(ctx context.Context, key string, target interface{}) error {
	var val []byte

	err := db.Pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&val)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}

		return fmt.Errorf("failed to get setting from DB: %w", err)
	}

	if err := json.Unmarshal(val, target); err != nil {
		return fmt.Errorf("failed to unmarshal setting value: %w", err)
	}

	return nil
}

// DeleteSetting removes a setting. Deleting a missing key is not an error.
func (db *DB) DeleteSetting(ctx context.Context, key string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting from DB: %w", err)
	}

	return nil
}
