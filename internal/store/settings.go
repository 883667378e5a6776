// ABOUTME: Per-user key/value settings storage
// ABOUTME: Plaintext operational preferences, upserted on (user_id, setting_key)

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveSetting creates or overwrites a setting. Settings hold non-sensitive
// preferences (e.g. the chosen LLM provider) and are not encrypted.
func (s *SQLiteStore) SaveSetting(ctx context.Context, userID int64, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, setting_key, setting_value)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, setting_key)
		DO UPDATE SET setting_value = excluded.setting_value
	`, userID, key, value)
	if err != nil {
		return fmt.Errorf("upserting setting: %w", err)
	}

	s.logger.Debug("saved setting", "user_id", userID, "key", key)
	return nil
}

// GetSetting returns the value for (user, key), or ErrNotFound.
func (s *SQLiteStore) GetSetting(ctx context.Context, userID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT setting_value FROM settings WHERE user_id = ? AND setting_key = ?`,
		userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying setting: %w", err)
	}
	return value, nil
}

// GetAllSettings returns all settings for a user, keyed by setting key.
func (s *SQLiteStore) GetAllSettings(ctx context.Context, userID int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT setting_key, setting_value FROM settings WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting rows: %w", err)
	}

	return settings, nil
}
