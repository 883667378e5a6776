// ABOUTME: Encrypted per-user, per-service credential storage
// ABOUTME: Fields are sealed before they reach SQLite and opened only at read time

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveCredentials encrypts url and api key independently and upserts the row
// keyed on (user_id, service_name). Saving the same service twice replaces
// the stored fields and refreshes updated_at. A nil or empty field is stored
// as NULL; the cipher is never invoked on absent input.
func (s *SQLiteStore) SaveCredentials(ctx context.Context, userID int64, serviceName string, url, apiKey *string) error {
	encryptedURL, err := s.encryptField(url)
	if err != nil {
		return fmt.Errorf("encrypting url: %w", err)
	}
	encryptedKey, err := s.encryptField(apiKey)
	if err != nil {
		return fmt.Errorf("encrypting api key: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, service_name, encrypted_url, encrypted_api_key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, service_name)
		DO UPDATE SET
			encrypted_url = excluded.encrypted_url,
			encrypted_api_key = excluded.encrypted_api_key,
			updated_at = CURRENT_TIMESTAMP
	`, userID, serviceName, encryptedURL, encryptedKey)
	if err != nil {
		return fmt.Errorf("upserting credentials: %w", err)
	}

	s.logger.Debug("saved credentials", "user_id", userID, "service", serviceName)
	return nil
}

// encryptField seals a field value, mapping absent input to a stored NULL.
func (s *SQLiteStore) encryptField(value *string) (any, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	sealed, err := s.cipher.Encrypt(*value)
	if err != nil {
		return nil, err
	}
	return sealed, nil
}

// decryptField opens a stored field, mapping NULL back to nil. A value that
// fails authentication surfaces secrets.ErrDecrypt, never garbage plaintext.
func (s *SQLiteStore) decryptField(value sql.NullString) (*string, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	plain, err := s.cipher.Decrypt(value.String)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}

// GetCredentials returns the decrypted credentials for (user, service), or
// ErrNotFound when no row exists.
func (s *SQLiteStore) GetCredentials(ctx context.Context, userID int64, serviceName string) (*Credentials, error) {
	var encryptedURL, encryptedKey sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT encrypted_url, encrypted_api_key
		FROM credentials
		WHERE user_id = ? AND service_name = ?
	`, userID, serviceName).Scan(&encryptedURL, &encryptedKey)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}

	creds := &Credentials{}
	if creds.URL, err = s.decryptField(encryptedURL); err != nil {
		return nil, fmt.Errorf("decrypting url for %s: %w", serviceName, err)
	}
	if creds.APIKey, err = s.decryptField(encryptedKey); err != nil {
		return nil, fmt.Errorf("decrypting api key for %s: %w", serviceName, err)
	}

	return creds, nil
}

// GetAllCredentials returns decrypted credentials for every service the user
// has stored, keyed by service name. Users with no rows get an empty map.
func (s *SQLiteStore) GetAllCredentials(ctx context.Context, userID int64) (map[string]*Credentials, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service_name, encrypted_url, encrypted_api_key
		FROM credentials
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	defer rows.Close()

	all := make(map[string]*Credentials)
	for rows.Next() {
		var serviceName string
		var encryptedURL, encryptedKey sql.NullString

		if err := rows.Scan(&serviceName, &encryptedURL, &encryptedKey); err != nil {
			return nil, fmt.Errorf("scanning credential row: %w", err)
		}

		creds := &Credentials{}
		if creds.URL, err = s.decryptField(encryptedURL); err != nil {
			return nil, fmt.Errorf("decrypting url for %s: %w", serviceName, err)
		}
		if creds.APIKey, err = s.decryptField(encryptedKey); err != nil {
			return nil, fmt.Errorf("decrypting api key for %s: %w", serviceName, err)
		}
		all[serviceName] = creds
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credential rows: %w", err)
	}

	return all, nil
}

// DeleteCredentials removes the row for (user, service). Deleting a
// non-existent pairing is a no-op, not an error.
func (s *SQLiteStore) DeleteCredentials(ctx context.Context, userID int64, serviceName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE user_id = ? AND service_name = ?`,
		userID, serviceName,
	)
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}

	s.logger.Debug("deleted credentials", "user_id", userID, "service", serviceName)
	return nil
}
