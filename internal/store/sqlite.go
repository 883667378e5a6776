// ABOUTME: SQLite implementation of the credential store using modernc.org/sqlite
// ABOUTME: Owns the database file and encryption key file inside a data directory

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/akstspace/media-mgmt-agent/internal/secrets"
)

// DefaultDatabaseName is the database file name inside the data directory.
const DefaultDatabaseName = "media_agent.db"

// Options configures store construction. The zero value is valid.
type Options struct {
	// DatabaseName overrides the database file name inside the data
	// directory. Defaults to DefaultDatabaseName.
	DatabaseName string
	// EncryptionKey supplies an explicit base64url-encoded key. When set,
	// the key file in the data directory is neither read nor written.
	EncryptionKey string
}

// SQLiteStore implements the store interfaces using SQLite. Multiple
// instances may point at the same data directory; each operation is a
// single transaction and concurrent writers are serialized by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	cipher *secrets.Cipher
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the store under dataDir. The data
// directory, database file, encryption key and schema are all created on
// first use; reopening an existing directory is idempotent.
func NewSQLiteStore(dataDir string, opts Options) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	key, err := secrets.ObtainKey(opts.EncryptionKey, dataDir)
	if err != nil {
		return nil, fmt.Errorf("obtaining encryption key: %w", err)
	}

	cipher, err := secrets.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	name := opts.DatabaseName
	if name == "" {
		name = DefaultDatabaseName
	}
	path := filepath.Join(dataDir, name)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Cascade deletes depend on this pragma; it is off by default.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		cipher: cipher,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("credential store initialized", "path", path)
	return s, nil
}

// createSchema creates the tables if they don't exist. Safe to run on every
// open.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			service_name TEXT NOT NULL,
			encrypted_url TEXT,
			encrypted_api_key TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, service_name)
		);

		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			setting_key TEXT NOT NULL,
			setting_value TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE(user_id, setting_key)
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing credential store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// parseTimestamp parses the two timestamp formats present in the database:
// RFC3339 (written by this store) and SQLite's CURRENT_TIMESTAMP form
// (written by column defaults).
func parseTimestamp(value string) time.Time {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// Ensure SQLiteStore implements all store interfaces.
var (
	_ AccountStore    = (*SQLiteStore)(nil)
	_ CredentialStore = (*SQLiteStore)(nil)
	_ SettingsStore   = (*SQLiteStore)(nil)
	_ SessionStore    = (*SQLiteStore)(nil)
)
