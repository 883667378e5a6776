// ABOUTME: Store types and interfaces for media agent credential persistence
// ABOUTME: Defines User, Credentials, Session structs and the per-service store interfaces

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when trying to create a user with a taken username.
var ErrUsernameExists = errors.New("username already exists")

// ErrInvalidCredentials is returned when username/password verification fails.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Well-known service names for credential rows. Callers may use any string;
// these are the integrations the agent layer knows about.
const (
	ServiceRadarr     = "radarr"
	ServiceSonarr     = "sonarr"
	ServiceOpenAI     = "openai"
	ServiceOpenRouter = "openrouter"
)

// Setting keys the agent layer stores per user.
const (
	SettingLLMProvider = "llm_provider"
	SettingLLMModel    = "llm_model"
)

// DefaultModel returns the default model for an LLM provider, or "" for an
// unknown provider.
func DefaultModel(provider string) string {
	switch provider {
	case ServiceOpenAI:
		return "gpt-4o-mini"
	case ServiceOpenRouter:
		return "anthropic/claude-3.5-sonnet"
	}
	return ""
}

// User represents an account. PasswordHash is the stored digest, never the
// plaintext password.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Credentials holds the decrypted connection secrets for one service.
// A nil field means the field was never stored.
type Credentials struct {
	URL    *string
	APIKey *string
}

// Session represents a logged-in UI session for a user.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccountStore defines account lifecycle and password verification.
type AccountStore interface {
	// CreateUser creates an account. Returns ErrUsernameExists if the
	// username is taken.
	CreateUser(ctx context.Context, username, password string) (*User, error)
	// VerifyUser returns the user ID when username and password match,
	// ErrInvalidCredentials otherwise.
	VerifyUser(ctx context.Context, username, password string) (int64, error)
	// UserExists reports whether an account with this username exists.
	UserExists(ctx context.Context, username string) (bool, error)
	// HasAnyUsers reports whether any account exists. Callers use this to
	// choose between first-run signup and login flows.
	HasAnyUsers(ctx context.Context) (bool, error)
	// ChangePassword re-verifies the old password before applying the new
	// one. Returns ErrInvalidCredentials when verification fails; the stored
	// digest is never updated on unverified input.
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	// GetUserByUsername returns ErrNotFound for unknown usernames.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	// ListUsers returns all accounts ordered by ID.
	ListUsers(ctx context.Context) ([]*User, error)
	// DeleteUser removes an account and, via cascade, its credentials,
	// settings and sessions. Returns ErrNotFound for unknown IDs.
	DeleteUser(ctx context.Context, userID int64) error
}

// CredentialStore defines encrypted per-user, per-service secret storage.
type CredentialStore interface {
	// SaveCredentials upserts the credential row for (user, service).
	// Nil or empty fields are stored as NULL, not as empty ciphertext.
	SaveCredentials(ctx context.Context, userID int64, serviceName string, url, apiKey *string) error
	// GetCredentials returns decrypted credentials, or ErrNotFound when no
	// row exists for the pair.
	GetCredentials(ctx context.Context, userID int64, serviceName string) (*Credentials, error)
	// GetAllCredentials returns decrypted credentials for every service the
	// user has stored, keyed by service name.
	GetAllCredentials(ctx context.Context, userID int64) (map[string]*Credentials, error)
	// DeleteCredentials removes the row for (user, service). Deleting a
	// non-existent pairing is a no-op.
	DeleteCredentials(ctx context.Context, userID int64, serviceName string) error
}

// SettingsStore defines per-user plaintext key/value preferences.
type SettingsStore interface {
	SaveSetting(ctx context.Context, userID int64, key, value string) error
	GetSetting(ctx context.Context, userID int64, key string) (string, error)
	GetAllSettings(ctx context.Context, userID int64) (map[string]string, error)
}

// SessionStore defines login session persistence.
type SessionStore interface {
	// CreateSession creates a session for the user valid for ttl. Returns
	// ErrNotFound when the user does not exist.
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*Session, error)
	// GetSession returns ErrNotFound for unknown or expired sessions.
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) error
}
