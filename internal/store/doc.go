// Package store provides encrypted multi-tenant credential persistence for
// the media agent using SQLite.
//
// # Architecture
//
// The store is split into four interfaces, all implemented by SQLiteStore:
//
//   - AccountStore: signup, login verification, password changes
//   - CredentialStore: encrypted per-user, per-service secrets
//   - SettingsStore: plaintext per-user preferences
//   - SessionStore: UI login sessions with expiry
//
// One store instance owns a data directory containing the database file
// (media_agent.db by default) and the ".encryption_key" file. Multiple
// instances may share a directory; every operation is a single transaction
// and SQLite serializes conflicting writers. Brief write contention is
// expected and retryable, not fatal.
//
// # Data model
//
//   - users: id, username (UNIQUE), password_hash, created_at
//   - credentials: UNIQUE(user_id, service_name), encrypted_url and
//     encrypted_api_key ciphertext columns, upserted in place
//   - settings: UNIQUE(user_id, setting_key), plaintext values
//   - sessions: uuid id, expiry
//
// credentials, settings and sessions reference users with ON DELETE CASCADE.
//
// # SQLite configuration
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Encryption
//
// Credential fields are sealed with XChaCha20-Poly1305 before they reach
// SQLite and opened only at read time, in process. Absent fields are stored
// as NULL, never as empty ciphertext. Tampered or foreign ciphertext
// surfaces as secrets.ErrDecrypt on read.
//
// # Passwords
//
// Password digests are unsalted SHA-256 hex, preserved byte-for-byte so
// existing databases keep verifying. This scheme is too weak for hostile
// environments: no salt, no stretching, and the SQL equality match is not
// constant-time. Upgrading means migrating every stored digest, which is
// why it has not been done silently here.
//
// # Error handling
//
// Expected outcomes are sentinel errors, recoverable via errors.Is:
//
//   - ErrNotFound: entity does not exist (or session expired)
//   - ErrUsernameExists: duplicate signup
//   - ErrInvalidCredentials: password verification failed
//
// Storage and I/O faults are wrapped and propagated; the store never
// retries internally and never writes to a console or UI.
package store
