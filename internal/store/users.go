// ABOUTME: Account lifecycle and password verification for the credential store
// ABOUTME: Preserves the unsalted SHA-256 hex digest scheme of existing databases

package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// hashPassword computes the stored password digest: unsalted SHA-256 hex.
// This matches digests already on disk; changing it would lock existing
// accounts out. See the package documentation for the security caveats.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CreateUser creates a new account. Returns ErrUsernameExists when the
// username is already taken; duplicate signup is an expected outcome, not a
// fault.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, password string) (*User, error) {
	hash := hashPassword(password)

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, hash,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	s.logger.Debug("created user", "id", id, "username", username)

	user, err := s.getUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyUser checks a username/password pair against the stored digest.
// Returns the user ID on success, ErrInvalidCredentials otherwise.
func (s *SQLiteStore) VerifyUser(ctx context.Context, username, password string) (int64, error) {
	hash := hashPassword(password)

	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ? AND password_hash = ?`,
		username, hash,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrInvalidCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("querying user: %w", err)
	}

	return id, nil
}

// UserExists reports whether an account with this username exists.
func (s *SQLiteStore) UserExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying user: %w", err)
	}
	return true, nil
}

// HasAnyUsers reports whether any account exists.
func (s *SQLiteStore) HasAnyUsers(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	return count > 0, nil
}

// ChangePassword verifies the old password before storing the new digest.
// Fails closed with ErrInvalidCredentials; never updates on unverified input.
func (s *SQLiteStore) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	id, err := s.VerifyUser(ctx, username, oldPassword)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		hashPassword(newPassword), id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Debug("changed password", "id", id, "username", username)
	return nil
}

// GetUserByUsername retrieves an account by username.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.CreatedAt = parseTimestamp(createdAt)
	return &user, nil
}

func (s *SQLiteStore) getUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.CreatedAt = parseTimestamp(createdAt)
	return &user, nil
}

// ListUsers returns all accounts ordered by ID.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		var createdAt string

		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}

		user.CreatedAt = parseTimestamp(createdAt)
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

// DeleteUser removes an account; credentials, settings and sessions are
// removed by cascade. Returns ErrNotFound for unknown IDs.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted user", "id", userID)
	return nil
}
