// ABOUTME: Login session persistence for the UI layer
// ABOUTME: UUID-keyed sessions with expiry, cascade-deleted with their user

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession creates a session for the user valid for ttl.
// Returns ErrNotFound when the user does not exist.
func (s *SQLiteStore) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.UserID,
		session.CreatedAt.Format(time.RFC3339),
		session.ExpiresAt.Format(time.RFC3339),
	)
	if err != nil {
		// A foreign key violation means the user is gone.
		if isConstraintViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "id", session.ID, "user_id", userID)
	return session, nil
}

// GetSession retrieves a session by ID. Unknown and expired sessions both
// return ErrNotFound.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var session Session
	var createdAt, expiresAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.UserID, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	session.CreatedAt = parseTimestamp(createdAt)
	session.ExpiresAt = parseTimestamp(expiresAt)

	if !session.ExpiresAt.After(time.Now().UTC()) {
		return nil, ErrNotFound
	}

	return &session, nil
}

// DeleteSession removes a session. Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted session", "id", id)
	return nil
}

// DeleteExpiredSessions removes all sessions past their expiry.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return fmt.Errorf("deleting expired sessions: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		s.logger.Debug("deleted expired sessions", "count", rowsAffected)
	}
	return nil
}
