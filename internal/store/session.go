package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rgalloway/tally/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create registers an issued token ID so it can be revoked before expiry.
func (s *SessionStore) Create(tokenID string, userID int64, expiresAt time.Time) (*model.Session, error) {
	result, err := s.db.Exec(
		`INSERT INTO sessions (token_id, user_id, expires_at) VALUES (?, ?, ?)`,
		tokenID, userID, expiresAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT id, token_id, user_id, expires_at, created_at FROM sessions WHERE id = ?`, id)
	var sess model.Session
	if err := row.Scan(&sess.ID, &sess.TokenID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// GetByTokenID returns the session for a token ID, or nil if the token was
// revoked or has expired.
func (s *SessionStore) GetByTokenID(tokenID string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, token_id, user_id, expires_at, created_at FROM sessions WHERE token_id = ? AND expires_at > ?`,
		tokenID, time.Now().UTC(),
	)
	var sess model.Session
	err := row.Scan(&sess.ID, &sess.TokenID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) DeleteByTokenID(tokenID string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token_id = ?`, tokenID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes stale sessions; intended for a periodic cleanup task.
func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
