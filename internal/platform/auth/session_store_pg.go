package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hospitalos/hms/internal/platform/db"
)

// ErrSessionNotFound is returned when a token does not match an active,
// unexpired session.
var ErrSessionNotFound = errors.New("session not found")

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSessionStore stores sessions in the user_session table.
type PGSessionStore struct {
	pool *pgxpool.Pool
}

func NewPGSessionStore(pool *pgxpool.Pool) *PGSessionStore {
	return &PGSessionStore{pool: pool}
}

func (s *PGSessionStore) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *PGSessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		Status:    SessionActive,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}

	_, err = s.conn(ctx).Exec(ctx, `
		INSERT INTO user_session (id, user_id, token, status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.UserID, sess.Token, sess.Status, sess.ExpiresAt, sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return sess, nil
}

func (s *PGSessionStore) FindActive(ctx context.Context, token string) (*Session, error) {
	sess := &Session{}
	err := s.conn(ctx).QueryRow(ctx, `
		SELECT id, user_id, token, status, expires_at, created_at
		FROM user_session
		WHERE token = $1 AND status = $2 AND expires_at > NOW()`,
		token, SessionActive,
	).Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.Status, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return sess, nil
}

func (s *PGSessionStore) Expire(ctx context.Context, token string) error {
	_, err := s.conn(ctx).Exec(ctx,
		`UPDATE user_session SET status = $1 WHERE token = $2`,
		SessionExpired, token,
	)
	if err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}

func (s *PGSessionStore) ExpireAllForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.conn(ctx).Exec(ctx,
		`UPDATE user_session SET status = $1 WHERE user_id = $2 AND status = $3`,
		SessionExpired, userID, SessionActive,
	)
	if err != nil {
		return fmt.Errorf("expire user sessions: %w", err)
	}
	return nil
}

func (s *PGSessionStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.conn(ctx).Exec(ctx,
		`DELETE FROM user_session WHERE expires_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
