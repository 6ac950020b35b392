package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	SessionActive  = "Active"
	SessionExpired = "Expired"
)

// Session is an opaque bearer token issued at login and checked on every
// authenticated request.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error)
	FindActive(ctx context.Context, token string) (*Session, error)
	Expire(ctx context.Context, token string) error
	ExpireAllForUser(ctx context.Context, userID uuid.UUID) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Account is the authentication view of a staff member. Only accounts with
// an Active status may log in.
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Role         string
	BranchID     *uuid.UUID
	PasswordHash string
	Status       string
}

// CredentialStore resolves accounts for login and session validation.
// The staff repository provides the concrete implementation.
type CredentialStore interface {
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

// Identity converts an account into a request identity.
func (a *Account) Identity() *Identity {
	return &Identity{
		UserID:   a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Role:     a.Role,
		BranchID: a.BranchID,
	}
}

// NewToken generates a 32-byte random token encoded as hex.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
