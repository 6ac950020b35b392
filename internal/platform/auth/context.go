package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "auth_identity"

// Identity describes the authenticated staff member attached to a request.
type Identity struct {
	UserID   uuid.UUID
	Name     string
	Email    string
	Role     string
	BranchID *uuid.UUID
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached to the context, or nil
// for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// UserIDFromContext returns the authenticated user's ID, or uuid.Nil for
// anonymous requests.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return uuid.Nil
}

// RoleFromContext returns the authenticated user's role, or "" for anonymous
// requests.
func RoleFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Role
	}
	return ""
}
