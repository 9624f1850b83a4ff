package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the verified principal behind a bearer token.
type Identity struct {
	// UserID is the unique identifier of the authenticated user.
	UserID uuid.UUID

	// Email is the user's email address as recorded in the token.
	Email string

	// Role is the user's authorization role (e.g. "member", "admin").
	Role string
}

// TokenVerifier validates bearer tokens presented at the realtime
// authentication handshake and on protected HTTP routes.
type TokenVerifier interface {
	// Verify validates the provided token string and extracts the
	// identity it carries. Returns ErrInvalidToken, ErrExpiredToken, or
	// ErrTokenNotYetValid when validation fails.
	Verify(ctx context.Context, tokenString string) (*Identity, error)
}
