package auth

import (
	"context"

	"github.com/google/uuid"
)

// TokenPair carries a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenService abstracts token creation and refresh-token verification
// (e.g., JWT). It allows use cases to stay framework-agnostic.
type TokenService interface {
	GeneratePair(ctx context.Context, user User) (TokenPair, error)
	// ParseRefresh validates a refresh token and returns the subject user id.
	// Access tokens must not be accepted here.
	ParseRefresh(ctx context.Context, token string) (uuid.UUID, error)
}
