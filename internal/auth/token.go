package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
)

// TokenStore issues and resolves opaque bearer tokens. Keys carry no
// embedded claims; authentication is a single exact-match lookup.
type TokenStore struct {
	tokens repository.TokenRepository
}

// NewTokenStore builds a store over the token repository.
func NewTokenStore(tokens repository.TokenRepository) *TokenStore {
	return &TokenStore{tokens: tokens}
}

// IssueOrFetch returns the user's token, creating one with a random key on
// first login. Calling it again for the same user returns the same token.
func (s *TokenStore) IssueOrFetch(ctx context.Context, userID string) (*domain.Token, error) {
	candidate := &domain.Token{Key: uuid.NewString(), UserID: userID}
	if err := s.tokens.Insert(ctx, candidate); err != nil {
		return nil, err
	}
	// The insert is a no-op when a token already exists, so read back
	// whichever key won.
	return s.tokens.GetByUser(ctx, userID)
}

// Resolve maps a raw token key to its owning user. Tokens never expire and
// are never rotated; an unknown key is the only failure mode.
func (s *TokenStore) Resolve(ctx context.Context, key string) (*domain.User, error) {
	return s.tokens.ResolveUser(ctx, key)
}
