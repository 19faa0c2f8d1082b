package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// TokenRepository persists opaque bearer tokens, one per user.
type TokenRepository interface {
	// Insert stores the token unless its owner already has one.
	Insert(ctx context.Context, token *domain.Token) error
	GetByUser(ctx context.Context, userID string) (*domain.Token, error)
	// ResolveUser maps a token key to its owner by exact match.
	ResolveUser(ctx context.Context, key string) (*domain.User, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository instantiates repository.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Insert(ctx context.Context, token *domain.Token) error {
	const query = `
        INSERT INTO auth_tokens (key, user_id)
        VALUES ($1,$2)
        ON CONFLICT (user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, token.Key, token.UserID)
	return err
}

func (r *tokenRepository) GetByUser(ctx context.Context, userID string) (*domain.Token, error) {
	const query = `
        SELECT key, user_id, created_at
        FROM auth_tokens WHERE user_id=$1`
	var token domain.Token
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&token.Key,
		&token.UserID,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) ResolveUser(ctx context.Context, key string) (*domain.User, error) {
	const query = `
        SELECT u.id, u.username, u.password_hash, u.is_staff, u.created_at
        FROM auth_tokens t
        JOIN users u ON u.id = t.user_id
        WHERE t.key=$1`
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, key).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsStaff,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
