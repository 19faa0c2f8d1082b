package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/auth"
	"github.com/spec-kit/backoffice-suite/internal/domain"
)

type stubUserRepo struct {
	byID       map[string]*domain.User
	byUsername map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
	}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = "user-" + user.Username
	clone := *user
	r.byID[user.ID] = &clone
	r.byUsername[user.Username] = &clone
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.byUsername[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

// stubTokenRepo mirrors the insert-once semantics of the auth_tokens table.
type stubTokenRepo struct {
	byUser map[string]*domain.Token
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byUser: make(map[string]*domain.Token)}
}

func (r *stubTokenRepo) Insert(_ context.Context, token *domain.Token) error {
	if _, exists := r.byUser[token.UserID]; exists {
		return nil
	}
	clone := *token
	r.byUser[token.UserID] = &clone
	return nil
}

func (r *stubTokenRepo) GetByUser(_ context.Context, userID string) (*domain.Token, error) {
	token, ok := r.byUser[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *token
	return &clone, nil
}

func (r *stubTokenRepo) ResolveUser(_ context.Context, key string) (*domain.User, error) {
	for _, token := range r.byUser {
		if token.Key == key {
			return &domain.User{ID: token.UserID}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newAuthFixture() (*AuthService, *stubUserRepo, *stubTokenRepo) {
	users := newStubUserRepo()
	tokens := newStubTokenRepo()
	svc := NewAuthService(users, auth.NewTokenStore(tokens), 4)
	return svc, users, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.IsStaff {
		t.Fatal("registration must not grant staff")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Fatal("password must be hashed")
	}

	token, err := svc.Login(ctx, "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token.Key == "" {
		t.Fatal("login must return a token key")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "correct horse battery"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := svc.Register(ctx, "alice", "another password!")
	expectCode(t, err, "CONFLICT")
}

func TestLoginIsTokenIdempotent(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "correct horse battery"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	first, err := svc.Login(ctx, "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, err := svc.Login(ctx, "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if first.Key != second.Key {
		t.Fatalf("logins returned different tokens: %s vs %s", first.Key, second.Key)
	}
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "correct horse battery"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Login(ctx, "alice", "wrong")
	expectCode(t, err, "UNAUTHORIZED")

	_, err = svc.Login(ctx, "nobody", "whatever")
	expectCode(t, err, "UNAUTHORIZED")
}
