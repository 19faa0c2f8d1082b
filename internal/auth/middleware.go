package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads the calling user.
type AuthMiddleware struct {
	store *TokenStore
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(store *TokenStore) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// Handle enforces authentication for protected routes. Missing, malformed
// and unknown tokens are rejected identically so callers cannot probe which
// case they hit.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := m.store.Resolve(c.Context(), parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// UserFromContext retrieves the authenticated user set by Handle.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
