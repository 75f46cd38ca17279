package auth

import (
	"errors"
	"log/slog"
	"slices"
	"strings"

	"disaster-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
)

var (
	// ErrUnauthorized means the request carries no valid identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the identity's role may not use the operation.
	ErrForbidden = errors.New("operation not permitted for this role")
)

type Identity struct {
	UserID uint
	Role   models.UserRole
}

// Authenticate resolves the caller from the session cookie, falling back to a
// bearer token. Anonymous requests pass through untouched.
func Authenticate(sessions *SessionManager, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := sessions.Identity(c)
		if err != nil {
			return err
		}
		if !ok {
			id, ok = bearerIdentity(c, secret)
		}
		if ok {
			c.Locals(CtxUserIDKey, id.UserID)
			c.Locals(CtxUserRoleKey, id.Role)
		}
		return c.Next()
	}
}

func bearerIdentity(c *fiber.Ctx, secret string) (Identity, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return Identity{}, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Identity{}, false
	}

	claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
	if err != nil {
		slog.Debug("rejected bearer token", "error", err, "path", c.Path())
		return Identity{}, false
	}
	return Identity{UserID: claims.UserID, Role: claims.Role}, true
}

// CurrentIdentity reads the identity stored by Authenticate.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	userID, ok := c.Locals(CtxUserIDKey).(uint)
	if !ok {
		return Identity{}, false
	}
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return Identity{}, false
	}
	return Identity{UserID: userID, Role: role}, true
}

func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentIdentity(c); !ok {
			return ErrUnauthorized
		}
		return c.Next()
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return ErrUnauthorized
		}
		if slices.Contains(allowedRoles, id.Role) {
			return c.Next()
		}
		return ErrForbidden
	}
}
