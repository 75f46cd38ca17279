package auth

import (
	"time"

	"disaster-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	SessionCookieName = "disaster_session"

	sessionUserIDKey = "user_id"
	sessionRoleKey   = "role"
)

// SessionManager keeps the logged-in identity server side, keyed by an opaque cookie.
type SessionManager struct {
	store *session.Store
}

// NewSessionManager builds the session store. A nil storage keeps sessions in memory.
func NewSessionManager(ttl time.Duration, secure bool, storage fiber.Storage) *SessionManager {
	return &SessionManager{
		store: session.New(session.Config{
			Expiration:     ttl,
			Storage:        storage,
			KeyLookup:      "cookie:" + SessionCookieName,
			CookieHTTPOnly: true,
			CookieSecure:   secure,
			CookieSameSite: "Lax",
		}),
	}
}

// Begin starts a fresh session for user, discarding any previous session id.
func (m *SessionManager) Begin(c *fiber.Ctx, user *models.User) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}

	sess.Set(sessionUserIDKey, user.ID)
	sess.Set(sessionRoleKey, string(user.Role))
	return sess.Save()
}

// Identity returns the identity bound to the request's session, if any.
func (m *SessionManager) Identity(c *fiber.Ctx) (Identity, bool, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return Identity{}, false, err
	}
	if sess.Fresh() {
		return Identity{}, false, nil
	}

	userID, ok := sess.Get(sessionUserIDKey).(uint)
	if !ok {
		return Identity{}, false, nil
	}
	role, ok := sess.Get(sessionRoleKey).(string)
	if !ok {
		return Identity{}, false, nil
	}

	return Identity{UserID: userID, Role: models.UserRole(role)}, true, nil
}

// End destroys the session unconditionally.
func (m *SessionManager) End(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
