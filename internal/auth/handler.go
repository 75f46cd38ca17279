package auth

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"disaster-backend/internal/models"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// GET /
func HomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentIdentity(c); ok {
			return c.Redirect("/dashboard")
		}
		return web.Render(c, "home", nil)
	}
}

// GET /login
func LoginPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return web.Render(c, "login", nil)
	}
}

// POST /login
func LoginHandler(db *gorm.DB, sessions *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		user, err := VerifyCredentials(c.UserContext(), db, body.Email, body.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			return web.Render(c, "login", fiber.Map{
				"error": "Invalid credentials",
				"email": body.Email,
			})
		}
		if err != nil {
			slog.Error("login lookup failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Login failed")
		}

		if err := sessions.Begin(c, user); err != nil {
			slog.Error("session start failed", "error", err, "user_id", user.ID)
			return fiber.NewError(fiber.StatusInternalServerError, "Login failed")
		}

		return c.Redirect("/dashboard")
	}
}

// GET /logout
func LogoutHandler(sessions *SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := sessions.End(c); err != nil {
			slog.Warn("session destroy failed", "error", err)
		}
		return c.Redirect("/")
	}
}

// GET /register
func RegisterPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return web.Render(c, "register", nil)
	}
}

// POST /register
func RegisterHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = NormalizeEmail(body.Email)

		if body.Name == "" || body.Email == "" || body.Password == "" || body.Role == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email, password and role are required")
		}

		if !models.Fits(body.Name, models.MaxNameLength) || !models.Fits(body.Email, models.MaxEmailLength) {
			return fiber.NewError(fiber.StatusBadRequest, "Name and email must be at most 100 characters")
		}
		if len(body.Password) > MaxPasswordBytes {
			return fiber.NewError(fiber.StatusBadRequest, "Password must be at most 72 bytes")
		}

		role, ok := models.ParseRole(strings.TrimSpace(body.Role))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown role")
		}

		user, err := CreateUser(c.UserContext(), db, body.Name, body.Email, body.Password, role)
		if errors.Is(err, ErrEmailTaken) {
			return fiber.NewError(fiber.StatusConflict, "Email already exists. Please login.")
		}
		if err != nil {
			slog.Error("registration failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Registration failed")
		}

		slog.Info("user registered", "user_id", user.ID, "role", user.Role)
		return c.Redirect("/login")
	}
}

// GET /dashboard
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return ErrUnauthorized
		}

		switch id.Role {
		case models.RoleAdmin:
			return c.Redirect("/admin_home")
		case models.RoleVolunteer:
			return c.Redirect("/volunteer_home")
		case models.RoleCitizen:
			return web.Render(c, "citizen_dashboard", nil)
		default:
			return c.SendString("Unknown role")
		}
	}
}

// POST /api/auth/token
func TokenHandler(db *gorm.DB, secret string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		user, err := VerifyCredentials(c.UserContext(), db, body.Email, body.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")
		}
		if err != nil {
			slog.Error("token login lookup failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be issued")
		}

		token, err := GenerateToken(secret, ttl, user)
		if err != nil {
			slog.Error("token signing failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Token could not be issued")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	}
}
