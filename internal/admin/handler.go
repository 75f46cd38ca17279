package admin

import (
	"errors"
	"log/slog"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/models"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CitizenResponse struct {
	ID        uint   `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// GET /admin_home
func HomeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			return auth.ErrUnauthorized
		}

		name := "Administrator"
		var user models.User
		err := db.WithContext(c.UserContext()).Select("name").First(&user, "user_id = ?", id.UserID).Error
		switch {
		case err == nil:
			name = user.Name
		case !errors.Is(err, gorm.ErrRecordNotFound):
			slog.Error("admin lookup failed", "error", err, "user_id", id.UserID)
			return fiber.NewError(fiber.StatusInternalServerError, "Administrator could not be loaded")
		}

		return web.Render(c, "admin_dashboard", fiber.Map{"name": name})
	}
}

// GET /citizens
func CitizensHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := db.WithContext(c.UserContext()).
			Where("role = ?", models.RoleCitizen).
			Order("user_id ASC").
			Find(&users).Error; err != nil {
			slog.Error("citizen list failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Citizens could not be listed")
		}

		res := make([]CitizenResponse, 0, len(users))
		for _, u := range users {
			res = append(res, CitizenResponse{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				CreatedAt: u.CreatedAt.Format(models.TimestampLayout),
			})
		}

		return web.Render(c, "citizens", fiber.Map{"citizens": res})
	}
}
