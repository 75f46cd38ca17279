package volunteer

import (
	"errors"
	"log/slog"
	"strconv"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/disaster"
	"disaster-backend/internal/models"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /view_volunteers?search=&sort_by=&order=
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := ParseListQuery(c.Query("search"), c.Query("sort_by"), c.Query("order"))

		volunteers, err := List(c.UserContext(), db, q)
		if err != nil {
			slog.Error("volunteer list failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Volunteers could not be listed")
		}

		return web.Render(c, "view_volunteers", fiber.Map{
			"volunteers": volunteers,
			"search":     q.Search,
			"sort_by":    q.SortBy,
			"order":      q.Order,
		})
	}
}

// POST /delete_volunteer/:id
func DeleteHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Volunteer not found")
		}

		deleted, err := Delete(c.UserContext(), db, uint(userID))
		if err != nil {
			slog.Error("volunteer delete failed", "error", err, "user_id", userID)
			return fiber.NewError(fiber.StatusInternalServerError, "Volunteer could not be deleted")
		}
		if deleted {
			slog.Info("volunteer deleted", "user_id", userID)
		}

		return c.Redirect("/view_volunteers")
	}
}

// GET /volunteer_home
func HomeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			return auth.ErrUnauthorized
		}

		name := "Volunteer"
		var user models.User
		err := db.WithContext(c.UserContext()).Select("name").First(&user, "user_id = ?", id.UserID).Error
		switch {
		case err == nil:
			name = user.Name
		case !errors.Is(err, gorm.ErrRecordNotFound):
			slog.Error("volunteer lookup failed", "error", err, "user_id", id.UserID)
			return fiber.NewError(fiber.StatusInternalServerError, "Volunteer could not be loaded")
		}

		return web.Render(c, "volunteer_dashboard", fiber.Map{"name": name})
	}
}

// GET /volunteer_dashboard
func TasksHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			return auth.ErrUnauthorized
		}

		tasks, err := Tasks(c.UserContext(), db, id.UserID)
		if err != nil {
			slog.Error("volunteer task list failed", "error", err, "user_id", id.UserID)
			return fiber.NewError(fiber.StatusInternalServerError, "Tasks could not be listed")
		}

		res := make([]disaster.Response, 0, len(tasks))
		for _, d := range tasks {
			res = append(res, disaster.NewResponse(d))
		}

		return web.Render(c, "volunteer_tasks", fiber.Map{"disasters": res})
	}
}
