package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"disaster-backend/internal/admin"
	"disaster-backend/internal/auth"
	"disaster-backend/internal/config"
	"disaster-backend/internal/database"
	"disaster-backend/internal/disaster"
	"disaster-backend/internal/help"
	"disaster-backend/internal/models"
	"disaster-backend/internal/profile"
	"disaster-backend/internal/volunteer"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions *auth.SessionManager
	Images   profile.ImageStore
}

// New builds the fiber app with every route and its role guard.
func New(d Deps) *fiber.App {
	cfg := d.Config
	db := d.DB

	app := fiber.New(fiber.Config{
		AppName:      "disaster-backend",
		Views:        web.NewEngine(),
		ViewsLayout:  "layout",
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(auth.Authenticate(d.Sessions, cfg.JWTSecret))

	if cfg.ImageStorage == config.StorageLocal {
		app.Static(profile.UploadsPrefix, cfg.ProfileImagePath)
	}

	app.Get("/healthz", HealthHandler(db))

	// Public
	app.Get("/", auth.HomeHandler())
	app.Get("/login", auth.LoginPageHandler())
	app.Post("/login", auth.LoginHandler(db, d.Sessions))
	app.Get("/logout", auth.LogoutHandler(d.Sessions))
	app.Get("/register", auth.RegisterPageHandler())
	app.Post("/register", auth.RegisterHandler(db))
	app.Post("/api/auth/token", auth.TokenHandler(db, cfg.JWTSecret, cfg.TokenTTL))

	app.Get("/dashboard", auth.RequireSession(), auth.DashboardHandler())

	adminOnly := auth.RequireRole(models.RoleAdmin)
	volunteerOnly := auth.RequireRole(models.RoleVolunteer)
	citizenOnly := auth.RequireRole(models.RoleCitizen)

	// Administrator
	app.Get("/admin_home", adminOnly, admin.HomeHandler(db))
	app.Get("/admin_home/profile", adminOnly, profile.AdminPageHandler(db, d.Images))
	app.Post("/admin_home/profile", adminOnly, profile.AdminUploadHandler(db, d.Images))
	app.Get("/citizens", adminOnly, admin.CitizensHandler(db))
	app.Get("/view_volunteers", adminOnly, volunteer.ListHandler(db))
	app.Post("/delete_volunteer/:id", adminOnly, volunteer.DeleteHandler(db))
	app.Get("/view_disasters", adminOnly, disaster.ListHandler(db))
	app.Get("/disaster/:id", adminOnly, disaster.DetailHandler(db))
	app.Post("/disaster/:id", adminOnly, disaster.AssignHandler(db))
	app.Get("/view_help_requests", adminOnly, help.ListHandler(db))

	// Volunteer
	app.Get("/volunteer_home", volunteerOnly, volunteer.HomeHandler(db))
	app.Get("/volunteer_dashboard", volunteerOnly, volunteer.TasksHandler(db))

	// Citizen
	app.Get("/report_disaster", citizenOnly, disaster.ReportPageHandler())
	app.Post("/report_disaster", citizenOnly, disaster.ReportHandler(db))
	app.Get("/request_help", citizenOnly, help.RequestPageHandler(db))
	app.Post("/request_help", citizenOnly, help.RequestHandler(db))
	app.Get("/citizen_profile", citizenOnly, profile.CitizenHandler(db))

	return app
}

// GET /healthz
func HealthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			slog.Error("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// ErrorHandler turns handler errors into responses. Missing identity sends
// browsers to the login page, a wrong role is a 403, and *fiber.Error keeps
// its status and message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	jsonReply := web.WantsJSON(c)

	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		if jsonReply {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}
		return c.Redirect("/login")
	case errors.Is(err, auth.ErrForbidden):
		if jsonReply {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Status(fiber.StatusForbidden).SendString("Access denied")
	}

	var e *fiber.Error
	if errors.As(err, &e) {
		if jsonReply {
			return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
		}
		return c.Status(e.Code).SendString(e.Message)
	}

	slog.Error("unexpected error", "error", err, "method", c.Method(), "path", c.Path())
	if jsonReply {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
}
