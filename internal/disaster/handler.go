package disaster

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/models"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReportRequest struct {
	Type        string `json:"type" form:"type"`
	Location    string `json:"location" form:"location"`
	DateTime    string `json:"date_time" form:"date_time"`
	Description string `json:"description" form:"description"`
}

type AssignRequest struct {
	VolunteerID string `json:"volunteer_id" form:"volunteer_id"`
}

type Response struct {
	ID          uint   `json:"disaster_id"`
	Type        string `json:"type"`
	Location    string `json:"location"`
	DateTime    string `json:"date_time"`
	Description string `json:"description"`
	ReportedBy  *uint  `json:"reported_by"`
}

func NewResponse(d models.Disaster) Response {
	return Response{
		ID:          d.ID,
		Type:        d.Type,
		Location:    d.Location,
		DateTime:    d.DateTime,
		Description: d.Description,
		ReportedBy:  d.ReportedBy,
	}
}

// GET /report_disaster
func ReportPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return web.Render(c, "report_disaster", nil)
	}
}

// POST /report_disaster
func ReportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			return auth.ErrUnauthorized
		}

		var body ReportRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Type = strings.TrimSpace(body.Type)
		body.Location = strings.TrimSpace(body.Location)
		body.Description = strings.TrimSpace(body.Description)

		if body.Type == "" || body.Location == "" || body.DateTime == "" || body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Type, location, date/time and description are required")
		}

		if !models.Fits(body.Type, models.MaxTypeLength) {
			return fiber.NewError(fiber.StatusBadRequest, "Type must be at most 50 characters")
		}
		if !models.Fits(body.Location, models.MaxLocationLength) {
			return fiber.NewError(fiber.StatusBadRequest, "Location must be at most 255 characters")
		}

		dateTime, err := NormalizeDateTime(body.DateTime)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date/time must look like 2024-01-01 10:00:00 or 2024-01-01T10:00")
		}

		reporter := id.UserID
		d := models.Disaster{
			Type:        body.Type,
			Location:    body.Location,
			DateTime:    dateTime,
			Description: body.Description,
			ReportedBy:  &reporter,
		}

		if err := db.WithContext(c.UserContext()).Create(&d).Error; err != nil {
			slog.Error("disaster report insert failed", "error", err, "user_id", reporter)
			return fiber.NewError(fiber.StatusInternalServerError, "Disaster could not be reported")
		}

		slog.Info("disaster reported", "disaster_id", d.ID, "type", d.Type, "user_id", reporter)
		return c.Redirect("/dashboard")
	}
}

// GET /view_disasters
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := List(c.UserContext(), db)
		if err != nil {
			slog.Error("disaster list failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Disasters could not be listed")
		}
		return web.Render(c, "view_disasters", fiber.Map{"disasters": items})
	}
}

// GET /disaster/:id
func DetailHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		disasterID, ok := parseID(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Disaster not found")
		}

		detail, err := LoadDetail(c.UserContext(), db, disasterID)
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Disaster not found")
		}
		if err != nil {
			slog.Error("disaster detail failed", "error", err, "disaster_id", disasterID)
			return fiber.NewError(fiber.StatusInternalServerError, "Disaster could not be loaded")
		}

		return web.Render(c, "disaster_detail", fiber.Map{
			"disaster":            NewResponse(detail.Disaster),
			"volunteers":          detail.Volunteers,
			"assigned_volunteers": detail.AssignedVolunteers,
		})
	}
}

// POST /disaster/:id
func AssignHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		disasterID, ok := parseID(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "Disaster not found")
		}

		var exists int64
		if err := db.WithContext(c.UserContext()).Model(&models.Disaster{}).
			Where("disaster_id = ?", disasterID).
			Count(&exists).Error; err != nil {
			slog.Error("disaster lookup failed", "error", err, "disaster_id", disasterID)
			return fiber.NewError(fiber.StatusInternalServerError, "Disaster could not be loaded")
		}
		if exists == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Disaster not found")
		}

		var body AssignRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		volunteerID, ok := parseID(body.VolunteerID)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "A volunteer must be selected")
		}

		err := Assign(c.UserContext(), db, disasterID, volunteerID, time.Now())
		switch {
		case errors.Is(err, ErrAlreadyAssigned):
			return fiber.NewError(fiber.StatusConflict, "Volunteer already assigned to this disaster.")
		case errors.Is(err, ErrNotVolunteer):
			return fiber.NewError(fiber.StatusBadRequest, "Selected user is not a volunteer")
		case err != nil:
			slog.Error("volunteer assignment failed", "error", err, "disaster_id", disasterID, "volunteer_id", volunteerID)
			return fiber.NewError(fiber.StatusInternalServerError, "Volunteer could not be assigned")
		}

		slog.Info("volunteer assigned", "disaster_id", disasterID, "volunteer_id", volunteerID)
		return c.Redirect(fmt.Sprintf("/disaster/%d", disasterID))
	}
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
