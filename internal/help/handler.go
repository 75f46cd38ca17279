package help

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/models"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateRequest struct {
	DisasterID  string `json:"disaster_id" form:"disaster_id"`
	HelpType    string `json:"help_type" form:"help_type"`
	Location    string `json:"location" form:"location"`
	ContactInfo string `json:"contact_info" form:"contact_info"`
}

type DisasterChoice struct {
	ID       uint   `gorm:"column:disaster_id" json:"disaster_id"`
	Type     string `gorm:"column:type" json:"type"`
	Location string `gorm:"column:location" json:"location"`
	DateTime string `gorm:"column:date_time" json:"date_time"`
}

type ListItem struct {
	ID               uint   `gorm:"column:request_id" json:"request_id"`
	HelpType         string `gorm:"column:help_type" json:"help_type"`
	Location         string `gorm:"column:location" json:"location"`
	ContactInfo      string `gorm:"column:contact_info" json:"contact_info"`
	UserID           uint   `gorm:"column:user_id" json:"user_id"`
	RequesterName    string `gorm:"column:requester_name" json:"requester_name"`
	RequesterEmail   string `gorm:"column:requester_email" json:"requester_email"`
	DisasterID       uint   `gorm:"column:disaster_id" json:"disaster_id"`
	DisasterType     string `gorm:"column:disaster_type" json:"disaster_type"`
	DisasterLocation string `gorm:"column:disaster_location" json:"disaster_location"`
}

func disasterChoices(ctx context.Context, db *gorm.DB) ([]DisasterChoice, error) {
	choices := []DisasterChoice{}
	err := db.WithContext(ctx).Model(&models.Disaster{}).
		Select("disaster_id, type, location, date_time").
		Order("date_time DESC").
		Scan(&choices).Error
	return choices, err
}

// List joins every help request to its requester and disaster, newest first.
// Requests whose user or disaster is gone drop out of the result.
func List(ctx context.Context, db *gorm.DB) ([]ListItem, error) {
	items := []ListItem{}
	err := db.WithContext(ctx).
		Table("help_requests AS hr").
		Select(`hr.request_id, hr.help_type, hr.location, hr.contact_info,
			u.user_id, u.name AS requester_name, u.email AS requester_email,
			d.disaster_id, d.type AS disaster_type, d.location AS disaster_location`).
		Joins("JOIN users u ON u.user_id = hr.user_id").
		Joins("JOIN disasters d ON d.disaster_id = hr.disaster_id").
		Order("hr.request_id DESC").
		Scan(&items).Error
	return items, err
}

// GET /request_help
func RequestPageHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		choices, err := disasterChoices(c.UserContext(), db)
		if err != nil {
			slog.Error("disaster choices failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Disasters could not be listed")
		}
		return web.Render(c, "request_help", fiber.Map{"disasters": choices})
	}
}

// POST /request_help
func RequestHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			return auth.ErrUnauthorized
		}

		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.DisasterID = strings.TrimSpace(body.DisasterID)
		body.HelpType = strings.TrimSpace(body.HelpType)
		body.Location = strings.TrimSpace(body.Location)
		body.ContactInfo = strings.TrimSpace(body.ContactInfo)

		if body.DisasterID == "" || body.HelpType == "" || body.Location == "" || body.ContactInfo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
		}

		if !models.Fits(body.HelpType, models.MaxTypeLength) {
			return fiber.NewError(fiber.StatusBadRequest, "Help type must be at most 50 characters")
		}
		if !models.Fits(body.Location, models.MaxLocationLength) || !models.Fits(body.ContactInfo, models.MaxContactInfoLength) {
			return fiber.NewError(fiber.StatusBadRequest, "Location and contact info must be at most 255 characters")
		}

		disasterID, err := strconv.ParseUint(body.DisasterID, 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid disaster id")
		}

		var exists int64
		if err := db.WithContext(c.UserContext()).Model(&models.Disaster{}).
			Where("disaster_id = ?", disasterID).
			Count(&exists).Error; err != nil {
			slog.Error("disaster lookup failed", "error", err, "disaster_id", disasterID)
			return fiber.NewError(fiber.StatusInternalServerError, "Error submitting help request: "+err.Error())
		}
		if exists == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid disaster id")
		}

		req := models.HelpRequest{
			UserID:      id.UserID,
			DisasterID:  uint(disasterID),
			HelpType:    body.HelpType,
			Location:    body.Location,
			ContactInfo: body.ContactInfo,
		}

		// the store error is shown to the caller as is
		if err := db.WithContext(c.UserContext()).Create(&req).Error; err != nil {
			slog.Error("help request insert failed", "error", err, "user_id", id.UserID)
			return fiber.NewError(fiber.StatusInternalServerError, "Error submitting help request: "+err.Error())
		}

		slog.Info("help requested", "request_id", req.ID, "disaster_id", req.DisasterID, "user_id", id.UserID)
		return c.Redirect("/dashboard")
	}
}

// GET /view_help_requests
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := List(c.UserContext(), db)
		if err != nil {
			slog.Error("help request list failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Help requests could not be listed")
		}
		return web.Render(c, "view_help_requests", fiber.Map{"help_requests": items})
	}
}
