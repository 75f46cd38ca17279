package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"disaster-backend/internal/auth"
	"disaster-backend/internal/models"
	"disaster-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

type Response struct {
	ID       uint   `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"image_url,omitempty"`
}

func loadUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		return nil, auth.ErrUnauthorized
	}

	var user models.User
	err := db.WithContext(c.UserContext()).First(&user, "user_id = ?", id.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	if err != nil {
		slog.Error("profile lookup failed", "error", err, "user_id", id.UserID)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Profile could not be loaded")
	}
	return &user, nil
}

// GET /citizen_profile
func CitizenHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := loadUser(c, db)
		if err != nil {
			return err
		}
		return web.Render(c, "citizen_profile", fiber.Map{
			"user": Response{ID: user.ID, Name: user.Name, Email: user.Email},
		})
	}
}

// GET /admin_home/profile
func AdminPageHandler(db *gorm.DB, images ImageStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := loadUser(c, db)
		if err != nil {
			return err
		}

		res := Response{ID: user.ID, Name: user.Name, Email: user.Email}
		if user.ProfileImageKey != "" {
			url, err := images.URL(c.UserContext(), user.ProfileImageKey)
			if err != nil {
				slog.Warn("profile image url failed", "error", err, "key", user.ProfileImageKey)
			} else {
				res.ImageURL = url
			}
		}

		return web.Render(c, "admin_profile", fiber.Map{"user": res})
	}
}

// POST /admin_home/profile
func AdminUploadHandler(db *gorm.DB, images ImageStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := loadUser(c, db)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("profile_pic")
		if err != nil || fh.Filename == "" {
			return fiber.NewError(fiber.StatusBadRequest, "No file selected")
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedExtensions[ext] {
			return fiber.NewError(fiber.StatusBadRequest, "Allowed file types are png, jpg, jpeg, gif")
		}

		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Uploaded file could not be read")
		}
		defer f.Close()

		key := fmt.Sprintf("admins/%d/%s%s", user.ID, uuid.New(), ext)
		if err := images.Save(c.UserContext(), key, f, fh.Size, mime.TypeByExtension(ext)); err != nil {
			slog.Error("profile image save failed", "error", err, "user_id", user.ID)
			return fiber.NewError(fiber.StatusInternalServerError, "Image could not be saved")
		}

		if err := db.WithContext(c.UserContext()).Model(&models.User{}).
			Where("user_id = ?", user.ID).
			Update("profile_image_key", key).Error; err != nil {
			slog.Error("profile image key update failed", "error", err, "user_id", user.ID)
			if derr := images.Delete(c.UserContext(), key); derr != nil {
				slog.Warn("orphaned profile image", "error", derr, "key", key)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Image could not be saved")
		}

		if old := user.ProfileImageKey; old != "" {
			if err := images.Delete(c.UserContext(), old); err != nil {
				slog.Warn("old profile image delete failed", "error", err, "key", old)
			}
		}

		slog.Info("profile image updated", "user_id", user.ID, "key", key)
		return c.Redirect("/admin_home/profile")
	}
}
