package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"disaster-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts a new account. The unique email index decides conflicts,
// reported as ErrEmailTaken.
func CreateUser(ctx context.Context, db *gorm.DB, name, email, password string, role models.UserRole) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	}

	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEmailTaken
	}
	return &user, nil
}

// VerifyCredentials looks the user up by email and checks the password hash.
func VerifyCredentials(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is already registered.
func EnsureAdmin(ctx context.Context, db *gorm.DB, name, email, password string) error {
	user, err := CreateUser(ctx, db, name, email, password, models.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("bootstrap administrator created", "user_id", user.ID, "email", user.Email)
	return nil
}
