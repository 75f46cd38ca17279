package models

import "time"

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleVolunteer UserRole = "volunteer"
	RoleCitizen   UserRole = "citizen"
)

// ParseRole accepts only the three known roles.
func ParseRole(s string) (UserRole, bool) {
	switch r := UserRole(s); r {
	case RoleAdmin, RoleVolunteer, RoleCitizen:
		return r, true
	}
	return "", false
}

type User struct {
	ID              uint     `gorm:"primaryKey;column:user_id"`
	Name            string   `gorm:"size:100;not null"`
	Email           string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash    string   `gorm:"column:password;size:255;not null"`
	Role            UserRole `gorm:"size:20;not null;index"`
	ProfileImageKey string   `gorm:"size:255"` // object key of the admin profile picture, empty if none
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
