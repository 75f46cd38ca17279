package models

import "time"

type HelpRequest struct {
	ID          uint   `gorm:"primaryKey;column:request_id"`
	UserID      uint   `gorm:"not null;index"`
	DisasterID  uint   `gorm:"not null;index"`
	HelpType    string `gorm:"size:50;not null"`
	Location    string `gorm:"size:255;not null"`
	ContactInfo string `gorm:"size:255;not null"`
	CreatedAt   time.Time
}
