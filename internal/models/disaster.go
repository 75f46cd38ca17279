package models

import "time"

// TimestampLayout is the text form of every stored date/time column.
const TimestampLayout = "2006-01-02 15:04:05"

type Disaster struct {
	ID          uint   `gorm:"primaryKey;column:disaster_id"`
	Type        string `gorm:"size:50;not null"`
	Location    string `gorm:"size:255;not null"`
	DateTime    string `gorm:"column:date_time;size:19;not null;index"`
	Description string `gorm:"type:text;not null"`
	ReportedBy  *uint  `gorm:"column:reported_by;index"` // reporter may be deleted later
	CreatedAt   time.Time
}
