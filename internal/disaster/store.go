package disaster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"disaster-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound        = errors.New("disaster not found")
	ErrAlreadyAssigned = errors.New("volunteer already assigned to this disaster")
	ErrNotVolunteer    = errors.New("user is not a volunteer")
)

// Accepted date/time inputs: stored form, HTML datetime-local, and datetime-local with seconds.
var dateTimeLayouts = []string{
	models.TimestampLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// NormalizeDateTime rewrites an accepted date/time input into the stored text form.
func NormalizeDateTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(models.TimestampLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognised date/time %q", s)
}

type ListItem struct {
	ID            uint    `gorm:"column:disaster_id" json:"disaster_id"`
	Type          string  `gorm:"column:type" json:"type"`
	Location      string  `gorm:"column:location" json:"location"`
	DateTime      string  `gorm:"column:date_time" json:"date_time"`
	Description   string  `gorm:"column:description" json:"description"`
	ReportedBy    *uint   `gorm:"column:reported_by" json:"reported_by"`
	ReporterName  *string `gorm:"column:reporter_name" json:"reporter_name"`
	ReporterEmail *string `gorm:"column:reporter_email" json:"reporter_email"`
}

// List returns every disaster, newest first, with the reporter when still present.
func List(ctx context.Context, db *gorm.DB) ([]ListItem, error) {
	items := []ListItem{}
	err := db.WithContext(ctx).
		Table("disasters AS d").
		Select("d.disaster_id, d.type, d.location, d.date_time, d.description, d.reported_by, u.name AS reporter_name, u.email AS reporter_email").
		Joins("LEFT JOIN users u ON u.user_id = d.reported_by").
		Order("d.date_time DESC").
		Scan(&items).Error
	return items, err
}

type VolunteerOption struct {
	ID    uint   `gorm:"column:user_id" json:"user_id"`
	Name  string `gorm:"column:name" json:"name"`
	Email string `gorm:"column:email" json:"email"`
}

type AssignedVolunteer struct {
	ID         uint   `gorm:"column:user_id" json:"user_id"`
	Name       string `gorm:"column:name" json:"name"`
	Email      string `gorm:"column:email" json:"email"`
	AssignedOn string `gorm:"column:assigned_on" json:"assigned_on"`
}

type Detail struct {
	Disaster           models.Disaster
	Volunteers         []VolunteerOption
	AssignedVolunteers []AssignedVolunteer
}

// LoadDetail fetches one disaster, every volunteer, and the volunteers assigned to it.
func LoadDetail(ctx context.Context, db *gorm.DB, disasterID uint) (*Detail, error) {
	tx := db.WithContext(ctx)

	var d models.Disaster
	err := tx.First(&d, "disaster_id = ?", disasterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	volunteers := []VolunteerOption{}
	if err := tx.Model(&models.User{}).
		Select("user_id, name, email").
		Where("role = ?", models.RoleVolunteer).
		Order("user_id ASC").
		Scan(&volunteers).Error; err != nil {
		return nil, err
	}

	assigned := []AssignedVolunteer{}
	if err := tx.Table("volunteer_assignments AS va").
		Select("u.user_id, u.name, u.email, va.assigned_on").
		Joins("JOIN users u ON u.user_id = va.volunteer_id").
		Where("va.disaster_id = ?", disasterID).
		Order("va.assigned_on ASC").
		Scan(&assigned).Error; err != nil {
		return nil, err
	}

	return &Detail{Disaster: d, Volunteers: volunteers, AssignedVolunteers: assigned}, nil
}

// Assign records that volunteerID works on disasterID. A second assignment of
// the same pair hits the composite key and is reported as ErrAlreadyAssigned.
func Assign(ctx context.Context, db *gorm.DB, disasterID, volunteerID uint, now time.Time) error {
	tx := db.WithContext(ctx)

	var volunteer models.User
	err := tx.Select("user_id", "role").First(&volunteer, "user_id = ?", volunteerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && volunteer.Role != models.RoleVolunteer) {
		return ErrNotVolunteer
	}
	if err != nil {
		return err
	}

	assignment := models.VolunteerAssignment{
		DisasterID:  disasterID,
		VolunteerID: volunteerID,
		AssignedOn:  now.Format(models.TimestampLayout),
	}

	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&assignment)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyAssigned
	}
	return nil
}
