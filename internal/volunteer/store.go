package volunteer

import (
	"context"
	"strings"

	"disaster-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortKey is a column the volunteer listing may be ordered by.
type SortKey string

const (
	SortByID    SortKey = "user_id"
	SortByName  SortKey = "name"
	SortByEmail SortKey = "email"
)

// ParseSortKey maps anything outside the known columns to SortByID.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortByID, SortByName, SortByEmail:
		return k
	}
	return SortByID
}

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder is case-insensitive and falls back to Asc.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o
	}
	return Asc
}

type ListQuery struct {
	Search string
	SortBy SortKey
	Order  SortOrder
}

// ParseListQuery builds a ListQuery from raw request values.
func ParseListQuery(search, sortBy, order string) ListQuery {
	return ListQuery{
		Search: strings.TrimSpace(search),
		SortBy: ParseSortKey(sortBy),
		Order:  ParseSortOrder(order),
	}
}

type Listing struct {
	ID          uint   `gorm:"column:user_id" json:"user_id"`
	Name        string `gorm:"column:name" json:"name"`
	Email       string `gorm:"column:email" json:"email"`
	IsAvailable bool   `gorm:"-" json:"is_available"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns the volunteers matching q. A volunteer is available only while
// no assignment row references them, whatever the disaster.
func List(ctx context.Context, db *gorm.DB, q ListQuery) ([]Listing, error) {
	tx := db.WithContext(ctx)

	query := tx.Model(&models.User{}).
		Select("user_id, name, email").
		Where("role = ?", models.RoleVolunteer)

	if q.Search != "" {
		term := "%" + strings.ToLower(likeEscaper.Replace(q.Search)) + "%"
		query = query.Where(
			`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR CAST(user_id AS TEXT) LIKE ? ESCAPE '\')`,
			term, term, term,
		)
	}

	query = query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: string(ParseSortKey(string(q.SortBy)))},
		Desc:   q.Order == Desc,
	})

	volunteers := []Listing{}
	if err := query.Scan(&volunteers).Error; err != nil {
		return nil, err
	}

	var assignedIDs []uint
	if err := tx.Model(&models.VolunteerAssignment{}).
		Distinct("volunteer_id").
		Pluck("volunteer_id", &assignedIDs).Error; err != nil {
		return nil, err
	}

	assigned := make(map[uint]struct{}, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = struct{}{}
	}
	for i := range volunteers {
		_, busy := assigned[volunteers[i].ID]
		volunteers[i].IsAvailable = !busy
	}

	return volunteers, nil
}

// Delete removes userID only when that user is a volunteer. Their assignment
// rows are left in place. It reports whether a row was removed.
func Delete(ctx context.Context, db *gorm.DB, userID uint) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, models.RoleVolunteer).
		Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Tasks lists the disasters volunteerID is assigned to, newest first.
func Tasks(ctx context.Context, db *gorm.DB, volunteerID uint) ([]models.Disaster, error) {
	disasters := []models.Disaster{}
	err := db.WithContext(ctx).
		Joins("JOIN volunteer_assignments va ON va.disaster_id = disasters.disaster_id").
		Where("va.volunteer_id = ?", volunteerID).
		Order("disasters.date_time DESC").
		Find(&disasters).Error
	return disasters, err
}
