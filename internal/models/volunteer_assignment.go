package models

// VolunteerAssignment links a volunteer to a disaster. The composite primary key
// makes the (disaster, volunteer) pair unique at the store level.
type VolunteerAssignment struct {
	DisasterID  uint   `gorm:"primaryKey;autoIncrement:false"`
	VolunteerID uint   `gorm:"primaryKey;autoIncrement:false;index"`
	AssignedOn  string `gorm:"size:19;not null"`
}
