package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment links one user to one course. Both references are checked by
// the enrollment service before the record is written.
type Enrollment struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	CourseID       string    `gorm:"type:varchar(36);not null;index" json:"courseId"`
	EnrollmentDate time.Time `gorm:"not null" json:"enrollmentDate"`

	// Populated when listing a user's enrollments
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EnrollmentDate.IsZero() {
		e.EnrollmentDate = time.Now()
	}
	return nil
}

type InsertEnrollment struct {
	UserID   string `json:"userId" validate:"required"`
	CourseID string `json:"courseId" validate:"required"`
}

func (in *InsertEnrollment) ToEnrollment() *Enrollment {
	return &Enrollment{
		UserID:   in.UserID,
		CourseID: in.CourseID,
	}
}

var enrollmentRules = []fieldRule{
	{name: "userId", kind: kindString, required: true},
	{name: "courseId", kind: kindString, required: true},
}

func ParseInsertEnrollment(input map[string]any) (*InsertEnrollment, error) {
	var in InsertEnrollment
	if err := parse(input, enrollmentRules, &in, nil); err != nil {
		return nil, err
	}
	return &in, nil
}
