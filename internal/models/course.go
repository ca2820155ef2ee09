package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Duration    string    `gorm:"type:varchar(50);not null" json:"duration"`
	Level       string    `gorm:"type:varchar(50);not null" json:"level"`
	Image       string    `gorm:"type:text;not null" json:"image"`
	VideoURL    string    `gorm:"type:text;not null" json:"videoUrl"`
	IsPremium   bool      `gorm:"not null;index" json:"isPremium"`
	Price       *string   `gorm:"type:varchar(20)" json:"price"`
	Rating      *int      `json:"rating"`
	ReviewCount *int      `json:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type InsertCourse struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Duration    string  `json:"duration" validate:"required"`
	Level       string  `json:"level" validate:"required"`
	Image       string  `json:"image" validate:"required,url"`
	VideoURL    string  `json:"videoUrl" validate:"required,url"`
	IsPremium   bool    `json:"isPremium"`
	Price       *string `json:"price" validate:"omitempty,max=20"`
	Rating      *int    `json:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewCount *int    `json:"reviewCount" validate:"omitempty,gte=0"`
}

func (in *InsertCourse) ToCourse() *Course {
	return &Course{
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		Level:       in.Level,
		Image:       in.Image,
		VideoURL:    in.VideoURL,
		IsPremium:   in.IsPremium,
		Price:       in.Price,
		Rating:      in.Rating,
		ReviewCount: in.ReviewCount,
	}
}

var courseRules = []fieldRule{
	{name: "title", kind: kindString, required: true},
	{name: "description", kind: kindString, required: true},
	{name: "duration", kind: kindString, required: true},
	{name: "level", kind: kindString, required: true},
	{name: "image", kind: kindString, required: true},
	{name: "videoUrl", kind: kindString, required: true},
	{name: "isPremium", kind: kindBool},
	{name: "price", kind: kindString},
	{name: "rating", kind: kindInteger},
	{name: "reviewCount", kind: kindInteger},
}

// ParseInsertCourse validates a course payload. Price, rating and review
// count are only accepted on premium courses.
func ParseInsertCourse(input map[string]any) (*InsertCourse, error) {
	var in InsertCourse
	premiumOnly := func() []FieldError {
		if in.IsPremium {
			return nil
		}
		var errs []FieldError
		if in.Price != nil {
			errs = append(errs, FieldError{Field: "price", Message: "is only allowed on premium courses"})
		}
		if in.Rating != nil {
			errs = append(errs, FieldError{Field: "rating", Message: "is only allowed on premium courses"})
		}
		if in.ReviewCount != nil {
			errs = append(errs, FieldError{Field: "reviewCount", Message: "is only allowed on premium courses"})
		}
		return errs
	}
	if err := parse(input, courseRules, &in, premiumOnly); err != nil {
		return nil, err
	}
	return &in, nil
}
