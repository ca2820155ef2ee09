package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Testimonial struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Position    string    `gorm:"type:varchar(100);not null" json:"position"`
	Avatar      string    `gorm:"type:text;not null" json:"avatar"`
	Rating      float64   `gorm:"not null" json:"rating"`
	Comment     string    `gorm:"type:text;not null" json:"comment"`
	Achievement *string   `gorm:"type:text" json:"achievement"`
	IsVisible   bool      `gorm:"not null;index" json:"isVisible"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type InsertTestimonial struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Position    string   `json:"position" validate:"required,max=100"`
	Avatar      string   `json:"avatar" validate:"required,url"`
	Rating      *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	Comment     string   `json:"comment" validate:"required"`
	Achievement *string  `json:"achievement"`
	IsVisible   *bool    `json:"isVisible"`
}

// ToTestimonial builds the record to persist. Testimonials are visible
// unless the caller says otherwise.
func (in *InsertTestimonial) ToTestimonial() *Testimonial {
	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}
	var rating float64
	if in.Rating != nil {
		rating = *in.Rating
	}
	return &Testimonial{
		Name:        in.Name,
		Position:    in.Position,
		Avatar:      in.Avatar,
		Rating:      rating,
		Comment:     in.Comment,
		Achievement: in.Achievement,
		IsVisible:   visible,
	}
}

var testimonialRules = []fieldRule{
	{name: "name", kind: kindString, required: true},
	{name: "position", kind: kindString, required: true},
	{name: "avatar", kind: kindString, required: true},
	{name: "rating", kind: kindNumber, required: true},
	{name: "comment", kind: kindString, required: true},
	{name: "achievement", kind: kindString},
	{name: "isVisible", kind: kindBool},
}

func ParseInsertTestimonial(input map[string]any) (*InsertTestimonial, error) {
	var in InsertTestimonial
	if err := parse(input, testimonialRules, &in, nil); err != nil {
		return nil, err
	}
	return &in, nil
}
