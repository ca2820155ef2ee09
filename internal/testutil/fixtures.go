package testutil

import (
	"github.com/tradingzen/backend/internal/models"
)

func Ptr[T any](v T) *T {
	return &v
}

// NewInsertUser returns a valid registration for the given username. The
// email is derived from it so fixtures never collide.
func NewInsertUser(username string) *models.InsertUser {
	return &models.InsertUser{
		Username: username,
		Password: "secret123",
		Email:    username + "@example.com",
	}
}

// FreeCourse returns a valid free course.
func FreeCourse(title string) *models.InsertCourse {
	return &models.InsertCourse{
		Title:       title,
		Description: "Fundamentos del trading para principiantes",
		Duration:    "2h 30m",
		Level:       "Principiante",
		Image:       "https://images.example.com/" + "course.jpg",
		VideoURL:    "https://www.youtube.com/embed/abc123",
	}
}

// PremiumCourse returns a valid premium course with price and rating.
func PremiumCourse(title string) *models.InsertCourse {
	c := FreeCourse(title)
	c.IsPremium = true
	c.Level = "Avanzado"
	c.Price = Ptr("€297")
	c.Rating = Ptr(5)
	c.ReviewCount = Ptr(120)
	return c
}

// NewTestimonial returns a valid testimonial; visible is nil so the default
// applies.
func NewTestimonial(name string, rating float64) *models.InsertTestimonial {
	return &models.InsertTestimonial{
		Name:     name,
		Position: "Trader",
		Avatar:   "https://images.example.com/avatar.jpg",
		Rating:   Ptr(rating),
		Comment:  "Excelente comunidad",
	}
}

// UserPayload is a registration body as the HTTP layer receives it.
func UserPayload(username string) map[string]any {
	return map[string]any{
		"username": username,
		"password": "secret123",
		"email":    username + "@example.com",
	}
}

func CoursePayload(title string, premium bool) map[string]any {
	body := map[string]any{
		"title":       title,
		"description": "Fundamentos del trading",
		"duration":    "2h",
		"level":       "Principiante",
		"image":       "https://images.example.com/course.jpg",
		"videoUrl":    "https://www.youtube.com/embed/abc123",
		"isPremium":   premium,
	}
	if premium {
		body["price"] = "€197"
		body["rating"] = 5
		body["reviewCount"] = 10
	}
	return body
}
