package repository

import (
	"context"

	"github.com/tradingzen/backend/internal/models"
)

func (s *SQLStorage) GetTestimonial(ctx context.Context, id string) (*models.Testimonial, error) {
	id, err := sqlID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Testimonial](ctx, s.db, "get_testimonial", "id = ?", id)
}

func (s *SQLStorage) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	return findAll[models.Testimonial](ctx, s.db, "list_testimonials", "created_at")
}

func (s *SQLStorage) ListTestimonialsByVisibility(ctx context.Context, visible bool) ([]models.Testimonial, error) {
	return findAll[models.Testimonial](ctx, s.db, "list_testimonials_by_visibility", "created_at", "is_visible = ?", visible)
}

func (s *SQLStorage) CreateTestimonial(ctx context.Context, in *models.InsertTestimonial) (*models.Testimonial, error) {
	testimonial := in.ToTestimonial()
	if err := s.create(ctx, "create_testimonial", testimonial); err != nil {
		return nil, err
	}
	return testimonial, nil
}
