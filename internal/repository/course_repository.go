package repository

import (
	"context"

	"github.com/tradingzen/backend/internal/models"
)

func (s *SQLStorage) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	id, err := sqlID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Course](ctx, s.db, "get_course", "id = ?", id)
}

func (s *SQLStorage) ListCourses(ctx context.Context) ([]models.Course, error) {
	return findAll[models.Course](ctx, s.db, "list_courses", "created_at")
}

// ListCoursesByPremium returns either the premium or the free catalog.
func (s *SQLStorage) ListCoursesByPremium(ctx context.Context, premium bool) ([]models.Course, error) {
	return findAll[models.Course](ctx, s.db, "list_courses_by_premium", "created_at", "is_premium = ?", premium)
}

func (s *SQLStorage) CreateCourse(ctx context.Context, in *models.InsertCourse) (*models.Course, error) {
	course := in.ToCourse()
	if err := s.create(ctx, "create_course", course); err != nil {
		return nil, err
	}
	return course, nil
}
