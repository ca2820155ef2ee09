package repository

import (
	"context"

	"github.com/tradingzen/backend/internal/models"
)

func (s *SQLStorage) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	id, err := sqlID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.Enrollment](ctx, s.db, "get_enrollment", "id = ?", id)
}

// ListUserEnrollments returns the user's enrollments with their course
// attached, oldest first.
func (s *SQLStorage) ListUserEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	id, err := sqlID(userID)
	if err != nil {
		return nil, err
	}

	enrollments := []models.Enrollment{}
	err = s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", id).
		Order("enrollment_date").
		Find(&enrollments).Error
	if err != nil {
		return nil, unavailable("list_user_enrollments", err)
	}
	return enrollments, nil
}

// CreateEnrollment writes the join record. It does not check that the
// referenced user and course exist; EnrollmentService does.
func (s *SQLStorage) CreateEnrollment(ctx context.Context, in *models.InsertEnrollment) (*models.Enrollment, error) {
	userID, err := sqlID(in.UserID)
	if err != nil {
		return nil, err
	}
	courseID, err := sqlID(in.CourseID)
	if err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.create(ctx, "create_enrollment", enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}
