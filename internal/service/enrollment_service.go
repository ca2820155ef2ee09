package service

import (
	"context"
	"errors"

	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

// EnrollmentService owns the referential integrity of enrollments. Neither
// backend enforces it, so every write goes through Enroll.
type EnrollmentService struct {
	storage repository.Storage
}

func NewEnrollmentService(storage repository.Storage) *EnrollmentService {
	return &EnrollmentService{storage: storage}
}

// Enroll checks that the user and the course exist, then writes the
// enrollment. A malformed reference counts as a missing one.
func (s *EnrollmentService) Enroll(ctx context.Context, in *models.InsertEnrollment) (*models.Enrollment, error) {
	user, err := s.storage.GetUser(ctx, in.UserID)
	if err != nil && !errors.Is(err, repository.ErrInvalidIdentifier) {
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Enrollment for unknown user", zap.String("user_id", in.UserID))
		return nil, ErrUserNotFound
	}

	course, err := s.storage.GetCourse(ctx, in.CourseID)
	if err != nil && !errors.Is(err, repository.ErrInvalidIdentifier) {
		return nil, err
	}
	if course == nil {
		logger.Log.Warn("Enrollment for unknown course", zap.String("course_id", in.CourseID))
		return nil, ErrCourseNotFound
	}

	enrollment, err := s.storage.CreateEnrollment(ctx, in)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("User enrolled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("user_id", user.ID),
		zap.String("course_id", course.ID),
	)
	return enrollment, nil
}

// ListForUser returns the user's enrollments with the course embedded.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	return s.storage.ListUserEnrollments(ctx, userID)
}
