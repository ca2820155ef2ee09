package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradingzen/backend/internal/metrics"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DuplicateKeyError is returned when a create violates a uniqueness
// constraint. Field is empty when the store does not say which one.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return "duplicate key"
	}
	return "duplicate key on " + e.Field
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

// Storage is the data access layer over the backing store. Identifiers are
// opaque strings; a lookup that matches nothing returns (nil, nil).
type Storage interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByDiscordID(ctx context.Context, discordID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, in *models.InsertUser) (*models.User, error)
	UpdateUserBroker(ctx context.Context, userID, brokerNombre, brokerCuenta string) (*models.User, error)

	GetCourse(ctx context.Context, id string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListCoursesByPremium(ctx context.Context, premium bool) ([]models.Course, error)
	CreateCourse(ctx context.Context, in *models.InsertCourse) (*models.Course, error)

	GetTestimonial(ctx context.Context, id string) (*models.Testimonial, error)
	ListTestimonials(ctx context.Context) ([]models.Testimonial, error)
	ListTestimonialsByVisibility(ctx context.Context, visible bool) ([]models.Testimonial, error)
	CreateTestimonial(ctx context.Context, in *models.InsertTestimonial) (*models.Testimonial, error)

	GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error)
	ListUserEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error)
	CreateEnrollment(ctx context.Context, in *models.InsertEnrollment) (*models.Enrollment, error)

	Ping(ctx context.Context) error
	Close() error
}

// unavailable logs a store failure and wraps it so callers can tell it
// apart from an absent record.
func unavailable(op string, err error, fields ...zap.Field) error {
	metrics.RecordStorageFailure(op)
	logger.Log.Error("Storage operation failed",
		append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...,
	)
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
