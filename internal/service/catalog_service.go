package service

import (
	"context"

	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

// CatalogService serves the public course catalog and testimonials.
type CatalogService struct {
	storage repository.Storage
}

func NewCatalogService(storage repository.Storage) *CatalogService {
	return &CatalogService{storage: storage}
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.storage.ListCourses(ctx)
}

func (s *CatalogService) ListFreeCourses(ctx context.Context) ([]models.Course, error) {
	return s.storage.ListCoursesByPremium(ctx, false)
}

func (s *CatalogService) ListPremiumCourses(ctx context.Context) ([]models.Course, error) {
	return s.storage.ListCoursesByPremium(ctx, true)
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return s.storage.GetCourse(ctx, id)
}

func (s *CatalogService) CreateCourse(ctx context.Context, in *models.InsertCourse) (*models.Course, error) {
	course, err := s.storage.CreateCourse(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Course created",
		zap.String("course_id", course.ID),
		zap.String("title", course.Title),
		zap.Bool("premium", course.IsPremium),
	)
	return course, nil
}

// ListVisibleTestimonials is what the landing page shows.
func (s *CatalogService) ListVisibleTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	return s.storage.ListTestimonialsByVisibility(ctx, true)
}

func (s *CatalogService) CreateTestimonial(ctx context.Context, in *models.InsertTestimonial) (*models.Testimonial, error) {
	testimonial, err := s.storage.CreateTestimonial(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Testimonial created",
		zap.String("testimonial_id", testimonial.ID),
		zap.Bool("visible", testimonial.IsVisible),
	)
	return testimonial, nil
}
