package main

import (
	"context"

	"github.com/tradingzen/backend/internal/config"
	"github.com/tradingzen/backend/internal/database"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/internal/service"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	storage, err := database.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	seeded, err := seed(ctx, storage)
	if err != nil {
		logger.Log.Fatal("Seeding failed", zap.Error(err))
	}
	if !seeded {
		logger.Log.Info("Catalog already present, nothing to seed")
		return
	}
	logger.Log.Info("Catalog seeded successfully",
		zap.Int("courses", len(seedCourses)),
		zap.Int("testimonials", len(seedTestimonials)),
	)
}

// seed loads the landing-page catalog once. It reports false when the store
// already has courses.
func seed(ctx context.Context, storage repository.Storage) (bool, error) {
	catalog := service.NewCatalogService(storage)

	existing, err := catalog.ListCourses(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, in := range seedCourses {
		if _, err := catalog.CreateCourse(ctx, in); err != nil {
			return false, err
		}
	}
	for _, in := range seedTestimonials {
		if _, err := catalog.CreateTestimonial(ctx, in); err != nil {
			return false, err
		}
	}
	return true, nil
}
