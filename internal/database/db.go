package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tradingzen/backend/internal/config"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Connect opens the relational database selected by STORAGE_DRIVER.
// Enrollment references are checked by the service layer, so foreign key
// constraints are not created.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("storage driver %q is not relational", cfg.StorageDriver)
	}

	gormCfg := &gorm.Config{DisableForeignKeyConstraintWhenMigrating: true}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Log.Info("Database connected successfully", zap.String("driver", cfg.StorageDriver))
	return db, nil
}

// ConnectMongo dials MONGODB_URI and checks the connection.
func ConnectMongo(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Log.Info("MongoDB connected successfully", zap.String("database", cfg.MongoDatabase))
	return client.Database(cfg.MongoDatabase), nil
}

// OpenStorage connects the configured backend and prepares its schema:
// migrations for the relational drivers, indexes for MongoDB.
func OpenStorage(ctx context.Context, cfg *config.Config) (repository.Storage, error) {
	if cfg.StorageDriver == config.DriverMongo {
		db, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		storage := repository.NewMongoStorage(db)
		if err := storage.EnsureIndexes(ctx); err != nil {
			_ = storage.Close()
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Log.Info("MongoDB indexes ensured")
		return storage, nil
	}

	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	storage := repository.NewSQLStorage(db)
	if err := storage.Migrate(); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Log.Info("Database migration completed")
	return storage, nil
}
