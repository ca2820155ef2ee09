package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tradingzen/backend/internal/models"
	"gorm.io/gorm"
)

// SQLStorage implements Storage on top of GORM. Postgres is used in
// production and SQLite for local development and tests.
type SQLStorage struct {
	db *gorm.DB
}

var _ Storage = (*SQLStorage)(nil)

func NewSQLStorage(db *gorm.DB) *SQLStorage {
	return &SQLStorage{db: db}
}

// Migrate creates or updates the tables. Foreign keys between enrollments
// and users/courses are checked by the enrollment service, so the gorm
// config used here should disable FK constraints when migrating.
func (s *SQLStorage) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Testimonial{},
		&models.Enrollment{},
	)
}

func (s *SQLStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return unavailable("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqlID normalizes an identifier to the canonical UUID form stored in the
// primary key columns.
func sqlID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidIdentifier
	}
	return parsed.String(), nil
}

func findOne[T any](ctx context.Context, db *gorm.DB, op string, query string, args ...any) (*T, error) {
	var record T
	err := db.WithContext(ctx).Where(query, args...).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, unavailable(op, err)
	}
	return &record, nil
}

func findAll[T any](ctx context.Context, db *gorm.DB, op string, order string, conds ...any) ([]T, error) {
	records := []T{}
	err := db.WithContext(ctx).Order(order).Find(&records, conds...).Error
	if err != nil {
		return nil, unavailable(op, err)
	}
	return records, nil
}

func (s *SQLStorage) create(ctx context.Context, op string, record any) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if dup := duplicateKey(err); dup != nil {
			return dup
		}
		return unavailable(op, err)
	}
	return nil
}

// duplicateKey recognizes unique constraint violations from Postgres
// (SQLSTATE 23505) and SQLite.
func duplicateKey(err error) *DuplicateKeyError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &DuplicateKeyError{Field: uniqueField(pgErr.ConstraintName), Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateKeyError{Err: err}
	}
	if msg := err.Error(); strings.Contains(msg, "UNIQUE constraint failed") {
		return &DuplicateKeyError{Field: uniqueField(msg), Err: err}
	}
	return nil
}

func uniqueField(s string) string {
	switch {
	case strings.Contains(s, "discord_id"), strings.Contains(s, "discordId"):
		return "discordId"
	case strings.Contains(s, "username"):
		return "username"
	case strings.Contains(s, "email"):
		return "email"
	}
	return ""
}
