package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/internal/utils"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

type UserService struct {
	storage repository.Storage
}

func NewUserService(storage repository.Storage) *UserService {
	return &UserService{storage: storage}
}

// Register creates a local account from an already validated payload.
// Username is checked before email. The unique indexes decide a race the
// pre-checks lose, and the loser gets the same friendly error.
func (s *UserService) Register(ctx context.Context, in *models.InsertUser) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing user registration",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	// 1. Check if username already exists
	existing, err := s.storage.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Log.Warn("Username already exists", zap.String("username", in.Username))
		return nil, ErrUsernameTaken
	}

	// 2. Check if email already exists
	existing, err = s.storage.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Log.Warn("Email already exists", zap.String("email", in.Email))
		return nil, ErrEmailTaken
	}

	// 3. Hash password (Argon2id)
	hashStart := time.Now()
	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, err
	}
	hashDuration := time.Since(hashStart)

	// 4. Create user
	record := *in
	record.Password = hashed
	user, err := s.storage.CreateUser(ctx, &record)
	if err != nil {
		if friendly := duplicateUserError(err); friendly != nil {
			logger.Log.Warn("Registration lost a uniqueness race",
				zap.String("username", in.Username),
				zap.Error(err),
			)
			return nil, friendly
		}
		return nil, err
	}

	logger.Log.Info("User registered successfully",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// duplicateUserError maps a storage duplicate key to the error the
// pre-checks would have returned. It returns nil for any other error.
func duplicateUserError(err error) error {
	var dup *repository.DuplicateKeyError
	if !errors.As(err, &dup) {
		return nil
	}
	if dup.Field == "email" {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// Login checks local credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	start := time.Now()

	// 1. Get user by email
	user, err := s.storage.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Login failed: user not found", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	// 2. Verify password
	valid, err := utils.VerifyPassword(password, user.Password)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return nil, ErrInvalidCredentials
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password", zap.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	logger.Log.Info("User logged in successfully",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

// GetUser returns (nil, nil) when the user does not exist.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.storage.GetUser(ctx, id)
}

// CompleteProfile records the broker name and account. Both are required;
// calling it again overwrites the previous values.
func (s *UserService) CompleteProfile(ctx context.Context, userID, brokerNombre, brokerCuenta string) (*models.User, error) {
	brokerNombre = strings.TrimSpace(brokerNombre)
	brokerCuenta = strings.TrimSpace(brokerCuenta)
	if brokerNombre == "" || brokerCuenta == "" {
		return nil, ErrBrokerInfoRequired
	}

	user, err := s.storage.UpdateUserBroker(ctx, userID, brokerNombre, brokerCuenta)
	if err != nil {
		return nil, err
	}
	if user == nil {
		logger.Log.Warn("Profile completion for unknown user", zap.String("user_id", userID))
		return nil, ErrUserNotFound
	}

	logger.Log.Info("Broker profile completed",
		zap.String("user_id", user.ID),
		zap.String("broker", brokerNombre),
	)
	return user, nil
}
