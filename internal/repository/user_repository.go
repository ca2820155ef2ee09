package repository

import (
	"context"

	"github.com/tradingzen/backend/internal/models"
)

func (s *SQLStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	id, err := sqlID(id)
	if err != nil {
		return nil, err
	}
	return findOne[models.User](ctx, s.db, "get_user", "id = ?", id)
}

func (s *SQLStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return findOne[models.User](ctx, s.db, "get_user_by_username", "username = ?", username)
}

func (s *SQLStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.db, "get_user_by_email", "email = ?", email)
}

func (s *SQLStorage) GetUserByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	return findOne[models.User](ctx, s.db, "get_user_by_discord_id", "discord_id = ?", discordID)
}

func (s *SQLStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.db, "list_users", "created_at")
}

func (s *SQLStorage) CreateUser(ctx context.Context, in *models.InsertUser) (*models.User, error) {
	user := in.ToUser()
	if err := s.create(ctx, "create_user", user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserBroker sets the broker fields and returns the updated user, or
// (nil, nil) when the user does not exist.
func (s *SQLStorage) UpdateUserBroker(ctx context.Context, userID, brokerNombre, brokerCuenta string) (*models.User, error) {
	id, err := sqlID(userID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"broker_nombre": brokerNombre,
			"broker_cuenta": brokerCuenta,
		})
	if result.Error != nil {
		return nil, unavailable("update_user_broker", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return s.GetUser(ctx, id)
}
