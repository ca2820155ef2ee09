package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/internal/utils"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	placeholderEmailDomain = "discord.placeholder.com"

	// maxUsernameLen matches the users.username column width.
	maxUsernameLen = 50
)

// IdentityService maps an externally verified identity to a local user,
// creating one on first login.
type IdentityService struct {
	storage repository.Storage
}

func NewIdentityService(storage repository.Storage) *IdentityService {
	return &IdentityService{storage: storage}
}

// Bind returns the user linked to the external id. It is idempotent: a
// second call with the same id returns the same user and creates nothing.
func (s *IdentityService) Bind(ctx context.Context, identity models.ExternalIdentity) (*models.User, error) {
	// 1. Existing link
	user, err := s.storage.GetUserByDiscordID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		logger.Log.Debug("External identity already bound",
			zap.String("provider", identity.Provider),
			zap.String("user_id", user.ID),
		)
		return user, nil
	}

	// 2. First login: create the account
	in, err := newExternalUser(identity)
	if err != nil {
		return nil, err
	}
	user, err = s.storage.CreateUser(ctx, in)
	if err == nil {
		s.logCreated(identity, user)
		return user, nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return nil, err
	}

	// 3. A concurrent callback for the same identity may have won
	user, lookupErr := s.storage.GetUserByDiscordID(ctx, identity.ID)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if user != nil {
		logger.Log.Info("External identity bound by concurrent request",
			zap.String("provider", identity.Provider),
			zap.String("user_id", user.ID),
		)
		return user, nil
	}

	// 4. A local account holds the username or email; retry once with
	// values derived from the external id.
	logger.Log.Warn("External identity collides with a local account",
		zap.String("provider", identity.Provider),
		zap.String("username", identity.Username),
		zap.Error(err),
	)
	in.Username = fallbackUsername(identity.Username, identity.ID)
	in.Email = placeholderEmail(identity.ID)
	user, err = s.storage.CreateUser(ctx, in)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			if user, lookupErr := s.storage.GetUserByDiscordID(ctx, identity.ID); lookupErr == nil && user != nil {
				return user, nil
			}
		}
		return nil, err
	}
	s.logCreated(identity, user)
	return user, nil
}

func (s *IdentityService) logCreated(identity models.ExternalIdentity, user *models.User) {
	logger.Log.Info("User created from external identity",
		zap.String("provider", identity.Provider),
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
}

func newExternalUser(identity models.ExternalIdentity) (*models.InsertUser, error) {
	// The account never logs in with a password; the hash only fills the
	// required column.
	secret, err := utils.RandomToken(32)
	if err != nil {
		return nil, err
	}
	hashed, err := utils.HashPassword(secret)
	if err != nil {
		return nil, err
	}

	email := identity.Email
	if email == "" {
		email = placeholderEmail(identity.ID)
	}
	discordID := identity.ID
	discordUsername := identity.Username
	nombre := identity.Username

	return &models.InsertUser{
		Username:        identity.Username,
		Password:        hashed,
		Email:           email,
		Nombre:          &nombre,
		Experiencia:     models.ExperienceBeginner,
		DiscordID:       &discordID,
		DiscordUsername: &discordUsername,
		AuthDiscord:     true,
	}, nil
}

// fallbackUsername appends the external id to the username, shortening the
// username part so the result fits the column.
func fallbackUsername(username, externalID string) string {
	suffix := "-" + externalID
	room := maxUsernameLen - utf8.RuneCountInString(suffix)
	if room < 1 {
		return truncateRunes(externalID, maxUsernameLen)
	}
	return truncateRunes(username, room) + suffix
}

func truncateRunes(s string, n int) string {
	if runes := []rune(s); len(runes) > n {
		return string(runes[:n])
	}
	return s
}

func placeholderEmail(externalID string) string {
	return externalID + "@" + placeholderEmailDomain
}
