package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
)

// SessionCodec turns an authenticated user into an opaque session value
// and back.
type SessionCodec interface {
	Encode(user *models.User) (string, error)
	Decode(ctx context.Context, value string) (*models.User, error)
	TTL() time.Duration
}

// UserLookup is the slice of the storage gateway the codec needs.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type SessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// JWTSessionCodec signs sessions as HS256 JWTs carrying the user id and
// reloads the user on every decode, so a deleted account loses its session.
type JWTSessionCodec struct {
	secret []byte
	ttl    time.Duration
	users  UserLookup
}

var _ SessionCodec = (*JWTSessionCodec)(nil)

func NewJWTSessionCodec(secret string, ttl time.Duration, users UserLookup) *JWTSessionCodec {
	return &JWTSessionCodec{secret: []byte(secret), ttl: ttl, users: users}
}

func (c *JWTSessionCodec) TTL() time.Duration {
	return c.ttl
}

func (c *JWTSessionCodec) Encode(user *models.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode validates the token and loads its user. Store failures are
// returned as is. Every other problem is ErrInvalidSession or
// ErrExpiredSession.
func (c *JWTSessionCodec) Decode(ctx context.Context, value string) (*models.User, error) {
	userID, err := c.parse(value)
	if err != nil {
		return nil, err
	}

	user, err := c.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidIdentifier) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidSession
	}
	return user, nil
}

func (c *JWTSessionCodec) parse(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredSession
		}
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidSession
	}
	return claims.UserID, nil
}
