package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/repository"
)

const (
	testSecret      = "test-secret-key-for-sessions"
	testWrongSecret = "wrong-secret-key-for-sessions"
)

type fakeUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id == "malformed" {
		return nil, repository.ErrInvalidIdentifier
	}
	return f.users[id], nil
}

func newTestCodec(ttl time.Duration) (*JWTSessionCodec, *fakeUsers) {
	users := &fakeUsers{users: map[string]*models.User{
		"user-1": {ID: "user-1", Username: "ana"},
	}}
	return NewJWTSessionCodec(testSecret, ttl, users), users
}

func TestJWTSessionCodec_RoundTrip(t *testing.T) {
	// Arrange
	codec, _ := newTestCodec(time.Hour)

	// Act
	value, err := codec.Encode(&models.User{ID: "user-1"})
	require.NoError(t, err)
	user, err := codec.Decode(context.Background(), value)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, time.Hour, codec.TTL())
}

func TestJWTSessionCodec_Rejects(t *testing.T) {
	codec, _ := newTestCodec(time.Hour)
	valid, err := codec.Encode(&models.User{ID: "user-1"})
	require.NoError(t, err)

	foreign, err := NewJWTSessionCodec(testWrongSecret, time.Hour, nil).Encode(&models.User{ID: "user-1"})
	require.NoError(t, err)

	expired, err := NewJWTSessionCodec(testSecret, -time.Hour, nil).Encode(&models.User{ID: "user-1"})
	require.NoError(t, err)

	deleted, err := codec.Encode(&models.User{ID: "user-2"})
	require.NoError(t, err)

	malformed, err := codec.Encode(&models.User{ID: "malformed"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		value   string
		wantErr error
	}{
		{name: "empty", value: "", wantErr: ErrInvalidSession},
		{name: "garbage", value: "not.a.jwt", wantErr: ErrInvalidSession},
		{name: "wrong_secret", value: foreign, wantErr: ErrInvalidSession},
		{name: "tampered", value: valid[:len(valid)-4] + "AAAA", wantErr: ErrInvalidSession},
		{name: "expired", value: expired, wantErr: ErrExpiredSession},
		{name: "alg_none", value: none, wantErr: ErrInvalidSession},
		{name: "user_gone", value: deleted, wantErr: ErrInvalidSession},
		{name: "id_from_other_backend", value: malformed, wantErr: ErrInvalidSession},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := codec.Decode(context.Background(), tc.value)

			assert.Nil(t, user)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestJWTSessionCodec_StoreFailurePassesThrough(t *testing.T) {
	codec, users := newTestCodec(time.Hour)
	value, err := codec.Encode(&models.User{ID: "user-1"})
	require.NoError(t, err)
	users.err = errors.Join(repository.ErrStorageUnavailable, errors.New("connection refused"))

	user, err := codec.Decode(context.Background(), value)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, repository.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidSession)
}

func BenchmarkJWTSessionCodec_Decode(b *testing.B) {
	codec, _ := newTestCodec(time.Hour)
	value, _ := codec.Encode(&models.User{ID: "user-1"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = codec.Decode(context.Background(), value)
	}
}
