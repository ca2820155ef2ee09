package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDiscord serves the token and profile endpoints.
func fakeDiscord(t *testing.T, profileStatus int, profile gin.H) *httptest.Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/api/oauth2/token", func(c *gin.Context) {
		if c.PostForm("code") != "good-code" || c.PostForm("client_id") != "client-id" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": "access-123",
			"token_type":   "Bearer",
			"expires_in":   604800,
		})
	})
	router.GET("/api/users/@me", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer access-123" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.JSON(profileStatus, profile)
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newTestProvider(server *httptest.Server) *DiscordProvider {
	return NewDiscordProvider(DiscordConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:5000/auth/discord/callback",
		AuthURL:      server.URL + "/oauth2/authorize",
		TokenURL:     server.URL + "/api/oauth2/token",
		APIBaseURL:   server.URL + "/api",
	})
}

func TestDiscordConfig_Enabled(t *testing.T) {
	assert.False(t, DiscordConfig{}.Enabled())
	assert.False(t, DiscordConfig{ClientID: "id", ClientSecret: "secret"}.Enabled())
	assert.True(t, DiscordConfig{ClientID: "id", ClientSecret: "secret", CallbackURL: "http://x/cb"}.Enabled())
}

func TestDiscordProvider_AuthCodeURL(t *testing.T) {
	provider := NewDiscordProvider(DiscordConfig{
		ClientID:    "client-id",
		CallbackURL: "http://localhost:5000/auth/discord/callback",
	})

	raw := provider.AuthCodeURL("state-abc")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "discord.com", u.Host)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "identify email", q.Get("scope"))
	assert.Equal(t, "http://localhost:5000/auth/discord/callback", q.Get("redirect_uri"))
}

func TestDiscordProvider_Exchange(t *testing.T) {
	server := fakeDiscord(t, http.StatusOK, gin.H{
		"id":       "80351110224678912",
		"username": "nelly",
		"email":    "nelly@discord.com",
	})
	provider := newTestProvider(server)

	identity, err := provider.Exchange(context.Background(), "good-code")

	require.NoError(t, err)
	assert.Equal(t, ProviderDiscord, identity.Provider)
	assert.Equal(t, "80351110224678912", identity.ID)
	assert.Equal(t, "nelly", identity.Username)
	assert.Equal(t, "nelly@discord.com", identity.Email)
}

func TestDiscordProvider_ExchangeWithoutEmail(t *testing.T) {
	server := fakeDiscord(t, http.StatusOK, gin.H{"id": "42", "username": "quiet"})
	provider := newTestProvider(server)

	identity, err := provider.Exchange(context.Background(), "good-code")

	require.NoError(t, err)
	assert.Empty(t, identity.Email)
}

func TestDiscordProvider_ExchangeFailures(t *testing.T) {
	testCases := []struct {
		name    string
		code    string
		status  int
		profile gin.H
	}{
		{name: "bad_code", code: "bad-code", status: http.StatusOK, profile: gin.H{"id": "1", "username": "u"}},
		{name: "profile_error", code: "good-code", status: http.StatusInternalServerError, profile: gin.H{}},
		{name: "incomplete_profile", code: "good-code", status: http.StatusOK, profile: gin.H{"username": "u"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := fakeDiscord(t, tc.status, tc.profile)
			provider := newTestProvider(server)

			identity, err := provider.Exchange(context.Background(), tc.code)

			assert.Nil(t, identity)
			assert.ErrorIs(t, err, ErrProviderExchange)
		})
	}
}
