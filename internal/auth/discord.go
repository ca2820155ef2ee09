package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const ProviderDiscord = "discord"

var ErrProviderExchange = errors.New("oauth provider exchange failed")

// DiscordConfig is built from the application config in main. The URL
// fields default to discord.com and are overridden in tests.
type DiscordConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

func (c DiscordConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.CallbackURL != ""
}

type DiscordProvider struct {
	oauth   *oauth2.Config
	apiBase string
}

func NewDiscordProvider(cfg DiscordConfig) *DiscordProvider {
	if cfg.AuthURL == "" {
		cfg.AuthURL = "https://discord.com/oauth2/authorize"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://discord.com/api/oauth2/token"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://discord.com/api"
	}

	return &DiscordProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"identify", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: cfg.APIBaseURL,
	}
}

// AuthCodeURL is where the browser is sent to approve the login.
func (p *DiscordProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Exchange trades the authorization code for a token and fetches the
// profile it grants access to.
func (p *DiscordProvider) Exchange(ctx context.Context, code string) (*models.ExternalIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Log.Warn("Discord token exchange failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Warn("Discord profile request failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: profile status %d", ErrProviderExchange, resp.StatusCode)
	}

	var profile discordUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrProviderExchange, err)
	}
	if profile.ID == "" || profile.Username == "" {
		return nil, fmt.Errorf("%w: incomplete profile", ErrProviderExchange)
	}

	return &models.ExternalIdentity{
		Provider: ProviderDiscord,
		ID:       profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
	}, nil
}
