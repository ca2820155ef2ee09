package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/auth"
	"github.com/tradingzen/backend/internal/middleware"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/internal/service"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

// IdentityProvider is an OAuth login provider such as Discord.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*models.ExternalIdentity, error)
}

type AuthHandler struct {
	users        *service.UserService
	identities   *service.IdentityService
	codec        auth.SessionCodec
	provider     IdentityProvider
	states       auth.StateStore
	isProduction bool
	frontendURL  string
}

// NewAuthHandler builds the session endpoints. provider and states may be
// nil, in which case the OAuth routes are not mounted.
func NewAuthHandler(
	users *service.UserService,
	identities *service.IdentityService,
	codec auth.SessionCodec,
	provider IdentityProvider,
	states auth.StateStore,
	isProduction bool,
	frontendURL string,
) *AuthHandler {
	return &AuthHandler{
		users:        users,
		identities:   identities,
		codec:        codec,
		provider:     provider,
		states:       states,
		isProduction: isProduction,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
	}
}

func (h *AuthHandler) OAuthEnabled() bool {
	return h.provider != nil && h.states != nil
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest

	// 1. Parse JSON request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// 2. Check credentials
	user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "")
		return
	}

	// 3. Set session cookie
	if err := h.startSession(c, user); err != nil {
		respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Status reports the current session. It never fails with 401.
func (h *AuthHandler) Status(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.isProduction, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DiscordLogin sends the browser to the provider's consent page.
func (h *AuthHandler) DiscordLogin(c *gin.Context) {
	state, err := h.states.Issue(c.Request.Context())
	if err != nil {
		logger.Log.Error("Failed to issue oauth state", zap.Error(err))
		h.redirectFailure(c)
		return
	}
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// DiscordCallback finishes the OAuth flow. Every failure ends on the
// landing page with auth_error set.
func (h *AuthHandler) DiscordCallback(c *gin.Context) {
	ctx := c.Request.Context()

	// 1. Verify state
	if err := h.states.Consume(ctx, c.Query("state")); err != nil {
		logger.Log.Warn("OAuth callback with bad state", zap.String("ip", c.ClientIP()), zap.Error(err))
		h.redirectFailure(c)
		return
	}

	// 2. The user may have denied access
	code := c.Query("code")
	if providerErr := c.Query("error"); providerErr != "" || code == "" {
		logger.Log.Info("OAuth login not approved", zap.String("error", providerErr))
		h.redirectFailure(c)
		return
	}

	// 3. Exchange code for the external profile
	identity, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.redirectFailure(c)
		return
	}

	// 4. Bind to a local user
	user, err := h.identities.Bind(ctx, *identity)
	if err != nil {
		logger.Log.Error("Identity binding failed",
			zap.String("provider", identity.Provider),
			zap.Error(err),
		)
		h.redirectFailure(c)
		return
	}

	// 5. Start session and route to profile completion if needed
	if err := h.startSession(c, user); err != nil {
		h.redirectFailure(c)
		return
	}
	if user.NeedsBrokerProfile() {
		c.Redirect(http.StatusFound, h.frontendURL+"/complete-profile")
		return
	}
	c.Redirect(http.StatusFound, h.frontendURL+"/")
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) error {
	token, err := h.codec.Encode(user)
	if err != nil {
		logger.Log.Error("Failed to encode session",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.SessionCookieName,
		token,
		int(h.codec.TTL().Seconds()),
		"/",
		"",
		h.isProduction, // secure (HTTPS-only in production)
		true,           // httpOnly
	)
	return nil
}

func (h *AuthHandler) redirectFailure(c *gin.Context) {
	c.Redirect(http.StatusFound, h.frontendURL+"/?auth_error=true")
}
