package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tradingzen/backend/internal/auth"
	"github.com/tradingzen/backend/internal/models"
)

// stubCodec accepts "good" and fails on "broken".
type stubCodec struct{}

func (stubCodec) Encode(user *models.User) (string, error) { return user.ID, nil }

func (stubCodec) Decode(_ context.Context, value string) (*models.User, error) {
	switch value {
	case "good":
		return &models.User{ID: "user-1", Username: "ana"}, nil
	case "broken":
		return nil, errors.New("storage unavailable")
	case "expired":
		return nil, auth.ErrExpiredSession
	}
	return nil, auth.ErrInvalidSession
}

func (stubCodec) TTL() time.Duration { return time.Hour }

func sessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware(stubCodec{}))
	router.GET("/open", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	})
	router.GET("/private", RequireSession(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestSessionMiddleware(t *testing.T) {
	testCases := []struct {
		name       string
		cookie     string
		header     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "cookie", cookie: "good", path: "/private", wantStatus: http.StatusNoContent},
		{name: "bearer", header: "Bearer good", path: "/private", wantStatus: http.StatusNoContent},
		{name: "no_session", path: "/private", wantStatus: http.StatusUnauthorized, wantBody: "Not authenticated"},
		{name: "invalid_session", cookie: "forged", path: "/private", wantStatus: http.StatusUnauthorized},
		{name: "expired_session", cookie: "expired", path: "/private", wantStatus: http.StatusUnauthorized},
		{name: "anonymous_open_route", path: "/open", wantStatus: http.StatusOK, wantBody: `{"user":null}`},
		{name: "invalid_on_open_route", cookie: "forged", path: "/open", wantStatus: http.StatusOK, wantBody: `{"user":null}`},
		{name: "user_on_open_route", cookie: "good", path: "/open", wantStatus: http.StatusOK, wantBody: `{"user":"ana"}`},
		{name: "store_failure_on_open_route", cookie: "broken", path: "/open", wantStatus: http.StatusOK, wantBody: `{"user":null}`},
		{name: "store_failure_on_private_route", cookie: "broken", path: "/private", wantStatus: http.StatusInternalServerError, wantBody: "Internal server error"},
	}

	router := sessionRouter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantBody != "" {
				assert.Contains(t, w.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(), HSTSMiddleware(true), RequestLogger())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}

func TestHSTS_DevelopmentOmitsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HSTSMiddleware(false))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
