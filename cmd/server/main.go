package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/tradingzen/backend/internal/auth"
	"github.com/tradingzen/backend/internal/config"
	"github.com/tradingzen/backend/internal/database"
	"github.com/tradingzen/backend/internal/handler"
	"github.com/tradingzen/backend/internal/middleware"
	"github.com/tradingzen/backend/internal/utils"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Log.Warn("Config fallback", zap.String("detail", w))
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}
	logger.Log.Info("Config loaded successfully",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.StorageDriver),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	storage, err := database.OpenStorage(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	secret := cfg.SessionSecret
	if secret == "" {
		logger.Log.Warn("SESSION_SECRET not set, using a random secret; sessions end on restart")
		secret = mustRandomSecret()
	}

	routerCfg := handler.RouterConfig{
		Storage:      storage,
		Codec:        auth.NewJWTSessionCodec(secret, cfg.SessionExpiry, storage),
		CORSOrigins:  cfg.CORSAllowedOrigins,
		IsProduction: cfg.IsProduction(),
		FrontendURL:  cfg.FrontendURL,
	}
	limiterCfg := middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
	}

	// Redis backs the shared rate limiter and the OAuth state store. Without
	// it requests are limited per instance and Discord login is off.
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Log.Warn("Redis not reachable at startup, rate limiter fails open until it is", zap.Error(err))
		}

		routerCfg.Limiter = middleware.NewRedisLimiter(redisClient, limiterCfg)
		routerCfg.States = auth.NewRedisStateStore(redisClient, cfg.OAuthStateTTL)

		if discordCfg := cfg.DiscordConfig(); discordCfg.Enabled() {
			routerCfg.Provider = auth.NewDiscordProvider(discordCfg)
			logger.Log.Info("Discord login enabled")
		} else {
			logger.Log.Info("Discord login disabled: client settings missing")
		}
	} else {
		routerCfg.Limiter = middleware.NewLocalLimiter(limiterCfg)
		logger.Log.Info("REDIS_URL not set, using local rate limiter; Discord login disabled")
	}

	router := handler.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("addr", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Server stopped")
}

func mustRandomSecret() string {
	secret, err := utils.RandomToken(32)
	if err != nil {
		logger.Log.Fatal("Failed to generate session secret", zap.Error(err))
	}
	return secret
}
