package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/auth"
	"github.com/tradingzen/backend/internal/metrics"
	"github.com/tradingzen/backend/internal/middleware"
	"github.com/tradingzen/backend/internal/repository"
	"github.com/tradingzen/backend/internal/service"
)

// RouterConfig carries everything NewRouter wires together. Provider,
// States and Limiter are optional.
type RouterConfig struct {
	Storage     repository.Storage
	Codec       auth.SessionCodec
	Provider    IdentityProvider
	States      auth.StateStore
	Limiter     middleware.Limiter
	CORSOrigins []string

	IsProduction bool
	FrontendURL  string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	users := service.NewUserService(cfg.Storage)
	catalog := service.NewCatalogService(cfg.Storage)
	enrollments := service.NewEnrollmentService(cfg.Storage)
	identities := service.NewIdentityService(cfg.Storage)

	userHandler := NewUserHandler(users)
	catalogHandler := NewCatalogHandler(catalog)
	enrollmentHandler := NewEnrollmentHandler(enrollments)
	authHandler := NewAuthHandler(users, identities, cfg.Codec, cfg.Provider, cfg.States, cfg.IsProduction, cfg.FrontendURL)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		metrics.Middleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.HSTSMiddleware(cfg.IsProduction),
	)
	// cors rejects an empty origin list
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.SessionMiddleware(cfg.Codec))

	var writeLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Limiter != nil {
		writeLimit = middleware.RateLimit(cfg.Limiter)
	}

	router.GET("/healthz", func(c *gin.Context) {
		if err := cfg.Storage.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if authHandler.OAuthEnabled() {
		router.GET("/auth/discord", authHandler.DiscordLogin)
		router.GET("/auth/discord/callback", authHandler.DiscordCallback)
	}

	api := router.Group("/api")
	{
		api.GET("/auth/status", authHandler.Status)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/login", writeLimit, authHandler.Login)

		api.GET("/users/:id", userHandler.GetUser)
		api.POST("/users/register", writeLimit, userHandler.Register)
		api.POST("/users/complete-profile", middleware.RequireSession(), writeLimit, userHandler.CompleteProfile)

		api.GET("/courses", catalogHandler.ListCourses)
		api.GET("/courses/free", catalogHandler.ListFreeCourses)
		api.GET("/courses/premium", catalogHandler.ListPremiumCourses)
		api.GET("/courses/:id", catalogHandler.GetCourse)
		api.POST("/courses", writeLimit, catalogHandler.CreateCourse)

		api.GET("/testimonials", catalogHandler.ListTestimonials)
		api.POST("/testimonials", writeLimit, catalogHandler.CreateTestimonial)

		api.GET("/enrollments/user/:userId", enrollmentHandler.ListForUser)
		api.POST("/enrollments", writeLimit, enrollmentHandler.Create)
	}

	return router
}
