package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"gorm.io/gorm"

	"promptstudio/internal/config"
	"promptstudio/internal/domain/auth"
	"promptstudio/internal/domain/generation"
	"promptstudio/internal/domain/post"
	"promptstudio/internal/inference"
	"promptstudio/internal/middleware"
	"promptstudio/internal/pkg/jwt"
	"promptstudio/internal/pkg/ratelimit"
	"promptstudio/internal/pkg/response"
	"promptstudio/internal/storage"
)

type deps struct {
	cfg       *config.Config
	db        *gorm.DB
	jwt       *jwt.Service
	limits    limiter.Store
	disk      *storage.Disk
	generator inference.PromptGenerator
}

func newRouter(d deps) *gin.Engine {
	loginLimiter := ratelimit.New(d.limits, d.cfg.Auth.LoginMaxAttempts, d.cfg.Auth.LoginDecay)
	authService := auth.NewService(auth.NewUserRepository(d.db), d.jwt, loginLimiter)
	authHandler := auth.NewHandler(authService)

	postHandler := post.NewHandler(post.NewService(post.NewRepository(d.db)))

	generationService := generation.NewService(generation.NewRepository(d.db), d.disk, d.generator)
	generationHandler := generation.NewHandler(generationService)

	r := gin.New()
	r.Use(middleware.ErrorLogger(), middleware.RequestLogger(), middleware.CORS(d.cfg.HTTP.CORSAllowedOrigins))

	r.GET("/health", healthHandler(d.db))
	r.Static(d.cfg.Storage.PublicURL, d.disk.Root())

	api := r.Group("/api")
	{
		api.GET("/hello", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Hello Laravel API"})
		})

		authHandler.RegisterPublicRoutes(api, middleware.GuestOnly(d.jwt, "/api/user"))

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(d.jwt))
		if rpm := d.cfg.RateLimit.RequestsPerMinute; rpm > 0 {
			protected.Use(middleware.Throttle(ratelimit.New(d.limits, rpm, time.Minute)))
		}
		{
			authHandler.RegisterProtectedRoutes(protected)

			v1 := protected.Group("/v1")
			postHandler.RegisterRoutes(v1)
			generationHandler.RegisterRoutes(v1)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
