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

	"promptstudio/internal/config"
	"promptstudio/internal/database"
	"promptstudio/internal/domain/auth"
	"promptstudio/internal/domain/generation"
	"promptstudio/internal/domain/post"
	"promptstudio/internal/inference"
	"promptstudio/internal/pkg/jwt"
	"promptstudio/internal/pkg/logger"
	"promptstudio/internal/pkg/ratelimit"
	"promptstudio/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level)

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		logger.Error("database connection failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(&auth.User{}, &post.Post{}, &generation.ImageGeneration{}); err != nil {
			logger.Error("auto migrate failed", logger.Fields{"error": err.Error()})
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var generator inference.PromptGenerator = inference.Unavailable{}
	gemini, err := inference.NewGemini(ctx, inference.GeminiConfig{
		APIKey:  cfg.Inference.APIKey,
		Model:   cfg.Inference.Model,
		Timeout: cfg.Inference.Timeout,
	})
	switch {
	case err == nil:
		generator = gemini
	case errors.Is(err, inference.ErrNotConfigured):
		logger.Warn("GEMINI_API_KEY not set, image generation will fail", nil)
	default:
		logger.Error("gemini client init failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	r := newRouter(deps{
		cfg:       cfg,
		db:        db,
		jwt:       jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
		limits:    ratelimit.NewMemoryStore(),
		disk:      storage.NewDisk(cfg.Storage.Root, cfg.Storage.PublicURL),
		generator: generator,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", logger.Fields{"addr": cfg.HTTP.Addr, "env": cfg.AppEnv})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", logger.Fields{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", logger.Fields{"error": err.Error()})
	}
	logger.Info("http server stopped", nil)
}
