package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"promptstudio/internal/config"
	"promptstudio/internal/database"
	"promptstudio/internal/domain/auth"
	"promptstudio/internal/domain/generation"
	"promptstudio/internal/domain/post"
	"promptstudio/internal/pkg/logger"
)

type demoUser struct {
	name     string
	email    string
	password string
	posts    int
}

var demoUsers = []demoUser{
	{name: "Test User", email: "test@example.com", password: "password", posts: 3},
	{name: "Second User", email: "second@example.com", password: "password", posts: 1},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level)

	db, err := database.Connect(cfg.Database.URL)
	if err != nil {
		logger.Error("database connection failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}

	if err := seed(context.Background(), db, demoUsers); err != nil {
		logger.Error("seed failed", logger.Fields{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("seed completed", nil)
}

// seed migrates the schema and creates users with a few posts each.
// Users whose email already exists are skipped.
func seed(ctx context.Context, db *gorm.DB, users []demoUser) error {
	logger.Info("running auto migrate", nil)
	if err := db.AutoMigrate(&auth.User{}, &post.Post{}, &generation.ImageGeneration{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	authService := auth.NewService(auth.NewUserRepository(db), nil, nil)
	postService := post.NewService(post.NewRepository(db))

	for _, du := range users {
		u, err := authService.Register(ctx, du.name, du.email, du.password)
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			logger.Info("user already exists, skipping", logger.Fields{"email": du.email})
			continue
		}
		if err != nil {
			return fmt.Errorf("create user %s: %w", du.email, err)
		}

		for i := 0; i < du.posts; i++ {
			req := &post.CreatePostRequest{
				Title: fmt.Sprintf("Post %d by %s", i+1, du.name),
				Body:  "Seeded demo content.",
			}
			if _, err := postService.Create(ctx, u.ID, req); err != nil {
				return fmt.Errorf("create post for user %d: %w", u.ID, err)
			}
		}

		logger.Info("user created", logger.Fields{"email": du.email, "posts": du.posts})
	}
	return nil
}
