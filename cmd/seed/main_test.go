package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptstudio/internal/database"
	"promptstudio/internal/domain/auth"
	"promptstudio/internal/domain/post"
	"promptstudio/internal/pkg/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logger.Log
	logger.Log = logger.NewWithWriter("info", &buf)
	t.Cleanup(func() { logger.Log = prev })
	return &buf
}

func TestSeed_CreatesUsersAndSkipsExisting(t *testing.T) {
	logs := captureLogs(t)

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	users := []demoUser{
		{name: "Seed One", email: "one@example.com", password: "s3cret-seed-pass", posts: 2},
		{name: "Seed Two", email: "two@example.com", password: "s3cret-seed-pass", posts: 0},
	}
	require.NoError(t, seed(context.Background(), db, users))
	require.NoError(t, seed(context.Background(), db, users))

	var userCount, postCount int64
	require.NoError(t, db.Model(&auth.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&post.Post{}).Count(&postCount).Error)
	assert.Equal(t, int64(2), userCount)
	assert.Equal(t, int64(2), postCount)

	var stored auth.User
	require.NoError(t, db.Where("email = ?", "one@example.com").First(&stored).Error)
	assert.NoError(t, auth.CheckPassword("s3cret-seed-pass", stored.PasswordHash))

	require.NoError(t, logger.Log.Flush())
	assert.Contains(t, logs.String(), "one@example.com")
	assert.Contains(t, logs.String(), "user already exists")
	assert.NotContains(t, logs.String(), "s3cret-seed-pass")
	assert.NotContains(t, logs.String(), "password")
}
