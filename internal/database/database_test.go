package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMigrationTarget(t *testing.T) {
	dir, url := migrationTarget("postgres://u:p@localhost:5432/app?sslmode=disable")
	assert.Equal(t, "postgres", dir)
	assert.Equal(t, "pgx5://u:p@localhost:5432/app?sslmode=disable", url)

	dir, url = migrationTarget("postgresql://localhost/app")
	assert.Equal(t, "postgres", dir)
	assert.Equal(t, "pgx5://localhost/app", url)

	dir, url = migrationTarget("file:data/app.db")
	assert.Equal(t, "sqlite", dir)
	assert.Equal(t, "sqlite://data/app.db", url)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)")))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestMigrator_UpAndDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	m, err := NewMigrator(path)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)

	db, err := Connect(path)
	require.NoError(t, err)
	for _, table := range []string{"users", "posts", "image_generations"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, m.Steps(-1))
	assert.False(t, db.Migrator().HasTable("image_generations"))

	srcErr, dbErr := m.Close()
	assert.NoError(t, srcErr)
	assert.NoError(t, dbErr)
}
