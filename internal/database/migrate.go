package database

import (
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"promptstudio/internal/pkg/logger"
	"promptstudio/migrations"
)

// NewMigrator returns a golang-migrate instance over the embedded SQL for the
// dialect implied by dsn. Callers must Close it.
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	dir, url := migrationTarget(dsn)

	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("migration init: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// migrationTarget maps an application DSN to the embedded directory and the
// URL scheme golang-migrate registers for that backend.
func migrationTarget(dsn string) (dir, url string) {
	if IsPostgres(dsn) {
		rest := dsn[strings.Index(dsn, "://")+3:]
		return "postgres", "pgx5://" + rest
	}
	return "sqlite", "sqlite://" + strings.TrimPrefix(dsn, "file:")
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), logger.Fields{"component": "migrate"})
}

func (migrateLogger) Verbose() bool { return false }
