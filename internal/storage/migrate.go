package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/claude/ironlog/internal/storage/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// RunMigrations applies all pending embedded migrations for driver. For
// sqlite, dsn is the database file path.
func RunMigrations(driver, dsn string) error {
	var (
		files fs.FS
		dir   string
		url   string
	)
	switch driver {
	case DriverSQLite:
		if d := filepath.Dir(dsn); d != "." {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return fmt.Errorf("creating database dir %s: %w", d, err)
			}
		}
		files, dir, url = migrations.SQLite, "sqlite", "sqlite://"+dsn
	case DriverPostgres:
		files, dir, url = migrations.Postgres, "postgres", dsn
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
