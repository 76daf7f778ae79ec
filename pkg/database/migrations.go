package database

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrator applies the embedded schema migrations to a SQLite file
type Migrator struct {
	m      *migrate.Migrate
	path   string
	logger *zap.Logger
}

// NewMigrator opens its own connection to the database at path, creating
// its directory if needed
func NewMigrator(path string, logger *zap.Logger) (*Migrator, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, "sqlite3://"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m, path: path, logger: logger}, nil
}

// Up applies all pending migrations
func (mg *Migrator) Up() error {
	mg.logger.Info("Applying database migrations", zap.String("path", mg.path))
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run up migrations: %w", err)
	}
	return mg.logVersion()
}

// Down reverts every migration
func (mg *Migrator) Down() error {
	mg.logger.Info("Reverting database migrations", zap.String("path", mg.path))
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run down migrations: %w", err)
	}
	return nil
}

// Steps applies n migrations, reverting when n is negative
func (mg *Migrator) Steps(n int) error {
	if err := mg.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run %d migration steps: %w", n, err)
	}
	return mg.logVersion()
}

// Force sets the recorded version without running migrations
func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Version returns the applied version. An empty database reports 0.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the migrator's connection
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logVersion() error {
	v, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.logger.Info("Database schema ready", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

// Migrate brings the database at path up to the latest schema
func Migrate(path string, logger *zap.Logger) error {
	mg, err := NewMigrator(path, logger)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
