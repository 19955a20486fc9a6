package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"tally/internal/logger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// newMigrate builds a migrate instance over the manager's own connection.
// The returned source must be closed by the caller; migrate.Close is never
// called because it would close the shared *sql.DB.
func (m *Manager) newMigrate() (*migrate.Migrate, source.Driver, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	var driver database.Driver
	switch m.driver {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{})
	default:
		driver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s migration driver: %w", m.driver, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+m.driver)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", src, m.driver, driver)
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, src, nil
}

// RunMigrations applies all pending migrations.
func (m *Manager) RunMigrations() error {
	logger.Get().Info("Running database migrations...")

	mig, src, err := m.newMigrate()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Get().Info("Database migrations completed successfully")
	return nil
}

// RollbackMigrations reverts the given number of applied migrations.
func (m *Manager) RollbackMigrations(steps int) error {
	mig, src, err := m.newMigrate()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := mig.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version and dirty flag.
func (m *Manager) MigrationVersion() (uint, bool, error) {
	mig, src, err := m.newMigrate()
	if err != nil {
		return 0, false, err
	}
	defer src.Close()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, dirty, nil
}
