package database

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationDatabaseURL reads DATABASE_URL directly so migrations do not need
// the provider credentials the full config insists on
func migrationDatabaseURL() (string, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL is required")
	}
	return url, nil
}

// MigrateUp runs all pending migrations
func MigrateUp() error {
	databaseURL, err := migrationDatabaseURL()
	if err != nil {
		return err
	}
	return RunMigrationsWithURL(databaseURL)
}

// MigrateDown rolls back the specified number of migrations
func MigrateDown(stepsStr string) error {
	databaseURL, err := migrationDatabaseURL()
	if err != nil {
		return err
	}

	steps, err := strconv.Atoi(stepsStr)
	if err != nil || steps <= 0 {
		return fmt.Errorf("invalid steps value %q", stepsStr)
	}

	m, err := getMigrate(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Steps(-steps)
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("No migrations to rollback")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.WithField("version", version).Info("Rolled back migrations")
	return nil
}

// MigrateStatus logs the current migration version
func MigrateStatus() error {
	databaseURL, err := migrationDatabaseURL()
	if err != nil {
		return err
	}

	m, err := getMigrate(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("No migrations have been applied yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.WithFields(log.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Current migration version")
	return nil
}

// RunMigrationsWithURL runs all pending migrations against databaseURL.
// Test containers call this with their generated URL.
func RunMigrationsWithURL(databaseURL string) error {
	m, err := getMigrate(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Debug("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.WithField("version", version).Info("Migrated database")
	return nil
}

func getMigrate(databaseURL string) (*migrate.Migrate, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db := stdlib.OpenDB(*config.ConnConfig)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}
