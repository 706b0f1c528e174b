package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Migrator é o subconjunto de *migrate.Migrate usado aqui
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Version() (version uint, dirty bool, err error)
}

// substituídos nos testes para não exigir um postgres real
var withPostgresInstance = func(db *sql.DB) (migratedb.Driver, error) {
	return migratepg.WithInstance(db, &migratepg.Config{})
}

var newMigrateWithDB = func(sourceURL string, driver migratedb.Driver) (Migrator, error) {
	return migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
}

func NewMigrator(db *sql.DB, sourceURL string) (Migrator, error) {
	driver, err := withPostgresInstance(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := newMigrateWithDB(sourceURL, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// ApplyMigrations aplica steps migrações na direção informada (0 = todas).
// Não ter nada a aplicar não é erro.
func ApplyMigrations(m Migrator, direction string, steps int) error {
	var err error

	switch direction {
	case DirectionUp:
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case DirectionDown:
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("invalid direction: %s (must be 'up' or 'down')", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logrus.Info("migrate: no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		logrus.WithFields(logrus.Fields{
			"direction": direction,
			"version":   version,
			"dirty":     dirty,
		}).Info("migrate: completed")
	}

	return nil
}

// ForceDirty limpa o estado dirty voltando para a versão atual
func ForceDirty(m Migrator) (uint, error) {
	v, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	if !dirty {
		return v, nil
	}
	if err := m.Force(int(v)); err != nil {
		return 0, fmt.Errorf("failed to force dirty version %d: %w", v, err)
	}
	return v, nil
}
