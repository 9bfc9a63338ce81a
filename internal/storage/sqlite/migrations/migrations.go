package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/csflow/internal/log"
)

//go:embed sql/*.sql
var journalSchema embed.FS

// Migrator keeps the run journal schema up to date.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator returns a new run journal schema migrator.
func NewMigrator(db *sql.DB, logger log.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = log.Noop
	}

	return &Migrator{
		db:     db,
		logger: logger.WithValues(log.Kv{"svc": "storage.sqlite.Migrator"}),
	}, nil
}

// Up migrates the schema to the latest version and returns it.
func (m *Migrator) Up(ctx context.Context) (uint, error) {
	var version uint
	err := m.withInstance(ctx, func(inst *migrate.Migrate) error {
		if err := inst.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not migrate run journal schema: %w", err)
		}

		v, dirty, err := inst.Version()
		if err != nil {
			return fmt.Errorf("could not get run journal schema version: %w", err)
		}
		if dirty {
			return fmt.Errorf("run journal schema version %d is dirty", v)
		}
		version = v

		return nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.Debugf("Run journal schema at version %d", version)
	return version, nil
}

// Down removes the whole schema, including the recorded runs.
func (m *Migrator) Down(ctx context.Context) error {
	err := m.withInstance(ctx, func(inst *migrate.Migrate) error {
		if err := inst.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not revert run journal schema: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debugf("Run journal schema removed")
	return nil
}

// withInstance runs f with a migrate instance over the embedded schema files.
// The instance is not closed, it would close the shared database.
func (m *Migrator) withInstance(_ context.Context, f func(inst *migrate.Migrate) error) error {
	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migrate driver: %w", err)
	}

	src, err := iofs.New(journalSchema, "sql")
	if err != nil {
		return fmt.Errorf("could not load schema files: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Warningf("Could not close schema files: %s", err)
		}
	}()

	inst, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	return f(inst)
}
