package migration

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Config holds migration configuration
type Config struct {
	// MigrationsPath is a directory of NNNNNN_name.{up,down}.sql files.
	MigrationsPath string
	// DatabaseURL is a postgres:// URL.
	DatabaseURL string
	Logger      *slog.Logger
}

// State describes the schema version recorded in the database
type State struct {
	Version uint
	Dirty   bool
}

// ErrDirty is returned when a previous migration failed half way.
var ErrDirty = errors.New("database is in a dirty migration state")

// Runner applies schema migrations
type Runner struct {
	cfg    Config
	logger *slog.Logger
	open   func(sourceURL, databaseURL string) (migrator, error)
}

// migrator is the subset of *migrate.Migrate the runner drives
type migrator interface {
	Up() error
	Steps(n int) error
	Force(version int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// NewRunner creates a new migration runner
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger.With("component", "migration"),
		open: func(sourceURL, databaseURL string) (migrator, error) {
			return migrate.New(sourceURL, databaseURL)
		},
	}
}

// Up applies every pending migration. A dirty database is refused.
func (r *Runner) Up() (State, error) {
	var state State
	err := r.with(func(m migrator) error {
		before, err := version(m)
		if err != nil {
			return err
		}
		if before.Dirty {
			return fmt.Errorf("%w at version %d", ErrDirty, before.Version)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		state, err = version(m)
		if err != nil {
			return err
		}
		r.logger.Info("schema up to date", "from_version", before.Version, "to_version", state.Version)
		return nil
	})
	return state, err
}

// Down rolls back the last applied migration
func (r *Runner) Down() error {
	return r.with(func(m migrator) error {
		if err := m.Steps(-1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				r.logger.Info("no migrations to roll back")
				return nil
			}
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.logger.Info("rolled back one migration")
		return nil
	})
}

// Force records version as applied and clears the dirty flag without running
// any SQL. Only for repairing a failed migration by hand.
func (r *Runner) Force(v int) error {
	return r.with(func(m migrator) error {
		r.logger.Warn("forcing migration version", "version", v)
		if err := m.Force(v); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
		return nil
	})
}

// Version returns the current schema state
func (r *Runner) Version() (State, error) {
	var state State
	err := r.with(func(m migrator) error {
		var err error
		state, err = version(m)
		return err
	})
	return state, err
}

func (r *Runner) with(fn func(m migrator) error) error {
	m, err := r.open("file://"+r.cfg.MigrationsPath, r.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			r.logger.Warn("failed to close migrate", "error", err)
		}
	}()
	return fn(m)
}

func version(m migrator) (State, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to get version: %w", err)
	}
	return State{Version: v, Dirty: dirty}, nil
}

// AutoMigrate brings the schema up to date on startup.
func AutoMigrate(databaseURL, migrationsPath string, logger *slog.Logger) error {
	_, err := NewRunner(Config{
		MigrationsPath: migrationsPath,
		DatabaseURL:    databaseURL,
		Logger:         logger,
	}).Up()
	return err
}
