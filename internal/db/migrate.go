package db

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/loquihq/loqui/internal/config"
)

// migrateStep is one resolved migration action, ready to run against a
// connected migrate instance.
type migrateStep func(m *migrate.Migrate, log *slog.Logger) error

// RunMigrate resolves command ("up", "down", "version", "force <n>") and
// applies it to the schema. The migrationsFS must hold the .sql files at its
// root. Command and arguments are validated before any connection is opened.
func RunMigrate(log *slog.Logger, cfg config.PostgresConfig, migrationsFS fs.FS, command string, args []string) error {
	step, err := resolveCommand(command, args)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, DSN(cfg))
	if err != nil {
		return fmt.Errorf("connect for migration: %w", err)
	}
	defer m.Close()
	m.Log = slogPrinter{log: log}

	return step(m, log)
}

func resolveCommand(command string, args []string) (migrateStep, error) {
	switch command {
	case "up":
		return stepUp, nil
	case "down":
		return stepDown, nil
	case "version":
		return stepVersion, nil
	case "force":
		if len(args) == 0 {
			return nil, errors.New("force needs the version to set")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("force version %q: %w", args[0], err)
		}
		return func(m *migrate.Migrate, log *slog.Logger) error {
			if err := m.Force(version); err != nil {
				return fmt.Errorf("force version: %w", err)
			}
			log.Info("schema version forced", slog.Int("version", version))
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown migrate command %q (want up, down, version, or force)", command)
	}
}

func stepUp(m *migrate.Migrate, log *slog.Logger) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Info("schema up to date", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

func stepDown(m *migrate.Migrate, log *slog.Logger) error {
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back migrations: %w", err)
	}
	log.Info("all migrations rolled back")
	return nil
}

func stepVersion(m *migrate.Migrate, log *slog.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	return nil
}

// slogPrinter lets the migrate library report through slog.
type slogPrinter struct {
	log *slog.Logger
}

func (p slogPrinter) Printf(format string, v ...any) {
	p.log.Info(fmt.Sprintf(format, v...))
}

func (p slogPrinter) Verbose() bool { return false }
