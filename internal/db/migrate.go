package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"campaign-escrow/db/migrations"
)

// ErrDirtySchema means a previous migration failed halfway and the schema
// needs manual repair before the ledger can start.
var ErrDirtySchema = errors.New("ledger schema is dirty")

// Migrate brings the ledger schema at addr to migrations.Version.
func Migrate(addr string, logger *slog.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	defer src.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", src, addr)
	if err != nil {
		return err
	}
	defer mg.Close()

	from, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return err
	case dirty:
		return fmt.Errorf("%w at version %d", ErrDirtySchema, from)
	}

	err = mg.Migrate(migrations.Version)
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Debug("ledger schema up to date", slog.Uint64("version", uint64(migrations.Version)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %d -> %d: %w", from, migrations.Version, err)
	}
	logger.Info("ledger schema migrated",
		slog.Uint64("from", uint64(from)),
		slog.Uint64("to", uint64(migrations.Version)),
	)
	return nil
}
