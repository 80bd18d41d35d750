package postgres

import (
	"embed"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/clauselens/clauselens/internal/infrastructure/monitoring/logging"
	"github.com/clauselens/clauselens/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending schema migrations embedded in the binary.
// An up-to-date schema is not an error.
func Migrate(dsn string, log logging.Logger) error {
	if log == nil {
		log = logging.NewNopLogger()
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to load embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateDSN(dsn))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create migrator")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to run migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Warn("Failed to read migration version", logging.Err(err))
	}
	log.Info("Database migrations applied",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty))
	return nil
}

// migrateDSN rewrites the pool DSN onto the scheme registered by the
// migrate pgx/v5 database driver.
func migrateDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") {
		return "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
	}
	return dsn
}
