package database

import (
	"database/sql"
	"embed"
	"strings"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrate runs a goose command (up, down, status, redo, version...) against db.
func Migrate(db *sql.DB, log zerolog.Logger, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrate %s", command)
	}
	return nil
}

// RunMigrations applies every pending migration.
func RunMigrations(db *sql.DB, log zerolog.Logger) error {
	log.Info().Msg("running database migrations")
	if err := Migrate(db, log, "up"); err != nil {
		return err
	}
	log.Info().Msg("database migrations completed")
	return nil
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(strings.TrimSuffix(format, "\n"), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(strings.TrimSuffix(format, "\n"), v...)
}
