// Command lmsadmin runs operator tasks: migrations and admin accounts.
package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/logger"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("loading configuration")
	}
	log := logger.New(conf)
	defer logger.Close()

	db, err := config.OpenDB(conf.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer db.Close()

	cli := &commandLine{
		users:  database.NewPostgres(db),
		hasher: auth.NewHasher(conf.Auth.BcryptCost),
		migrate: func(command string, args ...string) error {
			return database.Migrate(db.DB, log, command, args...)
		},
		out: os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
