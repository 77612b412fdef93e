package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	inmemdb "github.com/TahsinShan/SAT-ar-Matha/app/database/inmem"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
	"github.com/TahsinShan/SAT-ar-Matha/app/logger"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/server"
	"github.com/TahsinShan/SAT-ar-Matha/app/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("loading configuration")
	}
	log := logger.New(conf)
	defer logger.Close()

	if err = run(conf, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(conf *config.Config, log zerolog.Logger) error {
	store, closeStore, err := openStore(conf, log)
	if err != nil {
		return err
	}
	defer closeStore()

	fileManager, err := files.NewManager(conf.Uploads.Dir, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = auth.EnsureBootstrapAdmin(ctx, store, auth.NewHasher(conf.Auth.BcryptCost), conf.Bootstrap, log)
	cancel()
	if err != nil {
		return err
	}

	jobs, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	if conf.Uploads.SweepInterval > 0 {
		services.NewSweeper(store, fileManager, conf.Uploads.SweepGrace, log).Start(jobs, conf.Uploads.SweepInterval)
	}

	app, err := server.New(server.Options{
		Config:    conf,
		Store:     store,
		Files:     fileManager,
		Log:       log,
		AccessLog: true,
	})
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", conf.Address()).Str("env", conf.Env).Msg("server starting")
		errc <- app.Listen(conf.Address())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err = <-errc:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}

func openStore(conf *config.Config, log zerolog.Logger) (database.Store, func(), error) {
	if conf.Database.Memory {
		log.Warn().Msg("using the in-memory database, data is lost on exit")
		return inmemdb.Open(), func() {}, nil
	}

	db, err := config.OpenDB(conf.Database)
	if err != nil {
		return nil, nil, err
	}
	if err = database.RunMigrations(db.DB, log); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return database.NewPostgres(db), func() { _ = db.Close() }, nil
}
