// Package server assembles the fiber application from the route table.
package server

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/courses"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/dashboard"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/enrollment"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/events"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/resources"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/updates"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/users"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/videos"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

type Options struct {
	Config *config.Config
	Store  database.Store
	Files  *files.Manager
	Log    zerolog.Logger
	// Views overrides the embedded template engine.
	Views fiber.Views
	// AccessLog enables per request logging.
	AccessLog bool
}

// New builds the application with every route behind the access gate.
func New(opts Options) (*fiber.App, error) {
	conf := opts.Config
	views := opts.Views
	if views == nil {
		engine, err := web.Engine(conf.Debug && !conf.IsProduction())
		if err != nil {
			return nil, err
		}
		views = engine
	}

	app := fiber.New(fiber.Config{
		AppName:               web.AppName,
		Views:                 views,
		PassLocalsToViews:     true,
		Immutable:             true,
		ErrorHandler:          errorHandler(opts.Log),
		BodyLimit:             conf.Uploads.MaxBytes,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		DisableStartupMessage: conf.IsProduction(),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !conf.IsProduction()}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{Output: os.Stdout}))
	}

	sessions := auth.NewSessions(conf.Session)
	app.Use(sessions.Middleware(opts.Store))

	hasher := auth.NewHasher(conf.Auth.BcryptCost)
	deps := web.Deps{Store: opts.Store, Files: opts.Files, Log: opts.Log}
	h := handlers{
		auth:       auth.NewHandler(opts.Store, sessions, hasher, opts.Log),
		dashboard:  dashboard.New(deps),
		courses:    courses.New(deps),
		enrollment: enrollment.New(deps),
		resources:  resources.New(deps),
		videos:     videos.New(deps),
		updates:    updates.New(deps),
		events:     events.New(deps),
		users:      users.New(deps, hasher),
		health:     healthz(opts.Store),
	}
	for _, r := range routes(h) {
		app.Add(r.Method, r.Path, auth.Gate(r.Policy), r.Handler)
		if r.Method == fiber.MethodGet {
			app.Add(fiber.MethodHead, r.Path, auth.Gate(r.Policy), r.Handler)
		}
	}

	// Catch-all route for 404 errors (must be last)
	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
	return app, nil
}

func healthz(store database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
