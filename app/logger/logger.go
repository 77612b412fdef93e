package logger

import (
	"io"
	"os"
	"time"

	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
)

// New builds the application logger. Error and fatal events are forwarded
// to Rollbar when a token is configured.
func New(conf *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if conf.Debug || !conf.IsProduction() {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Str("app", "lms").Logger()
	if conf.Rollbar.Token != "" {
		rollbar.SetToken(conf.Rollbar.Token)
		rollbar.SetEnvironment(conf.Env)
		rollbar.SetCodeVersion(conf.Build)
		if host, err := os.Hostname(); err == nil {
			rollbar.SetServerHost(host)
		}
		log = log.Hook(RollbarHook{})
	}
	return log
}

// Nop returns a logger that discards everything; used by tests and tools.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// RollbarHook reports error-level events to Rollbar.
type RollbarHook struct{}

func (RollbarHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	switch level {
	case zerolog.ErrorLevel:
		rollbar.Log(rollbar.ERR, msg)
	case zerolog.FatalLevel, zerolog.PanicLevel:
		rollbar.Log(rollbar.CRIT, msg)
		rollbar.Wait()
	}
}

// Close flushes pending Rollbar items.
func Close() {
	rollbar.Close()
}
