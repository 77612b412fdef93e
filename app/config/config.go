package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const devSessionSecret = "lms-dev-session-secret" // development only

type Config struct {
	Env      string
	Debug    bool
	Port     int
	Build    string
	Database DatabaseConfig
	Uploads  UploadsConfig
	Session  SessionConfig
	Auth     AuthConfig
	Rollbar  RollbarConfig
	// Bootstrap is the operator-supplied first admin, created only when no admin exists.
	Bootstrap BootstrapConfig
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	// Memory runs against the in-memory store instead of Postgres.
	Memory bool
}

type UploadsConfig struct {
	Dir      string
	MaxBytes int
	// SweepInterval of zero disables the orphaned upload sweeper.
	SweepInterval time.Duration
	SweepGrace    time.Duration
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type AuthConfig struct {
	BcryptCost int
}

type RollbarConfig struct {
	Token string
}

type BootstrapConfig struct {
	AdminName     string
	AdminPhone    string
	AdminPassword string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	if c.Uploads.Dir == "" {
		return errors.New("uploads dir must be set")
	}
	if c.IsProduction() {
		if c.Session.Secret == "" || c.Session.Secret == devSessionSecret {
			return errors.New("LMS_SESSION_SECRET must be set in production")
		}
		if c.Database.Memory {
			return errors.New("the in-memory database cannot be used in production")
		}
	}
	if (c.Bootstrap.AdminPhone == "") != (c.Bootstrap.AdminPassword == "") {
		return errors.New("bootstrap admin needs both phone and password")
	}
	return nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("debug", false)
	v.SetDefault("port", 5000)
	v.SetDefault("build", "dev")
	v.SetDefault("database.url", "postgres://postgres@localhost:5432/lms?sslmode=disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.memory", false)
	v.SetDefault("uploads.dir", "static/uploads")
	v.SetDefault("uploads.max_bytes", 16<<20)
	v.SetDefault("uploads.sweep_interval", 6*time.Hour)
	v.SetDefault("uploads.sweep_grace", time.Hour)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cookie_name", "lms_session")
	v.SetDefault("session.secure", false)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("rollbar.token", "")
	v.SetDefault("bootstrap.admin_name", "Administrator")
	v.SetDefault("bootstrap.admin_phone", "")
	v.SetDefault("bootstrap.admin_password", "")
}

// Load reads configuration from defaults, an optional .env file and LMS_* variables.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.Wrap(err, "loading .env")
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "stat .env")
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	defaults(v)
	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	conf := &Config{
		Env:   strings.ToLower(v.GetString("env")),
		Debug: v.GetBool("debug"),
		Port:  v.GetInt("port"),
		Build: v.GetString("build"),
		Database: DatabaseConfig{
			URL:          v.GetString("database.url"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			Memory:       v.GetBool("database.memory"),
		},
		Uploads: UploadsConfig{
			Dir:           v.GetString("uploads.dir"),
			MaxBytes:      v.GetInt("uploads.max_bytes"),
			SweepInterval: v.GetDuration("uploads.sweep_interval"),
			SweepGrace:    v.GetDuration("uploads.sweep_grace"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("session.secret"),
			TTL:        v.GetDuration("session.ttl"),
			CookieName: v.GetString("session.cookie_name"),
			Secure:     v.GetBool("session.secure"),
		},
		Auth:    AuthConfig{BcryptCost: v.GetInt("auth.bcrypt_cost")},
		Rollbar: RollbarConfig{Token: v.GetString("rollbar.token")},
		Bootstrap: BootstrapConfig{
			AdminName:     v.GetString("bootstrap.admin_name"),
			AdminPhone:    v.GetString("bootstrap.admin_phone"),
			AdminPassword: v.GetString("bootstrap.admin_password"),
		},
	}
	if conf.Session.Secret == "" && !conf.IsProduction() {
		conf.Session.Secret = devSessionSecret
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// OpenDB opens the Postgres pool and checks it is reachable.
func OpenDB(conf DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(conf.MaxOpenConns)
	db.SetMaxIdleConns(conf.MaxIdleConns)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	return db, nil
}
