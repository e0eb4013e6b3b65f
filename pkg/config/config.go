package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "LEADFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	Demo         DemoConfig
	Import       ImportConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LEADFLOW_APP_ENV" default:"dev"`
	Port         string `envconfig:"LEADFLOW_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LEADFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEADFLOW_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"LEADFLOW_DB_DSN"`
	Driver string `envconfig:"LEADFLOW_DB_DRIVER" default:"sqlite"`

	MaxOpenConns    int           `envconfig:"LEADFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEADFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEADFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEADFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

func (db *DBConfig) validate() error {
	switch db.Driver {
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("LEADFLOW_DB_DSN is required for the postgres driver")
		}
	case DBDriverSQLite:
		if db.DSN == "" {
			db.DSN = "leadflow.db"
		}
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	return nil
}

// RedisConfig is optional: when URL is empty the rate limiter falls back to
// its in-process counter store.
type RedisConfig struct {
	URL          string        `envconfig:"LEADFLOW_REDIS_URL"`
	PoolSize     int           `envconfig:"LEADFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEADFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEADFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEADFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEADFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

// RateLimitConfig holds one fixed window per mutating operation class.
type RateLimitConfig struct {
	Window      time.Duration `envconfig:"LEADFLOW_RATE_LIMIT_WINDOW" default:"1m"`
	CreateLimit int           `envconfig:"LEADFLOW_RATE_LIMIT_CREATE" default:"50"`
	UpdateLimit int           `envconfig:"LEADFLOW_RATE_LIMIT_UPDATE" default:"20"`
	ImportLimit int           `envconfig:"LEADFLOW_RATE_LIMIT_IMPORT" default:"5"`
}

// DemoConfig identifies the single bootstrap user every request runs as.
type DemoConfig struct {
	UserID    string `envconfig:"LEADFLOW_DEMO_USER_ID" default:"demo-user-1"`
	UserEmail string `envconfig:"LEADFLOW_DEMO_USER_EMAIL" default:"demo@example.com"`
	UserName  string `envconfig:"LEADFLOW_DEMO_USER_NAME" default:"Demo User"`
}

type ImportConfig struct {
	MaxRows int `envconfig:"LEADFLOW_IMPORT_MAX_ROWS" default:"200"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LEADFLOW_AUTO_MIGRATE" default:"true"`
}
