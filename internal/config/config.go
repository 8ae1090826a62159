package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RunMigrations  bool   `toml:"run_migrations"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// auth
	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	AuthSessionTTLHours         int `toml:"auth_session_ttl_hours"`
	// workout sessions
	WorkoutSessionIdleMinutes  int  `toml:"workout_session_idle_minutes"`
	CommitOpenExerciseOnFinish bool `toml:"commit_open_exercise_on_finish"`
	// exercises catalog cache
	ExerciseCacheSizeMB     int `toml:"exercise_cache_size_mb"`
	ExerciseCacheTTLSeconds int `toml:"exercise_cache_ttl_seconds"`

	AllowedOrigins []string `toml:"allowed_origins"`
}

func (c *Config) AuthSessionTTL() time.Duration {
	if c.AuthSessionTTLHours <= 0 {
		return 24 * 7 * time.Hour
	}
	return time.Duration(c.AuthSessionTTLHours) * time.Hour
}

func (c *Config) WorkoutSessionIdleTimeout() time.Duration {
	if c.WorkoutSessionIdleMinutes <= 0 {
		return 4 * time.Hour
	}
	return time.Duration(c.WorkoutSessionIdleMinutes) * time.Minute
}

type Toml struct {
	Development *Config
	Production  *Config
	DockerDev   *Config `toml:"dockerdev"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev":
		cfg = t.DockerDev
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}

	return cfg, nil
}

// Secrets are never kept in the config file, they come from the environment.
type Secrets struct {
	RedisPassword    string `env:"WORKOUTNOTES_REDIS_PASS"`
	PostgresPassword string `env:"WORKOUTNOTES_POSTGRES_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`
	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED" envDefault:"false"`
	HoneycombAPIKey  string `env:"HONEYCOMB_API_KEY"`
	OtelServiceName  string `env:"OTEL_SERVICE_NAME"`
}

func LoadSecrets() (Secrets, error) {
	secrets, err := env.ParseAs[Secrets]()
	if err != nil {
		return Secrets{}, fmt.Errorf("parse env secrets: %w", err)
	}
	return secrets, nil
}
