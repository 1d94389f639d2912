package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const maxImportWorkers = 10

type DatabaseOptions struct {
	URL          string `env:"DATABASE_URL"`
	EnsureSchema bool   `env:"DB_ENSURE_SCHEMA" envDefault:"true"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

type ImportOptions struct {
	BaseDir           string        `env:"IMPORT_BASE_DIR" envDefault:"."`
	Workers           int           `env:"IMPORT_WORKERS" envDefault:"2"`
	BatchSize         int           `env:"IMPORT_BATCH_SIZE" envDefault:"10"`
	PollInterval      time.Duration `env:"IMPORT_POLL_INTERVAL" envDefault:"1s"`
	LeaseDuration     time.Duration `env:"IMPORT_JOB_LEASE" envDefault:"60s"`
	HeartbeatInterval time.Duration `env:"IMPORT_HEARTBEAT_INTERVAL" envDefault:"15s"`
}

type Config struct {
	Database    DatabaseOptions
	Import      ImportOptions
	Port        string        `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string        `env:"LOG_FORMAT" envDefault:"text"`
	MetricsPath string        `env:"METRICS_PATH" envDefault:"/metrics"`
	ShutdownTTL time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the given .env files that exist, then parses the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Import.Workers <= 0 || c.Import.Workers > maxImportWorkers {
		return fmt.Errorf("IMPORT_WORKERS must be between 1 and %d, got %d", maxImportWorkers, c.Import.Workers)
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be positive, got %d", c.Import.BatchSize)
	}
	if c.Import.HeartbeatInterval >= c.Import.LeaseDuration {
		return fmt.Errorf("IMPORT_HEARTBEAT_INTERVAL (%s) must be shorter than IMPORT_JOB_LEASE (%s)", c.Import.HeartbeatInterval, c.Import.LeaseDuration)
	}
	return nil
}

func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}
