package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"

	PolicyOverwrite = "overwrite"
	PolicyReject    = "reject"

	// MinPollInterval — нижняя граница обычного интервала опроса.
	MinPollInterval = 5 * time.Second
)

// Config хранит основные настройки приложения.
type Config struct {
	Env           string `yaml:"env" env:"ENV" env-default:"local"`
	TelegramToken string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN" env-required:"true"`
	BotDebug      bool   `yaml:"bot_debug" env:"BOT_DEBUG" env-default:"false"`

	Storage Storage `yaml:"storage"`
	Refresh Refresh `yaml:"refresh"`
}

type Storage struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`

	// DuplicatePolicy: overwrite или reject.
	DuplicatePolicy string `yaml:"duplicate_policy" env:"DUPLICATE_POLICY" env-default:"overwrite"`

	DatabaseURL   string `yaml:"database_url" env:"DATABASE_URL"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	PurgeSchedule string        `yaml:"purge_schedule" env:"PURGE_SCHEDULE" env-default:"@every 1h"`
	PurgeGrace    time.Duration `yaml:"purge_grace" env:"PURGE_GRACE" env-default:"1h"`
}

type Refresh struct {
	PollInterval  time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL" env-default:"5s"`
	FinalInterval time.Duration `yaml:"final_interval" env:"FINAL_INTERVAL" env-default:"1s"`
	FinalWindow   time.Duration `yaml:"final_window" env:"FINAL_WINDOW" env-default:"10s"`
}

// Load читает настройки из файла (флаг -config или CONFIG_PATH), а без файла — из окружения.
func Load() (*Config, error) {
	return LoadPath(fetchConfigPath())
}

func LoadPath(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read env: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize проверяет перечисления и подтягивает интервалы к допустимым значениям.
func (c *Config) Normalize() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Storage.DuplicatePolicy {
	case PolicyOverwrite, PolicyReject:
	default:
		return fmt.Errorf("unknown duplicate policy %q", c.Storage.DuplicatePolicy)
	}

	if c.Refresh.PollInterval < MinPollInterval {
		c.Refresh.PollInterval = MinPollInterval
	}
	if c.Refresh.FinalInterval <= 0 || c.Refresh.FinalInterval > c.Refresh.PollInterval {
		c.Refresh.FinalInterval = time.Second
	}
	if c.Refresh.FinalWindow < 0 {
		c.Refresh.FinalWindow = 0
	}
	if c.Storage.PurgeGrace <= 0 {
		c.Storage.PurgeGrace = time.Hour
	}
	return nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
