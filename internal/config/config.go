// Package config resuelve la configuración del servicio:
// defaults -> archivo YAML opcional -> variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pet-adoption-catalog/internal/domain/moodrefresh"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env  string     `yaml:"env"`
	HTTP HTTPConfig `yaml:"http"`

	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Mood      MoodConfig      `yaml:"mood"`
	Log       LogConfig       `yaml:"log"`

	// InitializeData siembra datos de ejemplo al arrancar.
	InitializeData bool `yaml:"initialize_data"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	// URL vacía => sin publicación de eventos.
	URL           string `yaml:"url"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Timezone string `yaml:"timezone"`
	RunAt    string `yaml:"run_at"`
}

type MoodConfig struct {
	IgnoresAdoption bool `yaml:"ignores_adoption"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	App    string `yaml:"app"`
}

func Default() Config {
	return Config{
		Env: EnvDevelopment,
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:     DriverMemory,
			SQLitePath: "data/petcatalog.db",
		},
		Redis: RedisConfig{
			ChannelPrefix: "petcatalog",
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Timezone: "UTC",
			RunAt:    "00:00",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			App:    "pet-adoption-catalog",
		},
	}
}

// Load aplica defaults, luego el YAML (si path != ""), luego el entorno.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", key, v)
		}
		*dst = b
		return nil
	}

	str("APP_ENV", &c.Env)

	// PORT (estilo PaaS) y HTTP_ADDR; HTTP_ADDR gana si vienen ambos.
	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		c.HTTP.Addr = ":" + strings.TrimSpace(v)
	}
	str("HTTP_ADDR", &c.HTTP.Addr)

	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("DB_DSN", &c.Storage.DSN)
	str("SQLITE_PATH", &c.Storage.SQLitePath)

	str("REDIS_URL", &c.Redis.URL)
	str("REDIS_CHANNEL_PREFIX", &c.Redis.ChannelPrefix)

	str("SCHEDULER_TIMEZONE", &c.Scheduler.Timezone)
	str("SCHEDULER_RUN_AT", &c.Scheduler.RunAt)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("APP_NAME", &c.Log.App)

	for key, dst := range map[string]*bool{
		"SCHEDULER_ENABLED":     &c.Scheduler.Enabled,
		"MOOD_IGNORES_ADOPTION": &c.Mood.IgnoresAdoption,
		"INITIALIZE_DATA":       &c.InitializeData,
	} {
		if err := boolean(key, dst); err != nil {
			return err
		}
	}

	// DB_DSN sin driver explícito implica postgres (compat con el modo anterior).
	if _, ok := lookup("STORAGE_DRIVER"); !ok && c.Storage.DSN != "" && c.Storage.Driver == DriverMemory {
		c.Storage.Driver = DriverPostgres
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("env must be one of development, production, test; got %q", c.Env)
	}

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("http.addr is required")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("storage.driver must be memory, postgres or sqlite; got %q", c.Storage.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, _, err := moodrefresh.ParseRunAt(c.Scheduler.RunAt); err != nil {
		return fmt.Errorf("scheduler.run_at: %w", err)
	}
	return nil
}

// IsProduction: las rutas de admin sólo se montan fuera de producción.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location resuelve scheduler.timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scheduler.timezone: %w", err)
	}
	return loc, nil
}
