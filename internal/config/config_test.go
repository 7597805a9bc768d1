package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "00:00", cfg.Scheduler.RunAt)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.False(t, cfg.Mood.IgnoresAdoption)
	assert.False(t, cfg.IsProduction())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{
		"APP_ENV":               "production",
		"PORT":                  "9090",
		"STORAGE_DRIVER":        "sqlite",
		"SQLITE_PATH":           "/tmp/pets.db",
		"REDIS_URL":             "redis://localhost:6379/0",
		"SCHEDULER_ENABLED":     "false",
		"SCHEDULER_TIMEZONE":    "America/Argentina/Buenos_Aires",
		"SCHEDULER_RUN_AT":      "03:30",
		"MOOD_IGNORES_ADOPTION": "true",
		"INITIALIZE_DATA":       "1",
		"LOG_LEVEL":             "debug",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/pets.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "03:30", cfg.Scheduler.RunAt)
	assert.True(t, cfg.Mood.IgnoresAdoption)
	assert.True(t, cfg.InitializeData)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_HTTPAddrWinsOverPort(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{"PORT": "9090", "HTTP_ADDR": "127.0.0.1:7000"})))
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr)
}

func TestApplyEnv_DSNImpliesPostgres(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.applyEnv(envMap(map[string]string{"DB_DSN": "postgres://u:p@localhost/db"})))
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
}

func TestApplyEnv_RejectsBadBool(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(envMap(map[string]string{"SCHEDULER_ENABLED": "sometimes"}))
	assert.ErrorContains(t, err, "SCHEDULER_ENABLED")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown env":        func(c *Config) { c.Env = "staging" },
		"unknown driver":     func(c *Config) { c.Storage.Driver = "mongo" },
		"postgres needs dsn": func(c *Config) { c.Storage.Driver = DriverPostgres },
		"bad timezone":       func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" },
		"bad run_at":         func(c *Config) { c.Scheduler.RunAt = "25:00" },
		"empty addr":         func(c *Config) { c.HTTP.Addr = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: test
http:
  addr: ":7070"
  read_timeout: 2s
storage:
  driver: sqlite
  sqlite_path: ./catalog.db
scheduler:
  run_at: "06:15"
  timezone: Europe/Madrid
`), 0o600))

	t.Setenv("SCHEDULER_RUN_AT", "07:45")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EnvTest, cfg.Env)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout, "unset keys keep defaults")
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "07:45", cfg.Scheduler.RunAt, "env overrides file")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}
