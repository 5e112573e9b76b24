package config

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv() envconfig.Lookuper {
	return envconfig.MapLookuper(map[string]string{})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.Context(), Options{Lookuper: noEnv()})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load(t.Context(), Options{Path: "testdata/sqlite.yaml", Lookuper: noEnv()})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "/tmp/socialgraph-test.db", cfg.SQLite.Path)
	assert.Equal(t, "logical", cfg.Clock)
	assert.True(t, cfg.Events.Log)
	assert.False(t, cfg.Events.Publish)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(t.Context(), Options{Path: "testdata/unknown_key.yaml", Lookuper: noEnv()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.Context(), Options{Path: filepath.Join(t.TempDir(), "nope.yaml"), Lookuper: noEnv()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_SchemaRejectsBackend(t *testing.T) {
	_, err := Load(t.Context(), Options{Path: "testdata/bad_backend.yaml", Lookuper: noEnv()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	env := envconfig.MapLookuper(map[string]string{
		"SOCIALGRAPH_BACKEND":        "redis",
		"SOCIALGRAPH_REDIS_ADDR":     "cache:6380",
		"SOCIALGRAPH_REDIS_DB":       "3",
		"SOCIALGRAPH_EVENTS_PUBLISH": "true",
		"BACKEND":                    "ignored-without-prefix",
	})
	cfg, err := Load(t.Context(), Options{Path: "testdata/sqlite.yaml", Lookuper: env})
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Events.Publish)
	assert.True(t, cfg.Events.Log, "yaml value survives when env is silent")
}

func TestLoad_EnvFile(t *testing.T) {
	env := envconfig.MapLookuper(map[string]string{"SOCIALGRAPH_CLOCK": "wall"})
	cfg, err := Load(t.Context(), Options{EnvFile: "testdata/test.env", Lookuper: env})
	require.NoError(t, err)

	assert.Equal(t, "fromdotenv", cfg.Redis.Prefix)
	assert.Equal(t, "wall", cfg.Clock, "process environment wins over the env file")
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	cfg, err := Load(t.Context(), Options{EnvFile: filepath.Join(t.TempDir(), ".env"), Lookuper: noEnv()})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis backend", func(c *Config) { c.Backend = "redis" }, false},
		{"unknown clock", func(c *Config) { c.Clock = "lamport" }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"redis db out of range", func(c *Config) { c.Redis.DB = 16 }, true},
		{"empty prefix", func(c *Config) { c.Redis.Prefix = "" }, true},
		{"sqlite without path", func(c *Config) {
			c.Backend = "sqlite"
			c.SQLite.Path = ""
		}, true},
		{"event log without path", func(c *Config) {
			c.Events.Log = true
			c.SQLite.Path = ""
		}, true},
		{"publish without addr", func(c *Config) {
			c.Events.Publish = true
			c.Redis.Addr = ""
		}, true},
		{"memory ignores empty sqlite path", func(c *Config) { c.SQLite.Path = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
