package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SOCIALGRAPH_"

//go:embed schema.cue
var schemaSource string

// Config is the host configuration.
type Config struct {
	Backend string       `yaml:"backend" json:"backend" env:"BACKEND,overwrite"`
	SQLite  SQLiteConfig `yaml:"sqlite" json:"sqlite" env:",prefix=SQLITE_"`
	Redis   RedisConfig  `yaml:"redis" json:"redis" env:",prefix=REDIS_"`
	Clock   string       `yaml:"clock" json:"clock" env:"CLOCK,overwrite"`
	Events  EventsConfig `yaml:"events" json:"events" env:",prefix=EVENTS_"`
	Log     LogConfig    `yaml:"log" json:"log" env:",prefix=LOG_"`
}

// SQLiteConfig locates the SQLite database used by the sqlite backend and
// the event log.
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path" env:"PATH,overwrite"`
}

// RedisConfig selects the Redis server, database and key prefix.
type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr" env:"ADDR,overwrite"`
	DB     int    `yaml:"db" json:"db" env:"DB,overwrite"`
	Prefix string `yaml:"prefix" json:"prefix" env:"PREFIX,overwrite"`
}

// EventsConfig chooses where domain events go besides the caller.
type EventsConfig struct {
	Log     bool `yaml:"log" json:"log" env:"LOG,overwrite"`
	Publish bool `yaml:"publish" json:"publish" env:"PUBLISH,overwrite"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" env:"LEVEL,overwrite"`
}

// Default returns an in-memory configuration with wall-clock timestamps and
// no event delivery.
func Default() Config {
	return Config{
		Backend: "memory",
		SQLite:  SQLiteConfig{Path: "socialgraph.db"},
		Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "socialgraph"},
		Clock:   "wall",
		Log:     LogConfig{Level: "info"},
	}
}

// Options tells Load where to look.
type Options struct {
	// Path is the YAML file. Empty means defaults only.
	Path string
	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string
	// Lookuper overrides the process environment. Used by tests.
	Lookuper envconfig.Lookuper
}

// Load merges defaults, the YAML file and the environment, then validates.
func Load(ctx context.Context, opts Options) (Config, error) {
	cfg := Default()

	if opts.Path != "" {
		if err := readYAML(opts.Path, &cfg); err != nil {
			return Config{}, err
		}
	}

	lookuper := opts.Lookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	if opts.EnvFile != "" {
		dotenv, err := godotenv.Read(opts.EnvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read %s: %w", opts.EnvFile, err)
		default:
			lookuper = envconfig.MultiLookuper(lookuper, envconfig.MapLookuper(dotenv))
		}
	}

	if err := envconfig.ProcessWith(ctx, &cfg, envconfig.PrefixLookuper(EnvPrefix, lookuper)); err != nil {
		return Config{}, fmt.Errorf("parsing env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks c against the embedded CUE schema.
func (c Config) Validate() error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	v := def.Unify(cctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogLevel parses Log.Level. Unknown levels fall back to Info.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
