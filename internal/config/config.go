// Package config loads lifeos settings from a YAML file, LIFEOS_*
// environment variables and compiled defaults, in that order of
// precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dori/lifeos/internal/board"
	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/ui/theme"
	"github.com/spf13/viper"
)

// Config is the full lifeos configuration
type Config struct {
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	DBPath       string `mapstructure:"db_path" yaml:"db_path,omitempty"`
	RemoteURL    string `mapstructure:"remote_url" yaml:"remote_url"`
	GroupingMode string `mapstructure:"grouping_mode" yaml:"grouping_mode"`
	Theme        string `mapstructure:"theme" yaml:"theme"`

	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Gateway GatewayConfig `mapstructure:"gateway" yaml:"gateway"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
}

// LogConfig configures the slog logger
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`

	// File is where the board logs; the terminal belongs to the UI.
	// Relative paths are resolved against DataDir.
	File string `mapstructure:"file" yaml:"file"`
}

// GatewayConfig tunes remote mutations
type GatewayConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Workers        int           `mapstructure:"workers" yaml:"workers"`
	MaxAttempts    int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" yaml:"max_backoff"`
}

// ServerConfig configures `lifeos serve`
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:      db.DefaultDataDir(),
		GroupingMode: string(board.ModeStatus),
		Theme:        "nord",
		Log: LogConfig{
			Level: "info",
			File:  "lifeos.log",
		},
		Gateway: GatewayConfig{
			Timeout:        10 * time.Second,
			Workers:        4,
			MaxAttempts:    5,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:7420",
			AllowedOrigins: []string{"*"},
		},
	}
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".lifeos", "config.yaml")
	}
	return filepath.Join(dir, "lifeos", "config.yaml")
}

// Load reads configuration. An empty path means DefaultPath, which may
// be missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("LIFEOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so env overrides reach Unmarshal
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("remote_url", d.RemoteURL)
	v.SetDefault("grouping_mode", d.GroupingMode)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("gateway.timeout", d.Gateway.Timeout)
	v.SetDefault("gateway.workers", d.Gateway.Workers)
	v.SetDefault("gateway.max_attempts", d.Gateway.MaxAttempts)
	v.SetDefault("gateway.initial_backoff", d.Gateway.InitialBackoff)
	v.SetDefault("gateway.max_backoff", d.Gateway.MaxBackoff)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
}

func (c *Config) resolvePaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "lifeos.db")
	}
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(c.DataDir, c.Log.File)
	}
}

// Validate checks values that would otherwise fail deep inside the app
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if _, err := board.ParseMode(c.GroupingMode); err != nil {
		errs = append(errs, fmt.Errorf("grouping_mode: %w", err))
	}
	if _, ok := theme.ByName(c.Theme); !ok {
		errs = append(errs, fmt.Errorf("theme: unknown theme %q", c.Theme))
	}
	if c.RemoteURL != "" {
		u, err := url.Parse(c.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("remote_url: %q is not an http(s) URL", c.RemoteURL))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	g := c.Gateway
	if g.Timeout <= 0 {
		errs = append(errs, errors.New("gateway.timeout must be positive"))
	}
	if g.Workers <= 0 {
		errs = append(errs, errors.New("gateway.workers must be positive"))
	}
	if g.MaxAttempts <= 0 {
		errs = append(errs, errors.New("gateway.max_attempts must be positive"))
	}
	if g.InitialBackoff <= 0 || g.MaxBackoff < g.InitialBackoff {
		errs = append(errs, errors.New("gateway backoff must satisfy 0 < initial_backoff <= max_backoff"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}

	return errors.Join(errs...)
}
