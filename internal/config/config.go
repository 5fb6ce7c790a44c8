// Package config loads runtime configuration from a config file, environment
// variables, and flags, in ascending precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	// SkillsDir is the skills root. Empty means auto-discovery.
	SkillsDir string `mapstructure:"skills_dir"`

	// Server tunes the streaming HTTP server.
	Server ServerConfig `mapstructure:"server"`

	// Render tunes terminal output.
	Render RenderConfig `mapstructure:"render"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	HistoryLimit   int      `mapstructure:"history_limit"`
}

// RenderConfig holds display settings.
type RenderConfig struct {
	Color string `mapstructure:"color"` // auto, always, never
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			HistoryLimit:   256,
		},
		Render: RenderConfig{Color: "auto"},
	}
}

// Load reads configuration from skillstream.yaml (current directory or
// ~/.skillstream) and SKILLSTREAM_* environment variables. A missing config
// file is not an error.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. When path is empty the
// default search paths apply; a named file that cannot be read is an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("skillstream")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.skillstream")
	}
	v.SetEnvPrefix("SKILLSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("skills_dir", defaults.SkillsDir)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.allowed_origins", defaults.Server.AllowedOrigins)
	v.SetDefault("server.history_limit", defaults.Server.HistoryLimit)
	v.SetDefault("render.color", defaults.Render.Color)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Render.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid render.color %q (want auto, always, or never)", c.Render.Color)
	}
	if c.Server.HistoryLimit < 0 {
		return fmt.Errorf("server.history_limit must be >= 0")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	return nil
}
