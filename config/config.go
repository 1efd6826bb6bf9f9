// Package config provides the color scheme and the layered configuration:
// defaults, hawkbot.yaml, HAWKBOT_* environment variables (optionally
// seeded from a .env file) and command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultPrefix is the command prefix used when a guild has not set one.
const DefaultPrefix = "hb "

// ColorScheme defines the color palette for grammar and reply rendering.
type ColorScheme struct {
	Base      string // root/base command color (hex)
	Subcmd    string // subcommand color
	Param     string // parameter names
	Required  string // required parameter names
	Alias     string // aliases, e.g. (gen)
	Shorthand string // shorthand examples such as x3
	Mode      string // positional/rest badges
	Value     string // parsed values
	Invalid   string // invalid/error color
	Selected  string // selected item in TUI
	Muted     string // descriptions and hints
}

// DefaultColors returns the default color scheme.
func DefaultColors() ColorScheme {
	return ColorScheme{
		Base:      "#FFFFFF",
		Subcmd:    "#5EA4F5",
		Param:     "#50FA7B",
		Required:  "#FFB86C",
		Alias:     "#BD93F9",
		Shorthand: "#8BE9FD",
		Mode:      "#F1FA8C",
		Value:     "#FF79C6",
		Invalid:   "#FF5555",
		Selected:  "#00BFFF",
		Muted:     "#6272A4",
	}
}

// Config holds all hawkbot configuration.
type Config struct {
	Colors  ColorScheme
	NoColor bool

	Prefix   string
	OwnerID  string
	DataDir  string
	LogLevel string
	Output   string

	// Identity of the local console session.
	Guild   string
	Channel string
	User    string

	Roster       string
	HistoryLimit int
	Workers      int
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Colors:       DefaultColors(),
		NoColor:      os.Getenv("NO_COLOR") != "",
		Prefix:       DefaultPrefix,
		DataDir:      filepath.Join(xdg.DataHome, "hawkbot"),
		LogLevel:     "warn",
		Output:       "text",
		Guild:        "console",
		Channel:      "general",
		User:         "you",
		HistoryLimit: 20,
		Workers:      4,
	}
}

// DBPath is the location of the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "hawkbot.db")
}

// Level returns the configured zerolog level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// NewViper returns a viper instance with hawkbot's defaults, environment
// binding and config file search path.
func NewViper() *viper.Viper {
	def := DefaultConfig()
	v := viper.New()
	v.SetConfigName("hawkbot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, "hawkbot"))
	v.SetEnvPrefix("HAWKBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("prefix", def.Prefix)
	v.SetDefault("owner_id", def.OwnerID)
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("no_color", def.NoColor)
	v.SetDefault("output", def.Output)
	v.SetDefault("guild", def.Guild)
	v.SetDefault("channel", def.Channel)
	v.SetDefault("user", def.User)
	v.SetDefault("roster", def.Roster)
	v.SetDefault("history_limit", def.HistoryLimit)
	v.SetDefault("workers", def.Workers)
	return v
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the environment without overriding variables already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file (if any) and returns the merged config.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := DefaultConfig()
	cfg.Prefix = v.GetString("prefix")
	cfg.OwnerID = v.GetString("owner_id")
	cfg.DataDir = v.GetString("data_dir")
	cfg.LogLevel = v.GetString("log_level")
	cfg.NoColor = cfg.NoColor || v.GetBool("no_color")
	cfg.Output = v.GetString("output")
	cfg.Guild = v.GetString("guild")
	cfg.Channel = v.GetString("channel")
	cfg.User = v.GetString("user")
	cfg.Roster = v.GetString("roster")
	cfg.HistoryLimit = v.GetInt("history_limit")
	cfg.Workers = v.GetInt("workers")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Prefix == "" {
		errs = append(errs, errors.New("prefix must not be empty"))
	}
	if _, err := ParseOutput(c.Output); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.HistoryLimit < 1 {
		errs = append(errs, fmt.Errorf("history_limit must be at least 1, got %d", c.HistoryLimit))
	}
	return errors.Join(errs...)
}

// ParseOutput normalizes an output format name.
func ParseOutput(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", "text":
		return "text", nil
	case "json", "yaml":
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}
