package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aallbrig/hawkbot/config"
)

func TestDefaultColors(t *testing.T) {
	c := config.DefaultColors()
	if c.Base == "" || c.Subcmd == "" || c.Param == "" {
		t.Error("expected non-empty default colors")
	}
	if c.Base != "#FFFFFF" {
		t.Errorf("Base color = %q, want #FFFFFF", c.Base)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if cfg.Prefix != "hb " {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "hb ")
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Workers)
	}
	if filepath.Base(cfg.DBPath()) != "hawkbot.db" {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
}

func TestParseOutput(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"text", "text", false},
		{"", "text", false},
		{"JSON", "json", false},
		{" yaml ", "yaml", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := config.ParseOutput(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutput(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutput(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "prefix: \"!hb \"\nworkers: 2\nlog_level: debug\nguild: g1\n"
	if err := os.WriteFile(filepath.Join(dir, "hawkbot.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HAWKBOT_GUILD", "from-env")

	v := config.NewViper()
	v.AddConfigPath(dir)
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Prefix != "!hb " {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "!hb ")
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.Guild != "from-env" {
		t.Errorf("Guild = %q, want env override", cfg.Guild)
	}
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("HAWKBOT_WORKERS", "0")
	t.Setenv("HAWKBOT_OUTPUT", "xml")
	v := config.NewViper()
	v.SetConfigName("does-not-exist")
	if _, err := config.Load(v); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("HAWKBOT_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HAWKBOT_TEST_DOTENV", "")
	os.Unsetenv("HAWKBOT_TEST_DOTENV")

	if err := config.LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("HAWKBOT_TEST_DOTENV"); got != "loaded" {
		t.Errorf("HAWKBOT_TEST_DOTENV = %q, want loaded", got)
	}
}
