package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Lexicon.WordlistPath != "words.txt" {
		t.Errorf("WordlistPath = %q", cfg.Lexicon.WordlistPath)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("rate limit = %v/%v", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}
	if cfg.Search.MaxPageSize != 500 || cfg.Search.DefaultPageSize != 50 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.RateLimit.ClientHeader != "Fly-Client-IP" {
		t.Errorf("ClientHeader = %q", cfg.RateLimit.ClientHeader)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	yaml := `
server:
  port: 9000
  requestTimeout: 2s
lexicon:
  wordnetDir: /srv/dict
  loadMode: owned
search:
  maxPageSize: 100
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEX_PORT", "9100")
	t.Setenv("LEX_RATE_LIMIT_BURST", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env override lost: port = %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Lexicon.WordNetDir != "/srv/dict" || cfg.Lexicon.LoadMode != "owned" {
		t.Errorf("lexicon = %+v", cfg.Lexicon)
	}
	if cfg.Search.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d", cfg.Search.MaxPageSize)
	}
	if cfg.RateLimit.Burst != 3 {
		t.Errorf("Burst = %v", cfg.RateLimit.Burst)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := "LEX_WORDNET_DIR=/opt/wordnet\nLEX_PORT=7000\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("LEX_PORT", "9200")
	t.Setenv("LEX_WORDNET_DIR", "")
	os.Unsetenv("LEX_WORDNET_DIR")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lexicon.WordNetDir != "/opt/wordnet" {
		t.Errorf("WordNetDir = %q, want value from .env", cfg.Lexicon.WordNetDir)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("port = %d, .env must not replace a set variable", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad load mode", func(c *Config) { c.Lexicon.LoadMode = "lazy" }},
		{"zero max page size", func(c *Config) { c.Search.MaxPageSize = 0 }},
		{"default above max", func(c *Config) { c.Search.DefaultPageSize = 600 }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
