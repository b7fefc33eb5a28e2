package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_AppliesDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	base := "jwt:\n  secret: abc\nstorage:\n  driver: memory\n"
	if err := os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o644); err != nil {
		t.Fatalf("write base: %v", err)
	}
	t.Setenv("SERVER_PORT", ":9090")

	cfg, err := LoadFrom("local", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != ":9090" {
		t.Fatalf("expected env port, got %s", cfg.Server.Port)
	}
	if cfg.JWT.TTLHours != 24 {
		t.Fatalf("expected default ttl 24, got %d", cfg.JWT.TTLHours)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("expected memory driver, got %s", cfg.Storage.Driver)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret to fail")
	}

	cfg.JWT.Secret = "x"
	cfg.Storage.Driver = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown driver to fail")
	}

	cfg.Storage.Driver = "memory"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadFrom_TracingOffByDefault(t *testing.T) {
	dir := t.TempDir()
	base := "jwt:\n  secret: abc\nstorage:\n  driver: memory\n"
	if err := os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(base), 0o644); err != nil {
		t.Fatalf("write base: %v", err)
	}

	cfg, err := LoadFrom("local", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Otel.Enabled {
		t.Fatalf("expected tracing disabled by default")
	}
	if cfg.Otel.ServiceName != "simpletodos" || cfg.Otel.SampleRatio != 1 {
		t.Fatalf("unexpected otel defaults: %+v", cfg.Otel)
	}

	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	cfg, err = LoadFrom("local", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Otel.Enabled || cfg.Otel.Endpoint != "collector:4317" {
		t.Fatalf("expected env to enable tracing, got %+v", cfg.Otel)
	}
}
