package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadLayered_MergesEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: \":8080\"\ndb:\n  host: localhost\n  port: 5432\n")
	writeFile(t, dir, "prod.yaml", "db:\n  host: db.internal\n")

	merged, err := LoadLayered("prod", dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	db := merged["db"].(map[string]interface{})
	if db["host"] != "db.internal" {
		t.Fatalf("expected overlay host, got %v", db["host"])
	}
	if db["port"] != 5432 {
		t.Fatalf("expected base port to survive merge, got %v", db["port"])
	}
}

func TestLoadLayered_SubstitutesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: \"${JWT_SECRET}\"\n")
	writeFile(t, dir, "secrets.env", "# comment\nJWT_SECRET='s3cret'\n")

	var out struct {
		JWT JWTConfig `yaml:"jwt"`
	}
	if err := Decode("local", dir, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.JWT.Secret != "s3cret" {
		t.Fatalf("expected substituted secret, got %q", out.JWT.Secret)
	}
}

func TestLoadLayered_MissingBase(t *testing.T) {
	if _, err := LoadLayered("local", t.TempDir()); err == nil {
		t.Fatalf("expected error for missing base.yaml")
	}
}

func TestOverrideStorageFromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg := StorageConfig{Driver: "postgres"}
	OverrideStorageFromEnv(&cfg)
	if cfg.Driver != "memory" {
		t.Fatalf("expected memory, got %s", cfg.Driver)
	}
}
