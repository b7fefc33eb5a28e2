package db

import (
	"strings"
	"testing"

	"simpletodos/pkg/config"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := Migrations()
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(names) == 0 || !strings.HasSuffix(names[0], "001_initial_schema.sql") {
		t.Fatalf("expected initial schema first, got %v", names)
	}
}

func TestDSN(t *testing.T) {
	got := DSN(config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "d"})
	if got != "postgres://u:p@h:5432/d?sslmode=disable" {
		t.Fatalf("unexpected dsn %s", got)
	}
}
