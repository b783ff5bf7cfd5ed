package reposync

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestOpenPersistence_SQLiteAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf(
		"file:persistence-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)

	client, err := OpenPersistence(ctx, PersistenceConfig{
		Driver: DriverSQLite,
		DSN:    dsn,
	})
	if err != nil {
		t.Fatalf("open persistence: %v", err)
	}
	defer client.Close()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"remote_repositories",
	).Scan(ctx, &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "remote_repositories" {
		t.Fatalf("expected migrated schema, got table %q", tableName)
	}
}

func TestNewPersistenceClient_Validation(t *testing.T) {
	if _, err := NewPersistenceClient(PersistenceConfig{Driver: DriverSQLite}); err == nil {
		t.Fatalf("expected missing dsn to fail")
	}
	if _, err := NewPersistenceClient(PersistenceConfig{Driver: "oracle", DSN: "dsn"}); err == nil {
		t.Fatalf("expected unsupported driver to fail")
	}
}

func TestPersistenceConfig_Defaults(t *testing.T) {
	cfg := PersistenceConfig{}
	if cfg.GetPingTimeout() != 5*time.Second {
		t.Fatalf("expected default ping timeout, got %s", cfg.GetPingTimeout())
	}
	if cfg.GetOtelIdentifier() != "go-repo-sync" {
		t.Fatalf("expected default otel identifier, got %q", cfg.GetOtelIdentifier())
	}
}
