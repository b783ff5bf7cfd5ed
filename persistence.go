package reposync

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// PersistenceConfig describes the database the service persists into. The
// zero PingTimeout defaults to five seconds.
type PersistenceConfig struct {
	Driver         string
	DSN            string
	Debug          bool
	PingTimeout    time.Duration
	OtelIdentifier string
}

func (c PersistenceConfig) GetDebug() bool {
	return c.Debug
}

func (c PersistenceConfig) GetDriver() string {
	return strings.TrimSpace(c.Driver)
}

func (c PersistenceConfig) GetServer() string {
	return strings.TrimSpace(c.DSN)
}

func (c PersistenceConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c PersistenceConfig) GetOtelIdentifier() string {
	if trimmed := strings.TrimSpace(c.OtelIdentifier); trimmed != "" {
		return trimmed
	}
	return "go-repo-sync"
}

// NewPersistenceClient opens the configured database, wires the matching bun
// dialect, and registers the bundled schema migrations. The caller owns
// running client.Migrate and closing the client.
func NewPersistenceClient(cfg PersistenceConfig) (*persistence.Client, error) {
	driver := cfg.GetDriver()
	dsn := cfg.GetServer()
	if dsn == "" {
		return nil, fmt.Errorf("reposync: persistence dsn is required")
	}

	var dialect schema.Dialect
	var migrationsPath string
	switch driver {
	case DriverPostgres:
		dialect = pgdialect.New()
		migrationsPath = "data/sql/migrations"
	case DriverSQLite:
		dialect = sqlitedialect.New()
		migrationsPath = "data/sql/migrations/sqlite"
	default:
		return nil, fmt.Errorf("reposync: unsupported persistence driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("reposync: open %s database: %w", driver, err)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("reposync: build persistence client: %w", err)
	}

	migrationsFS, err := fs.Sub(GetCoreMigrationsFS(), migrationsPath)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("reposync: resolve %s migrations: %w", driver, err)
	}
	client.RegisterSQLMigrations(migrationsFS)

	return client, nil
}

// OpenPersistence builds the client and applies pending migrations in one
// step for callers without their own migration runner.
func OpenPersistence(ctx context.Context, cfg PersistenceConfig) (*persistence.Client, error) {
	client, err := NewPersistenceClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("reposync: apply migrations: %w", err)
	}
	return client, nil
}
