package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	reposync "github.com/goliatone/go-repo-sync"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	sourceLabel  = "go-repo-sync"
	postgresPath = "data/sql/migrations"
	sqlitePath   = "data/sql/migrations/sqlite"
)

// FilesystemSpec pairs a dialect with the embedded tree holding its scripts.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// RegisterFunc receives one dialect's migration filesystem. Implementations
// typically hand it to persistence.Client.RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

type Option func(*Registration)

// WithValidationTargets restricts registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		next := make([]string, 0, len(targets))
		for _, target := range targets {
			trimmed := strings.TrimSpace(strings.ToLower(target))
			if trimmed != "" {
				next = append(next, trimmed)
			}
		}
		if len(next) > 0 {
			r.ValidationTargets = dedupe(next)
		}
	}
}

// Filesystems resolves the embedded postgres and sqlite migration trees and
// verifies each carries at least one up script.
func Filesystems() ([]FilesystemSpec, error) {
	root := reposync.GetCoreMigrationsFS()
	specs := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: postgresPath},
		{Dialect: DialectSQLite, Path: sqlitePath},
	}
	for i := range specs {
		sub, err := fs.Sub(root, specs[i].Path)
		if err != nil {
			return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", specs[i].Dialect, err)
		}
		matches, globErr := fs.Glob(sub, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", specs[i].Dialect, specs[i].Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", specs[i].Dialect, specs[i].Path)
		}
		specs[i].FS = sub
	}
	return specs, nil
}

// Register invokes registerFn once per validation target with that dialect's
// embedded filesystem.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       sourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	if registerFn == nil {
		return reg, fmt.Errorf("migrations: register function is required")
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}
	if len(reg.ValidationTargets) == 0 {
		return reg, fmt.Errorf("migrations: validation targets are required")
	}

	targets := dedupe(reg.ValidationTargets)
	for _, fsys := range reg.Filesystems {
		if !slices.Contains(targets, fsys.Dialect) {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}

	return reg, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
