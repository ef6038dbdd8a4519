// Package migrations exposes the embedded schema migration tree per
// dialect and the registration hook the persistence client consumes.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	zaaknotify "github.com/goliatone/go-zaaknotify"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const sourceLabel = "go-zaaknotify"

// RegisterFunc receives one migration filesystem per selected dialect.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type dialectFS struct {
	dialect string
	path    string
	fsys    fs.FS
}

// Register resolves the embedded migration filesystems and hands each
// requested dialect to registerFn. With no dialects given, both postgres
// and sqlite are registered. Every selected filesystem must contain at
// least one *.up.sql file.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) error {
	if registerFn == nil {
		return fmt.Errorf("migrations: register function is required")
	}

	selected := normalizeDialects(dialects)
	if len(selected) == 0 {
		selected = []string{DialectPostgres, DialectSQLite}
	}

	filesystems, err := loadFilesystems()
	if err != nil {
		return err
	}

	for _, target := range selected {
		spec, ok := filesystems[target]
		if !ok {
			return fmt.Errorf("migrations: unknown dialect %q", target)
		}
		matches, globErr := fs.Glob(spec.fsys, "*.up.sql")
		if globErr != nil {
			return fmt.Errorf("migrations: glob %s %s: %w", spec.dialect, spec.path, globErr)
		}
		if len(matches) == 0 {
			return fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", spec.dialect, spec.path)
		}
		if err := registerFn(ctx, spec.dialect, sourceLabel, spec.fsys); err != nil {
			return fmt.Errorf("migrations: register %s (%s): %w", spec.dialect, spec.path, err)
		}
	}
	return nil
}

func loadFilesystems() (map[string]dialectFS, error) {
	base, err := fs.Sub(zaaknotify.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, fmt.Errorf("migrations: data/sql/migrations not found: %w", err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}
	return map[string]dialectFS{
		DialectPostgres: {dialect: DialectPostgres, path: "data/sql/migrations", fsys: base},
		DialectSQLite:   {dialect: DialectSQLite, path: "data/sql/migrations/sqlite", fsys: sqliteFS},
	}, nil
}

func normalizeDialects(dialects []string) []string {
	seen := make(map[string]struct{}, len(dialects))
	out := make([]string, 0, len(dialects))
	for _, dialect := range dialects {
		trimmed := strings.TrimSpace(strings.ToLower(dialect))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
