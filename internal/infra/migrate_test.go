package infra

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"

	"coursemedia/internal/infra/migrations"
)

func TestRunMigrationsUsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	if err := runMigrations(context.Background(), nil, *DiscardLogger()); err != nil {
		t.Fatalf("runMigrations error: %v", err)
	}
	if gotDir != "." {
		t.Fatalf("dir = %q, want .", gotDir)
	}
}

func TestRunMigrationsWrapsFailure(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("boom")
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error { return boom }

	if err := runMigrations(context.Background(), nil, *DiscardLogger()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := fs.Glob(migrations.Migrations, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 migrations, got %v", entries)
	}
}
