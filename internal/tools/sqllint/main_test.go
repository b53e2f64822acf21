package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLintFileFlagsMissingMarker(t *testing.T) {
	dir := t.TempDir()
	path := writeGo(t, dir, "q.go", "package q\n\nconst QBad = `\nSELECT id FROM courses`\n\nconst QGood = `--sql 0b6a7f52-2f7e-4d53-9d49-7a9c5b1e2f10\nSELECT id FROM courses`\n\nconst msg = \"select a course to delete\"\n")

	vs, err := lintFile(path, map[string]markerSite{})
	if err != nil {
		t.Fatalf("lintFile: %v", err)
	}
	if len(vs) != 1 || vs[0].name != "QBad" {
		t.Fatalf("expected one violation for QBad, got %+v", vs)
	}
}

func TestLintFileFlagsDuplicateMarkersAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	const q = "`--sql 0b6a7f52-2f7e-4d53-9d49-7a9c5b1e2f10\nDELETE FROM courses WHERE id = $1`"
	a := writeGo(t, dir, "a.go", "package q\n\nconst QA = "+q+"\n")
	b := writeGo(t, dir, "b.go", "package q\n\nconst QB = "+q+"\n")

	seen := map[string]markerSite{}
	if vs, err := lintFile(a, seen); err != nil || len(vs) != 0 {
		t.Fatalf("unexpected first file result %+v, %v", vs, err)
	}
	vs, err := lintFile(b, seen)
	if err != nil {
		t.Fatalf("lintFile: %v", err)
	}
	if len(vs) != 1 || !strings.Contains(vs[0].message, "QA") {
		t.Fatalf("expected duplicate marker violation, got %+v", vs)
	}
}
