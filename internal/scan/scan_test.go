package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanRecognizedExtensionsOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "movie.mp4"))
	touch(t, filepath.Join(dir, "movie.mkv"))
	touch(t, filepath.Join(dir, "movie.avi"))
	touch(t, filepath.Join(dir, "readme.txt"))
	touch(t, filepath.Join(dir, "noext"))

	got, err := Scan(context.Background(), dir, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	if len(got) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(got), got)
	}
}

func TestScanExcludesKnownPaths(t *testing.T) {
	dir := t.TempDir()
	known := filepath.Join(dir, "known.mkv")
	unknown := filepath.Join(dir, "unknown.mkv")
	touch(t, known)
	touch(t, unknown)

	canonical := known
	if resolved, err := filepath.EvalSymlinks(known); err == nil {
		canonical = resolved
	}

	got, err := Scan(context.Background(), dir, map[string]struct{}{canonical: {}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d files, want 1: %v", len(got), got)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), nil, 0)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}
