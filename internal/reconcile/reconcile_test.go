package reconcile

import (
	"context"
	"errors"
	"os"
	"testing"
)

type fakeStore struct {
	paths         []string
	deleted       []string
	cleanupCalled bool
	deleteErr     error
	allPathsErr   error
}

func (f *fakeStore) AllFilePaths(ctx context.Context) ([]string, error) {
	return f.paths, f.allPathsErr
}

func (f *fakeStore) DeleteFilesByPath(ctx context.Context, paths []string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = paths
	return nil
}

func (f *fakeStore) CleanupEmptyParents(ctx context.Context) error {
	f.cleanupCalled = true
	return nil
}

func TestSyncDeletesOnlyAbsentPaths(t *testing.T) {
	dir := t.TempDir()
	present := dir + "/present.mkv"
	if err := writeFile(present); err != nil {
		t.Fatal(err)
	}
	absent := dir + "/absent.mkv"

	fs := &fakeStore{paths: []string{present, absent}}
	if err := Sync(context.Background(), fs, false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(fs.deleted) != 1 || fs.deleted[0] != absent {
		t.Fatalf("got deleted=%v, want only %q", fs.deleted, absent)
	}
	if fs.cleanupCalled {
		t.Fatal("cleanup should not run when runCleanup is false")
	}
}

func TestSyncRunsCleanupWhenRequested(t *testing.T) {
	fs := &fakeStore{paths: nil}
	if err := Sync(context.Background(), fs, true); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !fs.cleanupCalled {
		t.Fatal("expected cleanup to run")
	}
}

func TestSyncPropagatesStoreError(t *testing.T) {
	fs := &fakeStore{allPathsErr: errors.New("boom")}
	if err := Sync(context.Background(), fs, false); err == nil {
		t.Fatal("expected error from AllFilePaths to propagate")
	}
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0o644)
}
