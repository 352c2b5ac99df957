// Package reconcile implements the Reconciler (SPEC_FULL.md §4.5): removing
// store rows for files that no longer exist on disk, with an optional
// four-pass cleanup of parents left empty by that removal.
//
// Grounded on original_source/src-tauri/src/media_scanner.rs's
// find_non_existent_paths/sync_files split (concurrent existence probes,
// then a single removal call) and on the scan package's worker-pool idiom
// for bounding that concurrency.
package reconcile

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// probeWorkers bounds the existence-probe fan-out, matching the §5 note
// that an implementation may fan out with a limit equal to the pool size.
const probeWorkers = 8

// Store is the subset of store.Store the Reconciler depends on.
type Store interface {
	AllFilePaths(ctx context.Context) ([]string, error)
	DeleteFilesByPath(ctx context.Context, paths []string) error
	CleanupEmptyParents(ctx context.Context) error
}

// Sync loads every known file path, probes each for existence with bounded
// concurrency, and deletes the rows for any that are absent in a single
// transaction. A probe failure other than "not found" treats the file as
// present, so transient filesystem errors never cause false deletions. If
// runCleanup is set, a four-pass cleanup of now-empty parents follows.
func Sync(ctx context.Context, s Store, runCleanup bool) error {
	paths, err := s.AllFilePaths(ctx)
	if err != nil {
		return err
	}

	absent := probeAbsent(ctx, paths)

	if len(absent) > 0 {
		if err := s.DeleteFilesByPath(ctx, absent); err != nil {
			return err
		}
	}

	if runCleanup {
		if err := s.CleanupEmptyParents(ctx); err != nil {
			return err
		}
	}
	return nil
}

// probeAbsent checks each path for existence across a fixed worker pool,
// returning those that are gone.
func probeAbsent(ctx context.Context, paths []string) []string {
	jobs := make(chan string)
	results := make(chan string, len(paths))

	var wg sync.WaitGroup
	wg.Add(probeWorkers)
	for i := 0; i < probeWorkers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if !exists(path) {
					results <- path
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range paths {
			select {
			case jobs <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var absent []string
	for p := range results {
		absent = append(absent, p)
	}
	return absent
}

// exists probes the filesystem. Any error other than "file does not exist"
// is logged and treated as "present" per SPEC_FULL.md §4.5, to avoid false
// deletions on transient I/O errors (e.g. a permissions hiccup on a network
// mount).
func exists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	slog.Warn("file probe failed, treating as present", "path", path, "error", err)
	return true
}
