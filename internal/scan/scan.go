// Package scan implements the Scanner (SPEC_FULL.md §4.4): a recursive walk
// of a root directory yielding new video paths, excluding anything already
// known to the store.
//
// Grounded on the host application's worker-pool-over-channel scanning
// idiom (a single filepath.WalkDir producer feeding a fixed pool of
// goroutines over a buffered channel) and its symlink-cycle guard, trimmed
// to the spec's narrower three-extension contract.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
)

// recognizedExtensions is exactly the set SPEC_FULL.md §4.4 names.
var recognizedExtensions = map[string]bool{
	".mp4": true,
	".mkv": true,
	".avi": true,
}

// defaultWalkWorkers is used when the caller passes workers <= 0; it equals
// the SCAN_CONCURRENCY fallback in config.Load.
const defaultWalkWorkers = 8

// Scan walks root recursively and returns every regular file with a
// recognized extension whose canonical path is absent from knownPaths. It
// fails with an ierr.KindConfig error if root does not exist. The directory
// walk runs on one background goroutine, and its entries are filtered by
// workers goroutines (falling back to defaultWalkWorkers if workers <= 0);
// Scan blocks the calling goroutine until they finish or ctx is cancelled.
func Scan(ctx context.Context, root string, knownPaths map[string]struct{}, workers int) ([]string, error) {
	if workers <= 0 {
		workers = defaultWalkWorkers
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ierr.New(ierr.KindConfig, "scan root does not exist: "+root)
		}
		return nil, ierr.Wrap(ierr.KindConfig, "stat scan root", err)
	}
	if !info.IsDir() {
		return nil, ierr.New(ierr.KindConfig, "scan root is not a directory: "+root)
	}

	candidates := make(chan string, 256)
	results := make(chan string, 256)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range candidates {
				select {
				case <-ctx.Done():
					continue
				default:
				}
				if accept(path, knownPaths) {
					results <- path
				}
			}
		}()
	}

	walkErrCh := make(chan error, 1)
	go func() {
		defer close(candidates)
		walkErrCh <- walkTree(ctx, root, candidates)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []string
	for path := range results {
		out = append(out, path)
	}

	if werr := <-walkErrCh; werr != nil {
		return nil, ierr.Wrap(ierr.KindConfig, "walk scan root", werr)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func accept(path string, knownPaths map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !recognizedExtensions[ext] {
		return false
	}
	canonical := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		canonical = resolved
	}
	_, known := knownPaths[canonical]
	return !known
}

// walkTree performs the recursive directory walk, guarding against symlink
// cycles with a visited-directory set keyed by the resolved real path.
func walkTree(ctx context.Context, root string, out chan<- string) error {
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal to the whole walk.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			real := path
			if d.Type()&os.ModeSymlink != 0 {
				resolved, rerr := filepath.EvalSymlinks(path)
				if rerr != nil {
					return filepath.SkipDir
				}
				real = resolved
			}
			if visitedDirs[real] {
				return filepath.SkipDir
			}
			visitedDirs[real] = true
			return nil
		}

		if !d.Type().IsRegular() && d.Type()&os.ModeSymlink == 0 {
			return nil
		}
		out <- path
		return nil
	})
}
