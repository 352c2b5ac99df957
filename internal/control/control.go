// Package control implements the Controller (SPEC_FULL.md §4.8): the
// top-level sync orchestration of Reconciler, Scanner, MediaBuilder,
// Merger, Enricher, and Store, with chunked progress reporting.
//
// Grounded on the host application's internal/jobs/task_scan.go handler
// shape (a throttled progress callback broadcasting over a notifier
// interface), trimmed to the Controller's narrower inserted/total event.
package control

import (
	"context"

	"github.com/JustinTDCT/cinevaultindex/internal/enrich"
	"github.com/JustinTDCT/cinevaultindex/internal/media"
	"github.com/JustinTDCT/cinevaultindex/internal/merge"
	"github.com/JustinTDCT/cinevaultindex/internal/reconcile"
	"github.com/JustinTDCT/cinevaultindex/internal/scan"
)

// chunkSize is the design constant SPEC_FULL.md §4.6/§4.8 names for both
// the Enricher's batching unit and the Controller's progress granularity.
const chunkSize = 50

// Progress is emitted once per chunk processed.
type Progress struct {
	Inserted int
	Total    int
}

// Store is the subset of store.Store the Controller depends on.
type Store interface {
	reconcile.Store
	AllFilePaths(ctx context.Context) ([]string, error)
	InsertMedias(ctx context.Context, batch []*media.Media) error
}

// Controller wires the pipeline stages together.
type Controller struct {
	store               Store
	provider            enrich.Provider
	runCleanupPass      bool
	scanConcurrency     int
	enricherConcurrency int
}

// New wires a Controller. scanConcurrency and enricherConcurrency pass
// straight through to scan.Scan and enrich.Enrich, falling back to their
// own design-constant defaults when <= 0 (SPEC_FULL.md §4.9).
func New(store Store, provider enrich.Provider, runCleanupPass bool, scanConcurrency, enricherConcurrency int) *Controller {
	return &Controller{
		store:               store,
		provider:            provider,
		runCleanupPass:      runCleanupPass,
		scanConcurrency:     scanConcurrency,
		enricherConcurrency: enricherConcurrency,
	}
}

// Sync runs one full pass over root: reconcile stale rows, scan for new
// files, build and merge logical media, then enrich and insert in chunks,
// reporting progress after each. It returns the total number of Media
// inserted. Cancelling ctx aborts the current in-flight enrichment batch
// (discarding its results) and stops before inserting further chunks;
// already-committed chunks remain durable.
func (c *Controller) Sync(ctx context.Context, root string, onProgress func(Progress)) (int, error) {
	if err := reconcile.Sync(ctx, c.store, c.runCleanupPass); err != nil {
		return 0, err
	}

	known, err := c.store.AllFilePaths(ctx)
	if err != nil {
		return 0, err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, p := range known {
		knownSet[p] = struct{}{}
	}

	paths, err := scan.Scan(ctx, root, knownSet, c.scanConcurrency)
	if err != nil {
		return 0, err
	}

	built := make([]*media.Media, 0, len(paths))
	for _, p := range paths {
		built = append(built, media.FromPath(p))
	}
	medias := merge.Merge(built)

	var inserted int
	for start := 0; start < len(medias); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return inserted, err
		}

		end := start + chunkSize
		if end > len(medias) {
			end = len(medias)
		}
		chunk := medias[start:end]

		if c.provider != nil {
			if err := enrich.Enrich(ctx, chunk, c.provider, c.enricherConcurrency); err != nil {
				return inserted, err
			}
		}

		if err := c.store.InsertMedias(ctx, chunk); err != nil {
			return inserted, err
		}
		inserted += len(chunk)

		if onProgress != nil {
			onProgress(Progress{Inserted: inserted, Total: len(medias)})
		}
	}

	return inserted, nil
}

// Filter, get-by-id, the update family, and tag operations are thin
// delegations to Store; callers that need those should use the Store
// directly (see SPEC_FULL.md §4.8, "other entry points").
