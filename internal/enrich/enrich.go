// Package enrich implements the Enricher (SPEC_FULL.md §4.6): resolving a
// remote identifier for each Media and fetching full detail records to
// attach as a RemoteTitle.
//
// Grounded on the host application's internal/metadata client retry loop
// (attempt counter, break on non-429, sleep and retry on 429) adapted to
// the spec's fixed 10-second wait instead of exponential backoff.
package enrich

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

// Candidate is one search hit from stage A.
type Candidate struct {
	ID   string
	Year *int
}

// Provider is the remote metadata source. A single implementation backs
// production use; the interface exists so a second provider could be
// plugged in without touching the enrichment algorithm.
type Provider interface {
	// Search returns search candidates for a title.
	Search(ctx context.Context, title string) ([]Candidate, error)
	// FetchDetails fetches full detail records for up to len(ids) ids in one
	// request. The returned slice need not be in the same order as ids.
	FetchDetails(ctx context.Context, ids []string) ([]media.RemoteTitle, error)
}

const (
	batchSize = 5
	// defaultMaxInFlight is used when Enrich is called with maxInFlight <= 0,
	// matching SPEC_FULL.md §9's design constant.
	defaultMaxInFlight = 4
	maxAttempts        = 3
	searchInterval     = 200 * time.Millisecond
)

// rateLimitWait is the fixed 429 backoff (SPEC_FULL.md §4.6). Kept as a var,
// not a const, so tests can shrink it instead of waiting 10 real seconds
// per retry.
var rateLimitWait = 10 * time.Second

// Enrich runs stage A (resolve id) then stage B (fetch details in batches
// of 5, at most maxInFlight in flight, falling back to defaultMaxInFlight
// if maxInFlight <= 0) over items, attaching a RemoteTitle to each Media it
// can resolve. Media stage A finds no candidate for is left untouched, not
// failed. Enrich returns a non-nil error only on a context cancellation;
// individual batch failures are logged and swallowed after exhausting
// retries so other batches still complete.
func Enrich(ctx context.Context, items []*media.Media, p Provider, maxInFlight int) error {
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	resolved := make(map[string]*media.Media) // remote id -> Media
	limiter := rate.NewLimiter(rate.Every(searchInterval), 1)

	for _, m := range items {
		if m.Name == "" {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		candidates, err := p.Search(ctx, m.Name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		if len(candidates) == 0 {
			continue
		}
		chosen := candidates[0]
		if m.Year != nil {
			for _, c := range candidates {
				if c.Year != nil && *c.Year == *m.Year {
					chosen = c
					break
				}
			}
		}
		resolved[chosen.ID] = m
	}

	ids := make([]string, 0, len(resolved))
	for id := range resolved {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic batch order

	var batches [][]string
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[i:end])
	}

	sem := make(chan struct{}, maxInFlight)
	errCh := make(chan error, len(batches))
	done := make(chan struct{})

	var pending int
	for _, batch := range batches {
		pending++
		sem <- struct{}{}
		go func(batch []string) {
			defer func() { <-sem }()
			details, err := fetchWithRetry(ctx, p, batch)
			if err != nil {
				slog.Warn("enrichment batch failed", "ids", batch, "error", err)
				errCh <- err
				return
			}
			for _, rt := range details {
				if m, ok := resolved[rt.ID]; ok {
					rtCopy := rt
					m.RemoteTitle = &rtCopy
					m.RemoteTitleID = rt.ID
				}
			}
			errCh <- nil
		}(batch)
	}
	go func() {
		for i := 0; i < pending; i++ {
			<-errCh
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetchWithRetry implements stage B's per-batch contract: on HTTP 429
// (signalled by ErrRateLimited), wait 10 seconds and retry, up to 3 total
// attempts; on any other failure, retry up to 3 attempts with no backoff.
func fetchWithRetry(ctx context.Context, p Provider, ids []string) ([]media.RemoteTitle, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		details, err := p.FetchDetails(ctx, ids)
		if err == nil {
			return details, nil
		}
		lastErr = err
		if !IsRateLimited(err) {
			continue
		}
		select {
		case <-time.After(rateLimitWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, ierr.Wrap(ierr.KindNetwork, "fetch details batch", lastErr)
}
