package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

type fakeProvider struct {
	searchResults map[string][]Candidate
	fetchCalls    map[string]int
	fetchErrs     map[string][]error // queued errors per joined-id key, consumed in order
	details       map[string]media.RemoteTitle
}

func (f *fakeProvider) Search(ctx context.Context, title string) ([]Candidate, error) {
	return f.searchResults[title], nil
}

func (f *fakeProvider) FetchDetails(ctx context.Context, ids []string) ([]media.RemoteTitle, error) {
	key := ids[0]
	f.fetchCalls[key]++
	if queue := f.fetchErrs[key]; len(queue) > 0 {
		err := queue[0]
		f.fetchErrs[key] = queue[1:]
		if err != nil {
			return nil, err
		}
	}
	var out []media.RemoteTitle
	for _, id := range ids {
		if rt, ok := f.details[id]; ok {
			out = append(out, rt)
		}
	}
	return out, nil
}

func intp(v int) *int { return &v }

func TestEnrichPrefersCandidateMatchingYear(t *testing.T) {
	year := 2021
	m := &media.Media{Name: "dune", Year: &year}
	p := &fakeProvider{
		searchResults: map[string][]Candidate{
			"dune": {{ID: "tt_wrong", Year: intp(1984)}, {ID: "tt_right", Year: intp(2021)}},
		},
		fetchCalls: map[string]int{},
		fetchErrs:  map[string][]error{},
		details: map[string]media.RemoteTitle{
			"tt_right": {ID: "tt_right", Title: "Dune"},
		},
	}

	if err := Enrich(context.Background(), []*media.Media{m}, p, 0); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if m.RemoteTitleID != "tt_right" {
		t.Fatalf("got remote title id %q, want tt_right", m.RemoteTitleID)
	}
}

func TestEnrichSkipsMediaWithNoCandidates(t *testing.T) {
	m := &media.Media{Name: "nonexistent"}
	p := &fakeProvider{
		searchResults: map[string][]Candidate{},
		fetchCalls:    map[string]int{},
		fetchErrs:     map[string][]error{},
		details:       map[string]media.RemoteTitle{},
	}

	if err := Enrich(context.Background(), []*media.Media{m}, p, 0); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if m.RemoteTitle != nil {
		t.Fatal("expected no remote title attached")
	}
}

func TestFetchWithRetryWaitsFixedIntervalOn429(t *testing.T) {
	old := rateLimitWait
	rateLimitWait = 20 * time.Millisecond
	defer func() { rateLimitWait = old }()

	calls := 0
	p := &fakeProvider{
		fetchCalls: map[string]int{},
		details:    map[string]media.RemoteTitle{"tt1": {ID: "tt1"}},
	}
	p.fetchErrs = map[string][]error{
		"tt1": {RateLimitedError{}, RateLimitedError{}},
	}

	start := time.Now()
	details, err := fetchWithRetry(context.Background(), p, []string{"tt1"})
	elapsed := time.Since(start)
	calls = p.fetchCalls["tt1"]

	if err != nil {
		t.Fatalf("fetchWithRetry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("got %d attempts, want 3", calls)
	}
	if elapsed < 2*rateLimitWait {
		t.Fatalf("elapsed %v, want at least %v (two waits)", elapsed, 2*rateLimitWait)
	}
	if len(details) != 1 || details[0].ID != "tt1" {
		t.Fatalf("got %v, want [tt1]", details)
	}
}

func TestFetchWithRetryGivesUpAfterThreeNonRateLimitFailures(t *testing.T) {
	p := &fakeProvider{
		fetchCalls: map[string]int{},
		details:    map[string]media.RemoteTitle{},
	}
	p.fetchErrs = map[string][]error{
		"tt2": {errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}

	_, err := fetchWithRetry(context.Background(), p, []string{"tt2"})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if p.fetchCalls["tt2"] != 3 {
		t.Fatalf("got %d attempts, want 3", p.fetchCalls["tt2"])
	}
}

func TestEnrichRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &media.Media{Name: "dune"}
	p := &fakeProvider{
		searchResults: map[string][]Candidate{"dune": {{ID: "tt1"}}},
		fetchCalls:    map[string]int{},
		fetchErrs:     map[string][]error{},
		details:       map[string]media.RemoteTitle{},
	}

	err := Enrich(ctx, []*media.Media{m}, p, 0)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}
