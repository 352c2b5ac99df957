package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/JustinTDCT/cinevaultindex/internal/ierr"
	"github.com/JustinTDCT/cinevaultindex/internal/media"
)

// HTTPProvider is the production Provider, talking to a remote title
// database over HTTP. Both the search and batch detail request/response
// shapes follow SPEC_FULL.md §6 exactly.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type searchResponse struct {
	OK          bool `json:"ok"`
	Description []struct {
		Year   *int   `json:"#YEAR"`
		ImdbID string `json:"#IMDB_ID"`
	} `json:"description"`
	ErrorCode int `json:"error_code"`
}

func (p *HTTPProvider) Search(ctx context.Context, title string) ([]Candidate, error) {
	u := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindNetwork, "build search request", err)
	}
	p.setAuth(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindNetwork, "search request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, RateLimitedError{}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ierr.New(ierr.KindNetwork, fmt.Sprintf("search returned status %d", resp.StatusCode))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, ierr.Wrap(ierr.KindParse, "decode search response", err)
	}
	if !body.OK {
		return nil, nil
	}

	candidates := make([]Candidate, 0, len(body.Description))
	for _, d := range body.Description {
		candidates = append(candidates, Candidate{ID: d.ImdbID, Year: d.Year})
	}
	return candidates, nil
}

// personWire is the shape shared by the stars/directors/writers arrays:
// a display name, an id, and an optional image url.
type personWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

type titleWire struct {
	ID           string `json:"id"`
	PrimaryTitle string `json:"primaryTitle"`
	StartYear    string `json:"startYear"`
	Plot         string `json:"plot"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primaryImage"`
	Rating *struct {
		AggregateRating float64 `json:"aggregateRating"`
		VoteCount       int     `json:"voteCount"`
	} `json:"rating"`
	Genres          []string     `json:"genres"`
	Stars           []personWire `json:"stars"`
	Directors       []personWire `json:"directors"`
	Writers         []personWire `json:"writers"`
	OriginCountries []struct {
		Name string `json:"name"`
	} `json:"originCountries"`
	Type string `json:"type"`
}

type detailsResponse struct {
	Titles []titleWire `json:"titles"`
}

// FetchDetails fetches full detail records for ids in one batch request,
// GET with the query parameter titleIds repeated once per id.
func (p *HTTPProvider) FetchDetails(ctx context.Context, ids []string) ([]media.RemoteTitle, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("titleIds", id)
	}
	u := fmt.Sprintf("%s/details?%s", p.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindNetwork, "build details request", err)
	}
	p.setAuth(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ierr.Wrap(ierr.KindNetwork, "details request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, RateLimitedError{}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ierr.New(ierr.KindNetwork, fmt.Sprintf("details returned status %d", resp.StatusCode))
	}

	var body detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, ierr.Wrap(ierr.KindParse, "decode details response", err)
	}

	out := make([]media.RemoteTitle, 0, len(body.Titles))
	for _, d := range body.Titles {
		out = append(out, titleWireToRemoteTitle(d))
	}
	return out, nil
}

func titleWireToRemoteTitle(d titleWire) media.RemoteTitle {
	rt := media.RemoteTitle{
		ID:    d.ID,
		Title: d.PrimaryTitle,
		Plot:  d.Plot,
		Kind:  media.Kind(d.Type),
	}
	if year, err := strconv.Atoi(d.StartYear); err == nil {
		rt.Year = &year
	}
	if d.PrimaryImage != nil {
		rt.Poster = d.PrimaryImage.URL
	}
	if d.Rating != nil {
		rt.Rating = strconv.FormatFloat(d.Rating.AggregateRating, 'f', -1, 64)
		votes := d.Rating.VoteCount
		rt.Votes = &votes
	}
	rt.Genres = d.Genres
	for _, c := range d.OriginCountries {
		rt.Countries = append(rt.Countries, c.Name)
	}
	rt.People = append(rt.People, creditedPeople(d.Stars, media.RoleActor)...)
	rt.People = append(rt.People, creditedPeople(d.Directors, media.RoleDirector)...)
	rt.People = append(rt.People, creditedPeople(d.Writers, media.RoleWriter)...)
	return rt
}

func creditedPeople(people []personWire, role media.PersonRole) []media.CreditedPerson {
	out := make([]media.CreditedPerson, 0, len(people))
	for _, p := range people {
		out = append(out, media.CreditedPerson{
			Person: media.Person{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL},
			Role:   role,
		})
	}
	return out
}

func (p *HTTPProvider) setAuth(req *http.Request) {
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
}
