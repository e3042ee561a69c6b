package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/hyperjump/tana/internal/models"
	"go.uber.org/zap"
)

const (
	defaultTMDBURL = "https://api.themoviedb.org/3"
	tmdbPosterBase = "https://image.tmdb.org/t/p/w500"
)

// TMDB searches The Movie Database for movies and TV series. It requires an
// API read access token; without one the adapter reports itself ineligible
// and explore simply skips it. The key can be swapped at runtime when the
// config file changes.
type TMDB struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger

	mu     sync.RWMutex
	apiKey string
}

// NewTMDB creates a TMDB adapter. Empty baseURL uses the public API;
// empty apiKey makes the adapter ineligible until SetAPIKey is called.
func NewTMDB(baseURL, apiKey string, limiter *RateLimiter, logger *zap.Logger) *TMDB {
	if baseURL == "" {
		baseURL = defaultTMDBURL
	}
	if limiter == nil {
		limiter = NewRateLimiter(NameTMDB)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TMDB{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(),
		limiter:    limiter,
		logger:     logger,
		apiKey:     apiKey,
	}
}

func (c *TMDB) Name() string { return NameTMDB }

// Eligible reports whether an API key is configured.
func (c *TMDB) Eligible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

// SetAPIKey replaces the API key. Used by config reload so an operator can
// add or rotate the key without restarting.
func (c *TMDB) SetAPIKey(key string) {
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

type tmdbMovieResult struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	VoteAverage *float64 `json:"vote_average"`
	PosterPath  string   `json:"poster_path"`
	ReleaseDate string   `json:"release_date"`
}

type tmdbTVResult struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	VoteAverage  *float64 `json:"vote_average"`
	PosterPath   string   `json:"poster_path"`
	FirstAirDate string   `json:"first_air_date"`
}

type tmdbMoviePage struct {
	Results []tmdbMovieResult `json:"results"`
}

type tmdbTVPage struct {
	Results []tmdbTVResult `json:"results"`
}

// Search queries TMDB. Movie searches hit /search/movie, series /search/tv.
func (c *TMDB) Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error) {
	switch category {
	case models.CategoryMovie:
		return c.searchMovies(ctx, query)
	case models.CategorySeries:
		return c.searchTV(ctx, query)
	}
	return nil, nil
}

func (c *TMDB) get(ctx context.Context, path, query string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	params.Set("language", "en-US")
	params.Set("page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tmdb request: %w", err)
	}
	c.mu.RLock()
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	c.mu.RUnlock()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, responseError(NameTMDB, c.limiter, resp)
	}
	return resp, nil
}

func (c *TMDB) searchMovies(ctx context.Context, query string) ([]models.Candidate, error) {
	resp, err := c.get(ctx, "/search/movie", query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var page tmdbMoviePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb movie response: %w", err)
	}

	results := page.Results
	if len(results) > perPage {
		results = results[:perPage]
	}
	candidates := make([]models.Candidate, 0, len(results))
	for _, m := range results {
		cand := models.Candidate{
			Title:       m.Title,
			MediaType:   models.MediaMovie,
			Source:      NameTMDB,
			FormatLabel: fmt.Sprintf("Movie (%s)", tmdbYear(m.ReleaseDate)),
		}
		fillTMDBCommon(&cand, m.ID, m.VoteAverage, m.PosterPath)
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func (c *TMDB) searchTV(ctx context.Context, query string) ([]models.Candidate, error) {
	resp, err := c.get(ctx, "/search/tv", query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var page tmdbTVPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode tmdb tv response: %w", err)
	}

	results := page.Results
	if len(results) > perPage {
		results = results[:perPage]
	}
	candidates := make([]models.Candidate, 0, len(results))
	for _, t := range results {
		cand := models.Candidate{
			Title:       t.Name,
			MediaType:   models.MediaSeries,
			Source:      NameTMDB,
			FormatLabel: fmt.Sprintf("TV Series (%s)", tmdbYear(t.FirstAirDate)),
		}
		fillTMDBCommon(&cand, t.ID, t.VoteAverage, t.PosterPath)
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

func fillTMDBCommon(cand *models.Candidate, id int, vote *float64, posterPath string) {
	extID := strconv.Itoa(id)
	cand.ExternalID = &extID
	if vote != nil {
		cand.GlobalScore = ScoreFrom10(*vote)
	}
	if posterPath != "" {
		u := tmdbPosterBase + posterPath
		cand.PosterURL = &u
	}
}

// tmdbYear extracts the year from a release date like "2013-04-07".
func tmdbYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return "?"
}
