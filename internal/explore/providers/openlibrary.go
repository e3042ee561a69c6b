package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperjump/tana/internal/models"
	"go.uber.org/zap"
)

const (
	defaultOpenLibraryURL = "https://openlibrary.org"
	openLibraryCoverBase  = "https://covers.openlibrary.org/b/id"
)

var openLibraryFields = strings.Join([]string{
	"key",
	"title",
	"author_name",
	"first_publish_year",
	"cover_i",
	"number_of_pages_median",
	"ratings_average",
}, ",")

// OpenLibrary searches the Open Library catalog for books and light novels.
type OpenLibrary struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger
}

// NewOpenLibrary creates an Open Library adapter. Empty baseURL uses the
// public API.
func NewOpenLibrary(baseURL string, limiter *RateLimiter, logger *zap.Logger) *OpenLibrary {
	if baseURL == "" {
		baseURL = defaultOpenLibraryURL
	}
	if limiter == nil {
		limiter = NewRateLimiter(NameOpenLibrary)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenLibrary{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(),
		limiter:    limiter,
		logger:     logger,
	}
}

func (c *OpenLibrary) Name() string { return NameOpenLibrary }

// Eligible is always true; Open Library needs no credentials.
func (c *OpenLibrary) Eligible() bool { return true }

type olSearchResponse struct {
	Docs []olDoc `json:"docs"`
}

type olDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    *int     `json:"first_publish_year"`
	CoverID             *int64   `json:"cover_i"`
	NumberOfPagesMedian *int     `json:"number_of_pages_median"`
	RatingsAverage      *float64 `json:"ratings_average"`
}

// Search queries Open Library for the book and light_novel categories.
// Results carry the requested category as their media type.
func (c *OpenLibrary) Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error) {
	var mediaType models.MediaType
	switch category {
	case models.CategoryBook:
		mediaType = models.MediaBook
	case models.CategoryLightNovel:
		mediaType = models.MediaLightNovel
	default:
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(perPage))
	params.Set("fields", openLibraryFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build openlibrary request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(NameOpenLibrary, c.limiter, resp)
	}

	var page olSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode openlibrary response: %w", err)
	}

	candidates := make([]models.Candidate, 0, len(page.Docs))
	for _, doc := range page.Docs {
		if doc.Title == "" {
			continue
		}
		candidates = append(candidates, mapOpenLibraryDoc(doc, mediaType))
	}
	return candidates, nil
}

func mapOpenLibraryDoc(doc olDoc, mediaType models.MediaType) models.Candidate {
	cand := models.Candidate{
		Title:     doc.Title,
		MediaType: mediaType,
		Source:    NameOpenLibrary,
	}

	if doc.Key != "" {
		key := doc.Key
		cand.ExternalID = &key
	}

	// Open Library rates on a 1 to 5 star scale.
	if doc.RatingsAverage != nil {
		cand.GlobalScore = ScoreFrom5(*doc.RatingsAverage)
	}

	cand.TotalEpisodes = doc.NumberOfPagesMedian

	if doc.CoverID != nil {
		u := fmt.Sprintf("%s/%d-M.jpg", openLibraryCoverBase, *doc.CoverID)
		cand.PosterURL = &u
	}

	author := "Unknown"
	if len(doc.AuthorName) > 0 && doc.AuthorName[0] != "" {
		author = doc.AuthorName[0]
	}
	year := "?"
	if doc.FirstPublishYear != nil {
		year = strconv.Itoa(*doc.FirstPublishYear)
	}
	cand.FormatLabel = fmt.Sprintf("%s (%s)", author, year)

	return cand
}
