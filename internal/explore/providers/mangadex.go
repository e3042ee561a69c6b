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
	defaultMangaDexURL   = "https://api.mangadex.org"
	mangadexCoverBase    = "https://uploads.mangadex.org/covers"
	defaultMangaDexAgent = "tana/0.1 (+https://github.com/hyperjump/tana)"
)

// MangaDex searches the MangaDex API for manga, manhwa, and webtoons.
// Ratings come from a second batched statistics call; when that call fails
// the search still succeeds, just without scores.
type MangaDex struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger
}

// NewMangaDex creates a MangaDex adapter. Empty baseURL uses the public API.
// The API rejects requests without a User-Agent; empty userAgent uses a
// default identifying this project.
func NewMangaDex(baseURL, userAgent string, limiter *RateLimiter, logger *zap.Logger) *MangaDex {
	if baseURL == "" {
		baseURL = defaultMangaDexURL
	}
	if userAgent == "" {
		userAgent = defaultMangaDexAgent
	}
	if limiter == nil {
		limiter = NewRateLimiter(NameMangaDex)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MangaDex{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: newHTTPClient(),
		limiter:    limiter,
		logger:     logger,
	}
}

func (c *MangaDex) Name() string { return NameMangaDex }

// Eligible is always true; MangaDex needs no credentials.
func (c *MangaDex) Eligible() bool { return true }

type mdListResponse struct {
	Data []mdManga `json:"data"`
}

type mdManga struct {
	ID            string           `json:"id"`
	Attributes    mdAttributes     `json:"attributes"`
	Relationships []mdRelationship `json:"relationships"`
}

type mdAttributes struct {
	Title            map[string]string `json:"title"`
	OriginalLanguage string            `json:"originalLanguage"`
	LastChapter      string            `json:"lastChapter"`
	Year             *int              `json:"year"`
	Status           string            `json:"status"`
	Tags             []mdTag           `json:"tags"`
}

type mdTag struct {
	Attributes struct {
		Name map[string]string `json:"name"`
	} `json:"attributes"`
}

// mdRelationship covers both cover_art (fileName) and author (name)
// relationship payloads; absent fields decode to zero values.
type mdRelationship struct {
	Type       string `json:"type"`
	Attributes struct {
		FileName string `json:"fileName"`
		Name     string `json:"name"`
	} `json:"attributes"`
}

type mdStatsResponse struct {
	Statistics map[string]mdStats `json:"statistics"`
}

type mdStats struct {
	Rating struct {
		Bayesian *float64 `json:"bayesian"`
	} `json:"rating"`
}

// Search queries MangaDex for the manga category only.
func (c *MangaDex) Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error) {
	if category != models.CategoryManga {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", strconv.Itoa(perPage))
	params.Add("includes[]", "cover_art")
	params.Add("includes[]", "author")
	params.Set("order[relevance]", "desc")
	params.Add("contentRating[]", "safe")
	params.Add("contentRating[]", "suggestive")

	resp, err := c.get(ctx, "/manga", params)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(NameMangaDex, c.limiter, resp)
	}

	var list mdListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode mangadex response: %w", err)
	}

	stats := c.fetchStats(ctx, list.Data)

	candidates := make([]models.Candidate, 0, len(list.Data))
	for _, manga := range list.Data {
		candidates = append(candidates, mapMangaDexManga(manga, stats[manga.ID]))
	}
	return candidates, nil
}

func (c *MangaDex) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build mangadex request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mangadex request failed: %w", err)
	}
	return resp, nil
}

// fetchStats batch-loads bayesian ratings for all hits in one call.
// Failures degrade to scoreless results rather than failing the search.
func (c *MangaDex) fetchStats(ctx context.Context, mangas []mdManga) map[string]mdStats {
	if len(mangas) == 0 {
		return nil
	}

	params := url.Values{}
	for _, m := range mangas {
		params.Add("manga[]", m.ID)
	}

	resp, err := c.get(ctx, "/statistics/manga", params)
	if err != nil {
		c.logger.Debug("mangadex statistics fetch failed", zap.Error(err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("mangadex statistics returned non-OK", zap.Int("status", resp.StatusCode))
		return nil
	}

	var stats mdStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		c.logger.Debug("mangadex statistics decode failed", zap.Error(err))
		return nil
	}
	return stats.Statistics
}

func mapMangaDexManga(manga mdManga, stats mdStats) models.Candidate {
	kind, kindLabel := mangadexKind(manga.Attributes)

	cand := models.Candidate{
		Title:     mangadexTitle(manga.Attributes.Title),
		MediaType: kind,
		Source:    NameMangaDex,
	}

	id := manga.ID
	cand.ExternalID = &id

	if stats.Rating.Bayesian != nil {
		cand.GlobalScore = ScoreFrom10(*stats.Rating.Bayesian)
	}

	// lastChapter arrives as a string like "142" or "84.5".
	if f, err := strconv.ParseFloat(manga.Attributes.LastChapter, 64); err == nil && f > 0 {
		total := int(f)
		cand.TotalEpisodes = &total
	}

	if file := mangadexCoverFile(manga.Relationships); file != "" {
		u := fmt.Sprintf("%s/%s/%s.256.jpg", mangadexCoverBase, manga.ID, file)
		cand.PosterURL = &u
	}

	year := "?"
	if manga.Attributes.Year != nil {
		year = strconv.Itoa(*manga.Attributes.Year)
	}
	status := manga.Attributes.Status
	if status == "" {
		status = "unknown"
	}
	cand.FormatLabel = fmt.Sprintf("%s · %s (%s, %s)", kindLabel, mangadexAuthor(manga.Relationships), year, status)

	return cand
}

// mangadexTitle prefers English, then romanized Japanese, then Japanese,
// then whatever language is present.
func mangadexTitle(titles map[string]string) string {
	for _, lang := range []string{"en", "ja-ro", "ja"} {
		if t := titles[lang]; t != "" {
			return t
		}
	}
	for _, t := range titles {
		if t != "" {
			return t
		}
	}
	return "Unknown"
}

// mangadexKind classifies by original language: Korean titles are manhwa,
// or webtoons when tagged Long Strip. Everything else is manga.
func mangadexKind(attrs mdAttributes) (models.MediaType, string) {
	if attrs.OriginalLanguage == "ko" {
		if mangadexHasTag(attrs.Tags, "Long Strip") {
			return models.MediaWebtoon, "Webtoon"
		}
		return models.MediaManhwa, "Manhwa"
	}
	return models.MediaManga, "Manga"
}

func mangadexHasTag(tags []mdTag, name string) bool {
	for _, t := range tags {
		if strings.EqualFold(t.Attributes.Name["en"], name) {
			return true
		}
	}
	return false
}

func mangadexCoverFile(rels []mdRelationship) string {
	for _, r := range rels {
		if r.Type == "cover_art" {
			return r.Attributes.FileName
		}
	}
	return ""
}

func mangadexAuthor(rels []mdRelationship) string {
	for _, r := range rels {
		if r.Type == "author" && r.Attributes.Name != "" {
			return r.Attributes.Name
		}
	}
	return "Unknown"
}
