package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hyperjump/tana/internal/models"
	"go.uber.org/zap"
)

const defaultAniListURL = "https://graphql.anilist.co"

const anilistSearchQuery = `
query ($search: String, $type: MediaType, $format: MediaFormat, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $search, type: $type, format: $format, sort: SEARCH_MATCH) {
      id
      title {
        romaji
        english
      }
      episodes
      chapters
      meanScore
      coverImage {
        large
      }
      format
      countryOfOrigin
    }
  }
}
`

// AniList searches the AniList GraphQL API for anime, manga, and light novels.
type AniList struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     *zap.Logger
}

// NewAniList creates an AniList adapter. Empty baseURL uses the public API.
func NewAniList(baseURL string, limiter *RateLimiter, logger *zap.Logger) *AniList {
	if baseURL == "" {
		baseURL = defaultAniListURL
	}
	if limiter == nil {
		limiter = NewRateLimiter(NameAniList)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AniList{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(),
		limiter:    limiter,
		logger:     logger,
	}
}

func (c *AniList) Name() string { return NameAniList }

// Eligible is always true; AniList needs no credentials.
func (c *AniList) Eligible() bool { return true }

type gqlRequest struct {
	Query     string       `json:"query"`
	Variables gqlVariables `json:"variables"`
}

type gqlVariables struct {
	Search  string `json:"search"`
	Type    string `json:"type"`
	Format  string `json:"format,omitempty"`
	PerPage int    `json:"perPage"`
}

type gqlResponse struct {
	Data   *gqlData   `json:"data"`
	Errors []gqlError `json:"errors"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlData struct {
	Page gqlPage `json:"Page"`
}

type gqlPage struct {
	Media []gqlMedia `json:"media"`
}

type gqlTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

type gqlCoverImage struct {
	Large string `json:"large"`
}

type gqlMedia struct {
	ID              int            `json:"id"`
	Title           gqlTitle       `json:"title"`
	Episodes        *int           `json:"episodes"`
	Chapters        *int           `json:"chapters"`
	MeanScore       *float64       `json:"meanScore"`
	CoverImage      *gqlCoverImage `json:"coverImage"`
	Format          string         `json:"format"`
	CountryOfOrigin string         `json:"countryOfOrigin"`
}

// Search queries AniList. Anime searches use type ANIME; manga use MANGA;
// light novel searches use MANGA restricted to the NOVEL format.
func (c *AniList) Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error) {
	var mediaType, format string
	switch category {
	case models.CategoryAnime:
		mediaType = "ANIME"
	case models.CategoryManga:
		mediaType = "MANGA"
	case models.CategoryLightNovel:
		mediaType, format = "MANGA", "NOVEL"
	default:
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(gqlRequest{
		Query: anilistSearchQuery,
		Variables: gqlVariables{
			Search:  query,
			Type:    mediaType,
			Format:  format,
			PerPage: perPage,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal anilist request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build anilist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anilist request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(NameAniList, c.limiter, resp)
	}

	var gql gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gql); err != nil {
		return nil, fmt.Errorf("failed to decode anilist response: %w", err)
	}
	if len(gql.Errors) > 0 {
		msgs := make([]string, len(gql.Errors))
		for i, e := range gql.Errors {
			msgs[i] = e.Message
		}
		return nil, &APIError{Provider: NameAniList, StatusCode: resp.StatusCode, Message: strings.Join(msgs, ", ")}
	}
	if gql.Data == nil {
		return nil, fmt.Errorf("%w: anilist: missing data", ErrMalformedResponse)
	}

	candidates := make([]models.Candidate, 0, len(gql.Data.Page.Media))
	for _, m := range gql.Data.Page.Media {
		candidates = append(candidates, mapAniListMedia(m, category))
	}
	return candidates, nil
}

func mapAniListMedia(m gqlMedia, category models.MediaCategory) models.Candidate {
	title := m.Title.English
	if title == "" {
		title = m.Title.Romaji
	}
	if title == "" {
		title = "Unknown"
	}

	format := m.Format
	if format == "" {
		format = "UNKNOWN"
	}

	cand := models.Candidate{Title: title, Source: NameAniList}
	id := strconv.Itoa(m.ID)
	cand.ExternalID = &id
	if m.CoverImage != nil && m.CoverImage.Large != "" {
		u := m.CoverImage.Large
		cand.PosterURL = &u
	}
	if m.MeanScore != nil {
		cand.GlobalScore = ScoreFrom100(*m.MeanScore)
	}

	if category == models.CategoryAnime {
		// AniList returns theatrical releases inside anime searches.
		if format == "MOVIE" {
			cand.MediaType = models.MediaMovie
			cand.FormatLabel = "Movie"
			return cand
		}
		cand.MediaType = models.MediaAnime
		cand.FormatLabel = anilistAnimeLabel(format)
		cand.TotalEpisodes = m.Episodes
		return cand
	}

	kind, label := anilistReadableKind(format, m.CountryOfOrigin)
	cand.MediaType = kind
	cand.FormatLabel = label
	cand.TotalEpisodes = m.Chapters
	return cand
}

func anilistAnimeLabel(format string) string {
	switch format {
	case "TV":
		return "TV"
	case "TV_SHORT":
		return "TV Short"
	case "OVA":
		return "OVA"
	case "ONA":
		return "ONA"
	case "SPECIAL":
		return "Special"
	case "MUSIC":
		return "Music"
	}
	return format
}

func anilistReadableKind(format, country string) (models.MediaType, string) {
	if format == "NOVEL" {
		return models.MediaLightNovel, "Light Novel"
	}
	if country == "KR" {
		return models.MediaManhwa, "Manhwa"
	}
	return models.MediaManga, "Manga"
}
