package e2e

import (
	"context"
	"testing"

	"github.com/hyperjump/tana/internal/explore/providers"
	"github.com/hyperjump/tana/internal/models"
)

// fastLimiter returns a limiter that never throttles, so tests are not
// pacing themselves against the public-API defaults.
func fastLimiter() *providers.RateLimiter {
	return providers.NewRateLimiterWithConfig(providers.RateLimitConfig{
		RequestsPerSecond: 1000,
		BurstSize:         1000,
	})
}

// Each fake upstream must be parseable by its real adapter, or every
// end-to-end failure becomes a fixture-format hunt.
func TestFakeCatalogs_SpeakEachAdapterDialect(t *testing.T) {
	fakes := startCatalogs(BuildCorpus())
	defer fakes.Close()
	ctx := context.Background()

	t.Run("anilist", func(t *testing.T) {
		c := providers.NewAniList(fakes.AniList.URL, fastLimiter(), nil)
		got, err := c.Search(ctx, "attack on titan", models.CategoryAnime)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Attack on Titan" {
			t.Fatalf("got %+v, want the single Attack on Titan hit", got)
		}
		hit := got[0]
		if hit.MediaType != models.MediaAnime {
			t.Errorf("media type: got %s, want anime", hit.MediaType)
		}
		if hit.GlobalScore == nil || *hit.GlobalScore != 8.4 {
			t.Errorf("score: got %v, want 8.4", hit.GlobalScore)
		}
		if hit.TotalEpisodes == nil || *hit.TotalEpisodes != 25 {
			t.Errorf("episodes: got %v, want 25", hit.TotalEpisodes)
		}
		if hit.ExternalID == nil || *hit.ExternalID != "16498" {
			t.Errorf("external id: got %v, want 16498", hit.ExternalID)
		}
	})

	t.Run("anilist theatrical", func(t *testing.T) {
		c := providers.NewAniList(fakes.AniList.URL, fastLimiter(), nil)
		got, err := c.Search(ctx, "spirited away", models.CategoryAnime)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d hits, want 1", len(got))
		}
		if got[0].MediaType != models.MediaMovie {
			t.Errorf("media type: got %s, want movie", got[0].MediaType)
		}
		if got[0].FormatLabel != "Movie" {
			t.Errorf("format label: got %q, want Movie", got[0].FormatLabel)
		}
	})

	t.Run("tmdb", func(t *testing.T) {
		c := providers.NewTMDB(fakes.TMDB.URL, "e2e-key", fastLimiter(), nil)
		got, err := c.Search(ctx, "breaking bad", models.CategorySeries)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Breaking Bad" {
			t.Fatalf("got %+v, want the single Breaking Bad hit", got)
		}
		hit := got[0]
		if hit.MediaType != models.MediaSeries {
			t.Errorf("media type: got %s, want series", hit.MediaType)
		}
		if hit.GlobalScore == nil || *hit.GlobalScore != 8.9 {
			t.Errorf("score: got %v, want 8.9", hit.GlobalScore)
		}
		if hit.FormatLabel != "TV Series (2017)" {
			t.Errorf("format label: got %q", hit.FormatLabel)
		}
	})

	t.Run("tmdb unrated", func(t *testing.T) {
		c := providers.NewTMDB(fakes.TMDB.URL, "e2e-key", fastLimiter(), nil)
		got, err := c.Search(ctx, "blade runner", models.CategorySeries)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Blade Runner: Black Lotus" {
			t.Fatalf("got %+v, want the single Black Lotus hit", got)
		}
		if got[0].GlobalScore != nil {
			t.Errorf("score: got %v, want nil for an unrated title", *got[0].GlobalScore)
		}
	})

	t.Run("mangadex", func(t *testing.T) {
		c := providers.NewMangaDex(fakes.MangaDex.URL, "tana-e2e/1.0", fastLimiter(), nil)
		got, err := c.Search(ctx, "solo leveling", models.CategoryManga)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Title != "Solo Leveling" {
			t.Fatalf("got %+v, want the single Solo Leveling hit", got)
		}
		hit := got[0]
		// Korean origin plus the Long Strip tag classifies as webtoon.
		if hit.MediaType != models.MediaWebtoon {
			t.Errorf("media type: got %s, want webtoon", hit.MediaType)
		}
		if hit.GlobalScore == nil || *hit.GlobalScore != 8.9 {
			t.Errorf("score: got %v, want 8.9", hit.GlobalScore)
		}
		if hit.TotalEpisodes == nil || *hit.TotalEpisodes != 179 {
			t.Errorf("chapters: got %v, want 179", hit.TotalEpisodes)
		}
	})

	t.Run("openlibrary", func(t *testing.T) {
		c := providers.NewOpenLibrary(fakes.OpenLibrary.URL, fastLimiter(), nil)
		got, err := c.Search(ctx, "lord of the rings", models.CategoryBook)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 1 || got[0].Title != "The Lord of the Rings" {
			t.Fatalf("got %+v, want the single Lord of the Rings hit", got)
		}
		hit := got[0]
		if hit.MediaType != models.MediaBook {
			t.Errorf("media type: got %s, want book", hit.MediaType)
		}
		// 4.5 of 5 stars doubles to 9.0 on the unified scale.
		if hit.GlobalScore == nil || *hit.GlobalScore != 9.0 {
			t.Errorf("score: got %v, want 9.0", hit.GlobalScore)
		}
		if hit.TotalEpisodes == nil || *hit.TotalEpisodes != 1178 {
			t.Errorf("pages: got %v, want 1178", hit.TotalEpisodes)
		}
		if hit.FormatLabel != "Corpus Author (1990)" {
			t.Errorf("format label: got %q", hit.FormatLabel)
		}
	})
}
