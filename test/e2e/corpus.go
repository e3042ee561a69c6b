// Package e2e exercises the whole stack end to end: fake provider upstreams,
// the real adapters, the explore service, sqlite storage, the bleve index,
// and the HTTP API in front of them.
package e2e

import (
	"strings"

	"github.com/hyperjump/tana/internal/explore/providers"
	"github.com/hyperjump/tana/internal/models"
)

// CatalogEntry is one media title as a fake upstream serves it. Format
// carries the provider-specific shape: the AniList media format (TV, MOVIE,
// MANGA, NOVEL), the TMDB endpoint (movie, tv), or a MangaDex format tag
// (Long Strip). Country is the AniList origin country or the MangaDex
// original language. Score is on the provider's native scale and zero means
// unrated; Units is the episode, chapter, or page count, zero when unknown.
type CatalogEntry struct {
	Provider string
	ID       string
	Title    string
	Format   string
	Country  string
	Score    float64
	Units    int
}

// QueryCase is one explore query and the titles that must appear in its
// results. At least one of ExpectedTitles must be present.
type QueryCase struct {
	Query          string
	Category       models.MediaCategory
	ExpectedTitles []string
	Description    string
}

// Corpus holds the fake catalog entries and the queries run against them.
type Corpus struct {
	Entries   []CatalogEntry
	TestCases []QueryCase
}

// BuildCorpus returns the shared e2e catalog: entries across all four
// providers, with deliberate cross-provider overlaps (Berserk on MangaDex
// and AniList, Spirited Away on AniList and TMDB) and unrated titles so
// ranking with absent scores is exercised.
func BuildCorpus() *Corpus {
	entries := []CatalogEntry{
		// AniList anime.
		{providers.NameAniList, "16498", "Attack on Titan", "TV", "JP", 84, 25},
		{providers.NameAniList, "21", "One Piece", "TV", "JP", 88, 0},
		{providers.NameAniList, "199", "Spirited Away", "MOVIE", "JP", 91, 0},
		{providers.NameAniList, "101348", "Vinland Saga", "TV", "JP", 86, 24},
		{providers.NameAniList, "5114", "Fullmetal Alchemist: Brotherhood", "TV", "JP", 90, 64},
		// AniList manga and light novels.
		{providers.NameAniList, "30002", "Berserk", "MANGA", "JP", 93, 0},
		{providers.NameAniList, "100568", "Solo Leveling", "MANGA", "KR", 85, 179},
		{providers.NameAniList, "104578", "Mushoku Tensei: Jobless Reincarnation", "NOVEL", "JP", 82, 0},
		// TMDB movies and series.
		{providers.NameTMDB, "78", "Blade Runner", "movie", "", 7.9, 0},
		{providers.NameTMDB, "335984", "Blade Runner 2049", "movie", "", 7.5, 0},
		{providers.NameTMDB, "129", "Spirited Away", "movie", "", 8.5, 0},
		{providers.NameTMDB, "27205", "Inception", "movie", "", 8.4, 0},
		{providers.NameTMDB, "1396", "Breaking Bad", "tv", "", 8.9, 0},
		{providers.NameTMDB, "60059", "Better Call Saul", "tv", "", 8.7, 0},
		{providers.NameTMDB, "92685", "Blade Runner: Black Lotus", "tv", "", 0, 0},
		// MangaDex.
		{providers.NameMangaDex, "md-berserk", "Berserk", "", "ja", 9.4, 364},
		{providers.NameMangaDex, "md-vagabond", "Vagabond", "", "ja", 9.2, 327},
		{providers.NameMangaDex, "md-solo-leveling", "Solo Leveling", "Long Strip", "ko", 8.9, 179},
		{providers.NameMangaDex, "md-berserk-prototype", "Berserk: The Prototype", "", "ja", 0, 0},
		// Open Library.
		{providers.NameOpenLibrary, "/works/OL893415W", "Dune", "", "", 4.3, 412},
		{providers.NameOpenLibrary, "/works/OL18417W", "Dune Messiah", "", "", 3.9, 256},
		{providers.NameOpenLibrary, "/works/OL27448W", "The Lord of the Rings", "", "", 4.5, 1178},
		{providers.NameOpenLibrary, "/works/OL15358691W", "Mushoku Tensei: Jobless Reincarnation", "", "", 4.1, 0},
		{providers.NameOpenLibrary, "/works/OL3297186W", "The Dune Encyclopedia", "", "", 0, 0},
	}

	cases := []QueryCase{
		{"attack on titan", models.CategoryAnime, []string{"Attack on Titan"}, "anime search returns the AniList hit"},
		{"vinland", models.CategoryAnime, []string{"Vinland Saga"}, "partial titles match"},
		{"one piece", models.CategoryAnime, []string{"One Piece"}, "running shows with no episode total still rank"},
		{"spirited away", models.CategoryAnime, []string{"Spirited Away"}, "theatrical entries show up in anime search"},
		{"blade runner", models.CategoryMovie, []string{"Blade Runner", "Blade Runner 2049"}, "movie search returns TMDB movies"},
		{"blade runner", models.CategorySeries, []string{"Blade Runner: Black Lotus"}, "series search returns TMDB tv, even unrated"},
		{"breaking bad", models.CategorySeries, []string{"Breaking Bad"}, "series search finds exact titles"},
		{"berserk", models.CategoryManga, []string{"Berserk"}, "manga search merges MangaDex and AniList"},
		{"solo leveling", models.CategoryManga, []string{"Solo Leveling"}, "korean titles classify as manhwa or webtoon"},
		{"dune", models.CategoryBook, []string{"Dune", "Dune Messiah"}, "book search returns Open Library works"},
		{"mushoku tensei", models.CategoryLightNovel, []string{"Mushoku Tensei: Jobless Reincarnation"}, "light novel search asks Open Library and AniList"},
	}

	return &Corpus{Entries: entries, TestCases: cases}
}

// ByProvider returns the entries one provider serves.
func (c *Corpus) ByProvider(provider string) []CatalogEntry {
	var out []CatalogEntry
	for _, e := range c.Entries {
		if e.Provider == provider {
			out = append(out, e)
		}
	}
	return out
}

// Matching filters entries to those whose title contains the query,
// case-insensitively. The fake upstreams all match this way, which is loose
// enough to stand in for the real catalogs' relevance search.
func Matching(entries []CatalogEntry, query string) []CatalogEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []CatalogEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Title), q) {
			out = append(out, e)
		}
	}
	return out
}
