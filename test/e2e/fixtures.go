// This file runs fake provider upstreams that serve the corpus in each
// provider's own wire format, so the real adapters can be pointed at them.
package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/hyperjump/tana/internal/explore/providers"
)

// fakeCatalogs bundles one fake upstream per provider.
type fakeCatalogs struct {
	AniList     *httptest.Server
	TMDB        *httptest.Server
	MangaDex    *httptest.Server
	OpenLibrary *httptest.Server
}

// startCatalogs starts all four fake upstreams over the given corpus. The
// caller must Close the result.
func startCatalogs(corpus *Corpus) *fakeCatalogs {
	return &fakeCatalogs{
		AniList:     httptest.NewServer(anilistHandler(corpus)),
		TMDB:        httptest.NewServer(tmdbHandler(corpus)),
		MangaDex:    httptest.NewServer(mangadexHandler(corpus)),
		OpenLibrary: httptest.NewServer(openLibraryHandler(corpus)),
	}
}

func (f *fakeCatalogs) Close() {
	f.AniList.Close()
	f.TMDB.Close()
	f.MangaDex.Close()
	f.OpenLibrary.Close()
}

// anilistSearchKind says whether an AniList media format is found by ANIME
// or MANGA search.
func anilistSearchKind(format string) string {
	switch format {
	case "MANGA", "NOVEL", "ONE_SHOT":
		return "MANGA"
	}
	return "ANIME"
}

// anilistHandler serves the GraphQL search the AniList adapter issues. Only
// the variables matter; the query document is ignored.
func anilistHandler(corpus *Corpus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Search  string `json:"search"`
				Type    string `json:"type"`
				Format  string `json:"format"`
				PerPage int    `json:"perPage"`
			} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		media := []map[string]interface{}{}
		for _, e := range Matching(corpus.ByProvider(providers.NameAniList), req.Variables.Search) {
			if anilistSearchKind(e.Format) != req.Variables.Type {
				continue
			}
			if req.Variables.Format != "" && e.Format != req.Variables.Format {
				continue
			}
			id, _ := strconv.Atoi(e.ID)
			m := map[string]interface{}{
				"id":              id,
				"title":           map[string]interface{}{"english": e.Title},
				"format":          e.Format,
				"countryOfOrigin": e.Country,
				"coverImage":      map[string]interface{}{"large": "https://img.invalid/anilist/" + e.ID + ".png"},
			}
			if e.Score > 0 {
				m["meanScore"] = e.Score
			}
			if e.Units > 0 {
				if req.Variables.Type == "MANGA" {
					m["chapters"] = e.Units
				} else {
					m["episodes"] = e.Units
				}
			}
			media = append(media, m)
		}

		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{
				"Page": map[string]interface{}{"media": media},
			},
		})
	})
}

// tmdbHandler serves /search/movie and /search/tv with their different
// title and date field names.
func tmdbHandler(corpus *Corpus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var wantFormat, titleField, dateField string
		switch r.URL.Path {
		case "/search/movie":
			wantFormat, titleField, dateField = "movie", "title", "release_date"
		case "/search/tv":
			wantFormat, titleField, dateField = "tv", "name", "first_air_date"
		default:
			http.NotFound(w, r)
			return
		}

		results := []map[string]interface{}{}
		for _, e := range Matching(corpus.ByProvider(providers.NameTMDB), r.URL.Query().Get("query")) {
			if e.Format != wantFormat {
				continue
			}
			id, _ := strconv.Atoi(e.ID)
			m := map[string]interface{}{
				"id":          id,
				titleField:    e.Title,
				dateField:     "2017-01-01",
				"poster_path": "/tmdb-" + e.ID + ".jpg",
			}
			if e.Score > 0 {
				m["vote_average"] = e.Score
			}
			results = append(results, m)
		}

		writeJSON(w, map[string]interface{}{"results": results})
	})
}

// mangadexHandler serves the manga listing plus the separate statistics
// endpoint ratings come from.
func mangadexHandler(corpus *Corpus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/manga":
			data := []map[string]interface{}{}
			for _, e := range Matching(corpus.ByProvider(providers.NameMangaDex), r.URL.Query().Get("title")) {
				attrs := map[string]interface{}{
					"title":            map[string]interface{}{"en": e.Title},
					"originalLanguage": e.Country,
					"status":           "ongoing",
				}
				if e.Units > 0 {
					attrs["lastChapter"] = strconv.Itoa(e.Units)
				}
				if e.Format != "" {
					attrs["tags"] = []map[string]interface{}{
						{"attributes": map[string]interface{}{"name": map[string]interface{}{"en": e.Format}}},
					}
				}
				data = append(data, map[string]interface{}{
					"id":         e.ID,
					"attributes": attrs,
					"relationships": []map[string]interface{}{
						{"type": "cover_art", "attributes": map[string]interface{}{"fileName": e.ID + ".jpg"}},
					},
				})
			}
			writeJSON(w, map[string]interface{}{"data": data})

		case "/statistics/manga":
			stats := map[string]interface{}{}
			for _, id := range r.URL.Query()["manga[]"] {
				for _, e := range corpus.ByProvider(providers.NameMangaDex) {
					if e.ID == id && e.Score > 0 {
						stats[id] = map[string]interface{}{
							"rating": map[string]interface{}{"bayesian": e.Score},
						}
					}
				}
			}
			writeJSON(w, map[string]interface{}{"statistics": stats})

		default:
			http.NotFound(w, r)
		}
	})
}

// openLibraryHandler serves /search.json.
func openLibraryHandler(corpus *Corpus) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			http.NotFound(w, r)
			return
		}

		docs := []map[string]interface{}{}
		for _, e := range Matching(corpus.ByProvider(providers.NameOpenLibrary), r.URL.Query().Get("q")) {
			d := map[string]interface{}{
				"key":                e.ID,
				"title":              e.Title,
				"author_name":        []string{"Corpus Author"},
				"first_publish_year": 1990,
			}
			if e.Score > 0 {
				d["ratings_average"] = e.Score
			}
			if e.Units > 0 {
				d["number_of_pages_median"] = e.Units
			}
			docs = append(docs, d)
		}

		writeJSON(w, map[string]interface{}{"docs": docs})
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
