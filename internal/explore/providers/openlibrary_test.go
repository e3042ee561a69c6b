package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperjump/tana/internal/models"
)

func TestOpenLibrary_SearchBooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "dune" || q.Get("limit") != "10" {
			t.Errorf("query params: got %v", q)
		}
		if !strings.Contains(q.Get("fields"), "ratings_average") {
			t.Errorf("fields: got %q", q.Get("fields"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"docs": []map[string]any{
				{
					"key":                    "/works/OL893415W",
					"title":                  "Dune",
					"author_name":            []string{"Frank Herbert"},
					"first_publish_year":     1965,
					"cover_i":                11481354,
					"number_of_pages_median": 512,
					"ratings_average":        4.25,
				},
				{
					"key": "/works/OL000001W",
				},
				{
					"key":   "/works/OL000002W",
					"title": "Dune Messiah",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenLibrary(srv.URL, testLimiter(), nil)
	got, err := c.Search(context.Background(), "dune", models.CategoryBook)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 (untitled doc skipped)", len(got))
	}

	dune := got[0]
	if dune.Title != "Dune" || dune.MediaType != models.MediaBook {
		t.Errorf("got title %q type %q", dune.Title, dune.MediaType)
	}
	if dune.GlobalScore == nil || *dune.GlobalScore != 8.5 {
		t.Errorf("score: got %v, want 8.5 (4.25 stars doubled)", fmtScore(dune.GlobalScore))
	}
	if dune.ExternalID == nil || *dune.ExternalID != "/works/OL893415W" {
		t.Errorf("external id: got %v", dune.ExternalID)
	}
	if dune.PosterURL == nil || *dune.PosterURL != "https://covers.openlibrary.org/b/id/11481354-M.jpg" {
		t.Errorf("cover: got %v", dune.PosterURL)
	}
	if dune.TotalEpisodes == nil || *dune.TotalEpisodes != 512 {
		t.Errorf("pages: got %v", dune.TotalEpisodes)
	}
	if dune.FormatLabel != "Frank Herbert (1965)" {
		t.Errorf("label: got %q", dune.FormatLabel)
	}
	if dune.Source != "openlibrary" {
		t.Errorf("source: got %q", dune.Source)
	}

	bare := got[1]
	if bare.GlobalScore != nil || bare.PosterURL != nil || bare.TotalEpisodes != nil {
		t.Errorf("sparse doc should keep fields absent: %+v", bare)
	}
	if bare.FormatLabel != "Unknown (?)" {
		t.Errorf("label: got %q", bare.FormatLabel)
	}
}

func TestOpenLibrary_SearchLightNovels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"docs": []map[string]any{
				{
					"key":         "/works/OL17358865W",
					"title":       "Sword Art Online 1: Aincrad",
					"author_name": []string{"Reki Kawahara"},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenLibrary(srv.URL, testLimiter(), nil)
	got, err := c.Search(context.Background(), "sword art", models.CategoryLightNovel)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].MediaType != models.MediaLightNovel {
		t.Errorf("type: got %q, want light_novel", got[0].MediaType)
	}
}

func TestOpenLibrary_UnroutedCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unrouted category must not reach the API")
	}))
	defer srv.Close()

	c := NewOpenLibrary(srv.URL, testLimiter(), nil)
	got, err := c.Search(context.Background(), "dune", models.CategorySeries)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestOpenLibrary_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOpenLibrary(srv.URL, testLimiter(), nil)
	_, err := c.Search(context.Background(), "dune", models.CategoryBook)
	if err == nil {
		t.Fatal("expected an error")
	}
	if ErrorKind(err) != "api" {
		t.Errorf("kind: got %q, want api", ErrorKind(err))
	}
}

func TestOpenLibrary_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewOpenLibrary(srv.URL, testLimiter(), nil)
	_, err := c.Search(context.Background(), "dune", models.CategoryBook)
	if err == nil {
		t.Fatal("expected an error")
	}
	if ErrorKind(err) != "malformed" {
		t.Errorf("kind: got %q, want malformed", ErrorKind(err))
	}
}
