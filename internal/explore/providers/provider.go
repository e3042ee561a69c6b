// Package providers contains the external catalog adapters queried by explore.
// Each adapter normalizes its provider's schema into models.Candidate: titles
// resolved to one display string, ratings converted to the unified 0-10 scale,
// absent fields left nil.
package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/hyperjump/tana/internal/models"
)

// Provider names, used in routing tables, rate limit configs, and result sources.
const (
	NameAniList     = "anilist"
	NameTMDB        = "tmdb"
	NameMangaDex    = "mangadex"
	NameOpenLibrary = "openlibrary"
)

// perPage is how many results each provider fetches; only the first page
// is ever requested.
const perPage = 10

// defaultHTTPTimeout bounds a single provider call when the caller supplies
// no deadline (direct CLI use). Under the server's fan-out the shared
// context deadline is the binding one.
const defaultHTTPTimeout = 10 * time.Second

// Provider is one external catalog. Implementations are safe for
// concurrent use.
type Provider interface {
	// Name returns the stable provider id.
	Name() string
	// Eligible reports whether the provider can be queried at all
	// (e.g. credentials configured). Ineligible providers are skipped
	// silently, not treated as errors.
	Eligible() bool
	// Search returns first-page candidates for the query in the given
	// category. It returns either candidates or an error, never both.
	Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}
