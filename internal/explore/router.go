package explore

import (
	"errors"
	"fmt"

	"github.com/hyperjump/tana/internal/explore/providers"
	"github.com/hyperjump/tana/internal/models"
)

// ErrInvalidCategory is returned when a search names a category no provider
// serves. The HTTP layer maps it to a 400.
var ErrInvalidCategory = errors.New("invalid media category")

// routes maps each category to its providers. Order matters: results are
// merged and deduplicated in this order.
var routes = map[models.MediaCategory][]string{
	models.CategoryAnime:      {providers.NameAniList},
	models.CategoryMovie:      {providers.NameTMDB},
	models.CategorySeries:     {providers.NameTMDB},
	models.CategoryManga:      {providers.NameMangaDex, providers.NameAniList},
	models.CategoryBook:       {providers.NameOpenLibrary},
	models.CategoryLightNovel: {providers.NameOpenLibrary, providers.NameAniList},
}

// Route returns the ordered provider names for a category.
func Route(category models.MediaCategory) ([]string, error) {
	names, ok := routes[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return names, nil
}
