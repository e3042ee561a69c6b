package models

// MediaCategory is the search category of an explore request. It selects
// which providers are queried; the media type of each result is decided
// per hit by the provider (an anime search can return a movie format).
type MediaCategory string

const (
	CategoryAnime      MediaCategory = "anime"
	CategoryMovie      MediaCategory = "movie"
	CategorySeries     MediaCategory = "series"
	CategoryManga      MediaCategory = "manga"
	CategoryBook       MediaCategory = "book"
	CategoryLightNovel MediaCategory = "light_novel"
)

// Candidate is one normalized hit from an external catalog provider and the
// wire shape of /api/explore results. GlobalScore is on the unified 0-10
// scale; nil means the provider reported no rating (never zero-filled).
// Nullable fields serialize as explicit null.
type Candidate struct {
	Title         string    `json:"title"`
	MediaType     MediaType `json:"media_type"`
	GlobalScore   *float64  `json:"global_score"`
	ExternalID    *string   `json:"external_id"`
	PosterURL     *string   `json:"poster_url"`
	Source        string    `json:"source"`
	TotalEpisodes *int      `json:"total_episodes"`
	FormatLabel   string    `json:"format_label"`
}

// DedupKey returns the identity key (source, external id) and whether the
// candidate has one. Candidates without an external id are never treated
// as duplicates of anything.
func (c *Candidate) DedupKey() (string, bool) {
	if c.ExternalID == nil || *c.ExternalID == "" {
		return "", false
	}
	return c.Source + "\x00" + *c.ExternalID, true
}

// MediaItem converts an explore hit into a new library entry with the
// plan-to-watch or plan-to-read status matching its kind. The provider's
// format label is kept as the initial note.
func (c *Candidate) MediaItem() *MediaItem {
	status := StatusPlanToWatch
	if !c.MediaType.Watchable() {
		status = StatusPlanToRead
	}
	item := &MediaItem{
		Title:       c.Title,
		MediaType:   c.MediaType,
		Status:      status,
		GlobalScore: c.GlobalScore,
		TotalUnits:  c.TotalEpisodes,
		PosterURL:   c.PosterURL,
		ExternalID:  c.ExternalID,
	}
	src := c.Source
	item.Source = &src
	if c.FormatLabel != "" {
		label := c.FormatLabel
		item.Notes = &label
	}
	return item
}
