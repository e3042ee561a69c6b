// Package models defines core data structures for library items, explore
// candidates, and queries.
package models

import (
	"fmt"
	"time"
)

// MediaType classifies a library entry or explore result.
type MediaType string

const (
	MediaMovie      MediaType = "movie"
	MediaSeries     MediaType = "series"
	MediaAnime      MediaType = "anime"
	MediaManga      MediaType = "manga"
	MediaManhwa     MediaType = "manhwa"
	MediaWebtoon    MediaType = "webtoon"
	MediaBook       MediaType = "book"
	MediaLightNovel MediaType = "light_novel"
	MediaWebNovel   MediaType = "web_novel"
)

// Valid reports whether m is a known media type.
func (m MediaType) Valid() bool {
	switch m {
	case MediaMovie, MediaSeries, MediaAnime, MediaManga, MediaManhwa,
		MediaWebtoon, MediaBook, MediaLightNovel, MediaWebNovel:
		return true
	}
	return false
}

// Watchable reports whether m is watched (movie, series, anime) rather than read.
func (m MediaType) Watchable() bool {
	switch m {
	case MediaMovie, MediaSeries, MediaAnime:
		return true
	}
	return false
}

// Status is the tracking state of a library item. Watchable types use the
// watch vocabulary (watching, plan_to_watch); readable types use the read
// vocabulary (reading, plan_to_read). The remaining states are shared.
type Status string

const (
	StatusWatching    Status = "watching"
	StatusReading     Status = "reading"
	StatusPlanToWatch Status = "plan_to_watch"
	StatusPlanToRead  Status = "plan_to_read"
	StatusCompleted   Status = "completed"
	StatusOnHold      Status = "on_hold"
	StatusDropped     Status = "dropped"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusWatching, StatusReading, StatusPlanToWatch, StatusPlanToRead,
		StatusCompleted, StatusOnHold, StatusDropped:
		return true
	}
	return false
}

// NormalizeStatus maps s onto the vocabulary of mt: "reading" on a watchable
// type becomes "watching" and vice versa, likewise for the plan states.
// Unknown statuses are returned unchanged (callers validate first).
func NormalizeStatus(s Status, mt MediaType) Status {
	if mt.Watchable() {
		switch s {
		case StatusReading:
			return StatusWatching
		case StatusPlanToRead:
			return StatusPlanToWatch
		}
		return s
	}
	switch s {
	case StatusWatching:
		return StatusReading
	case StatusPlanToWatch:
		return StatusPlanToRead
	}
	return s
}

// MediaItem is a tracked library entry. TotalUnits is episodes for watchable
// types and chapters or pages for readable ones; the wire name stays
// total_episodes for compatibility with existing clients.
type MediaItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	MediaType   MediaType `json:"media_type"`
	Status      Status    `json:"status"`
	Score       *float64  `json:"score,omitempty"`
	GlobalScore *float64  `json:"global_score,omitempty"`
	Progress    int       `json:"progress"`
	TotalUnits  *int      `json:"total_episodes,omitempty"`
	PosterURL   *string   `json:"poster_url,omitempty"`
	Source      *string   `json:"source,omitempty"`
	ExternalID  *string   `json:"external_id,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	Tags        []string  `json:"tags"`
	Favorite    bool      `json:"favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// favoriteTag marks favorites; the flag and the tag are kept in sync so
// clients can use either.
const favoriteTag = "favorite"

// HasTag reports whether the item carries the given tag.
func (m *MediaItem) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SyncFavorite reconciles the favorite flag with the favorite tag.
// Setting either one sets both.
func (m *MediaItem) SyncFavorite() {
	if m.Favorite && !m.HasTag(favoriteTag) {
		m.Tags = append(m.Tags, favoriteTag)
	}
	if m.HasTag(favoriteTag) {
		m.Favorite = true
	}
}

// Validate checks required fields and normalizes the status to the media
// type's vocabulary. Scores outside [0,10] and negative progress are rejected.
func (m *MediaItem) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if !m.MediaType.Valid() {
		return fmt.Errorf("unknown media_type: %s", m.MediaType)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("unknown status: %s", m.Status)
	}
	m.Status = NormalizeStatus(m.Status, m.MediaType)
	m.SyncFavorite()
	if m.Score != nil && (*m.Score < 0 || *m.Score > 10) {
		return fmt.Errorf("score must be in [0,10], got %g", *m.Score)
	}
	if m.GlobalScore != nil && (*m.GlobalScore < 0 || *m.GlobalScore > 10) {
		return fmt.Errorf("global_score must be in [0,10], got %g", *m.GlobalScore)
	}
	if m.Progress < 0 {
		return fmt.Errorf("progress cannot be negative")
	}
	return nil
}

// ProgressPercent returns progress as a percentage of TotalUnits,
// or nil when the total is unknown.
func (m *MediaItem) ProgressPercent() *float64 {
	if m.TotalUnits == nil {
		return nil
	}
	if *m.TotalUnits == 0 {
		zero := 0.0
		return &zero
	}
	p := float64(m.Progress) / float64(*m.TotalUnits) * 100
	return &p
}

// Completed reports whether the item is finished: either marked completed
// or progressed through all known units.
func (m *MediaItem) Completed() bool {
	if m.Status == StatusCompleted {
		return true
	}
	return m.TotalUnits != nil && *m.TotalUnits > 0 && m.Progress >= *m.TotalUnits
}

// ForceComplete marks the item completed and snaps progress to the total.
// When the total is unknown it is set to the current progress.
func (m *MediaItem) ForceComplete() {
	m.Status = StatusCompleted
	if m.TotalUnits == nil {
		t := m.Progress
		m.TotalUnits = &t
	}
	m.Progress = *m.TotalUnits
}

// Stats summarizes the library by status and by media kind. Watching counts
// include reading, plan_to_watch includes plan_to_read. Readable covers
// manga, manhwa, webtoon, book, light novel, and web novel entries.
type Stats struct {
	Total       int `json:"total"`
	Watching    int `json:"watching"`
	Completed   int `json:"completed"`
	PlanToWatch int `json:"plan_to_watch"`
	OnHold      int `json:"on_hold"`
	Dropped     int `json:"dropped"`
	Movies      int `json:"movies"`
	Series      int `json:"series"`
	Anime       int `json:"anime"`
	Readable    int `json:"readable"`
}

// Count adds one item to the stats.
func (s *Stats) Count(item *MediaItem) {
	s.Total++
	switch item.Status {
	case StatusWatching, StatusReading:
		s.Watching++
	case StatusCompleted:
		s.Completed++
	case StatusPlanToWatch, StatusPlanToRead:
		s.PlanToWatch++
	case StatusOnHold:
		s.OnHold++
	case StatusDropped:
		s.Dropped++
	}
	switch item.MediaType {
	case MediaMovie:
		s.Movies++
	case MediaSeries:
		s.Series++
	case MediaAnime:
		s.Anime++
	default:
		s.Readable++
	}
}
