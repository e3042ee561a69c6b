// Package cli renders command output for Tana.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/tana/internal/models"
	"github.com/hyperjump/tana/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const titleWidth = 60

// WriteCandidates writes explore results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteCandidates(w io.Writer, candidates []models.Candidate, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, candidates)
	default:
		writeCandidatesText(w, candidates)
		return nil
	}
}

func writeCandidatesText(w io.Writer, candidates []models.Candidate) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	fmt.Fprintf(w, "\nFound %d results\n\n", len(candidates))
	for i, c := range candidates {
		fmt.Fprintf(w, "%3d. %s\n", i+1, utils.Truncate(c.Title, titleWidth))
		fmt.Fprintf(w, "     Score: %s | %s", scoreText(c.GlobalScore), c.MediaType)
		if c.FormatLabel != "" {
			fmt.Fprintf(w, " | %s", c.FormatLabel)
		}
		if c.TotalEpisodes != nil {
			fmt.Fprintf(w, " | %d ep", *c.TotalEpisodes)
		}
		fmt.Fprintf(w, " | %s\n", c.Source)
	}
}

// WriteItems writes library items to w in the given format.
func WriteItems(w io.Writer, items []*models.MediaItem, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, items)
	default:
		writeItemsText(w, items)
		return nil
	}
}

func writeItemsText(w io.Writer, items []*models.MediaItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Library is empty.")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "%-15s %s (%s) %s",
			"["+string(item.Status)+"]", utils.Truncate(item.Title, titleWidth),
			item.MediaType, progressText(item))
		if item.Score != nil {
			fmt.Fprintf(w, " | Score: %.1f", *item.Score)
		}
		if item.Favorite {
			fmt.Fprint(w, " | favorite")
		}
		fmt.Fprintln(w)
	}
}

// WriteStats writes library statistics to w in the given format.
func WriteStats(w io.Writer, stats *models.Stats, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, stats)
	default:
		writeStatsText(w, stats)
		return nil
	}
}

func writeStatsText(w io.Writer, stats *models.Stats) {
	fmt.Fprintf(w, "\nLibrary: %d items\n\n", stats.Total)
	for _, row := range []struct {
		label string
		count int
	}{
		{"Watching", stats.Watching},
		{"Completed", stats.Completed},
		{"Plan to watch", stats.PlanToWatch},
		{"On hold", stats.OnHold},
		{"Dropped", stats.Dropped},
	} {
		fmt.Fprintf(w, "  %-14s %d\n", row.label, row.count)
	}
	fmt.Fprintln(w)
	for _, row := range []struct {
		label string
		count int
	}{
		{"Movies", stats.Movies},
		{"Series", stats.Series},
		{"Anime", stats.Anime},
		{"Readable", stats.Readable},
	} {
		fmt.Fprintf(w, "  %-14s %d\n", row.label, row.count)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func scoreText(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *score)
}

func progressText(item *models.MediaItem) string {
	if item.TotalUnits == nil {
		return fmt.Sprintf("%d/?", item.Progress)
	}
	return fmt.Sprintf("%d/%d", item.Progress, *item.TotalUnits)
}
