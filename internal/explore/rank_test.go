package explore

import (
	"testing"

	"github.com/hyperjump/tana/internal/models"
)

func scored(title string, score float64) models.Candidate {
	return models.Candidate{Title: title, GlobalScore: &score}
}

func unscored(title string) models.Candidate {
	return models.Candidate{Title: title}
}

func withID(c models.Candidate, source, id string) models.Candidate {
	c.Source = source
	c.ExternalID = &id
	return c
}

func titles(candidates []models.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Title
	}
	return out
}

func TestRank_ScoreDescendingUnratedLast(t *testing.T) {
	candidates := []models.Candidate{
		scored("Middling", 7.0),
		unscored("No Rating"),
		scored("Great", 9.0),
	}
	Rank(candidates)
	want := []string{"Great", "Middling", "No Rating"}
	got := titles(candidates)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}
}

func TestRank_TitleTieBreakCaseInsensitive(t *testing.T) {
	candidates := []models.Candidate{
		scored("banana", 8.0),
		scored("Apple", 8.0),
		scored("cherry", 8.0),
	}
	Rank(candidates)
	want := []string{"Apple", "banana", "cherry"}
	got := titles(candidates)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v, want %v", got, want)
		}
	}
}

func TestRank_EqualFoldTitlesUseByteOrder(t *testing.T) {
	candidates := []models.Candidate{
		scored("apple", 8.0),
		scored("Apple", 8.0),
	}
	Rank(candidates)
	if candidates[0].Title != "Apple" || candidates[1].Title != "apple" {
		t.Errorf("order: got %v", titles(candidates))
	}
}

func TestRank_UnratedSortByTitle(t *testing.T) {
	candidates := []models.Candidate{
		unscored("Zeta"),
		unscored("alpha"),
	}
	Rank(candidates)
	if candidates[0].Title != "alpha" {
		t.Errorf("order: got %v", titles(candidates))
	}
}

func TestRank_FullTiesKeepInputOrder(t *testing.T) {
	a := withID(scored("Same", 8.0), "mangadex", "1")
	b := withID(scored("Same", 8.0), "anilist", "2")
	candidates := []models.Candidate{a, b}
	Rank(candidates)
	if candidates[0].Source != "mangadex" || candidates[1].Source != "anilist" {
		t.Errorf("full ties should keep input order, got %v then %v",
			candidates[0].Source, candidates[1].Source)
	}
}

func TestDedup_FirstOccurrenceWins(t *testing.T) {
	first := withID(scored("Solo Leveling", 9.1), "mangadex", "abc")
	second := withID(scored("Solo Leveling (dup)", 8.0), "mangadex", "abc")
	got := Dedup([]models.Candidate{first, second})
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Title != "Solo Leveling" {
		t.Errorf("kept %q, want the first occurrence", got[0].Title)
	}
}

func TestDedup_SameIDDifferentSourceKept(t *testing.T) {
	a := withID(scored("Berserk", 9.0), "mangadex", "42")
	b := withID(scored("Berserk", 9.3), "anilist", "42")
	got := Dedup([]models.Candidate{a, b})
	if len(got) != 2 {
		t.Errorf("got %d candidates, want 2; providers never share identity", len(got))
	}
}

func TestDedup_NoExternalIDNeverDropped(t *testing.T) {
	a := unscored("Mystery")
	a.Source = "openlibrary"
	b := unscored("Mystery")
	b.Source = "openlibrary"
	got := Dedup([]models.Candidate{a, b})
	if len(got) != 2 {
		t.Errorf("got %d candidates, want 2", len(got))
	}
}

func TestTruncate(t *testing.T) {
	candidates := make([]models.Candidate, 70)
	if got := Truncate(candidates, 60); len(got) != 60 {
		t.Errorf("got %d, want 60", len(got))
	}
	if got := Truncate(candidates[:10], 60); len(got) != 10 {
		t.Errorf("got %d, want 10", len(got))
	}
	if got := Truncate(candidates, 0); len(got) != 70 {
		t.Errorf("zero limit should leave the list alone, got %d", len(got))
	}
}
