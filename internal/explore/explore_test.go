package explore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/tana/internal/config"
	"github.com/hyperjump/tana/internal/models"
)

type fakeProvider struct {
	name     string
	eligible bool
	results  []models.Candidate
	err      error
	delay    time.Duration

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Name() string   { return f.name }
func (f *fakeProvider) Eligible() bool { return f.eligible }

func (f *fakeProvider) Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.results, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *config.ExploreConfig {
	return &config.ExploreConfig{TimeoutSeconds: 5, MaxResults: 60}
}

func mangaQuery(q string) *models.ExploreQuery {
	return &models.ExploreQuery{Query: q, Category: models.CategoryManga}
}

func TestService_Search_MergesInRoutingOrder(t *testing.T) {
	md := &fakeProvider{
		name: "mangadex", eligible: true,
		results: []models.Candidate{withID(scored("Solo Leveling", 9.1), "mangadex", "md-1")},
		delay:   50 * time.Millisecond,
	}
	al := &fakeProvider{
		name: "anilist", eligible: true,
		results: []models.Candidate{
			withID(scored("Solo Leveling", 8.7), "anilist", "al-1"),
			withID(scored("Berserk", 9.4), "anilist", "al-2"),
		},
	}
	svc := NewService(testConfig(), nil, md, al)

	got, err := svc.Search(context.Background(), mangaQuery("solo"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	want := []string{"Berserk", "Solo Leveling", "Solo Leveling"}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("order: got %v", titles(got))
		}
	}
	if *got[1].GlobalScore != 9.1 || *got[2].GlobalScore != 8.7 {
		t.Errorf("scores: got %v then %v", *got[1].GlobalScore, *got[2].GlobalScore)
	}
}

func TestService_Search_ProviderFailureIsolated(t *testing.T) {
	md := &fakeProvider{name: "mangadex", eligible: true, err: errors.New("upstream down")}
	al := &fakeProvider{
		name: "anilist", eligible: true,
		results: []models.Candidate{withID(scored("Berserk", 9.4), "anilist", "al-2")},
	}
	svc := NewService(testConfig(), nil, md, al)

	got, err := svc.Search(context.Background(), mangaQuery("berserk"))
	if err != nil {
		t.Fatalf("one provider failing must not fail the search: %v", err)
	}
	if len(got) != 1 || got[0].Source != "anilist" {
		t.Errorf("got %v", got)
	}
}

func TestService_Search_AllProvidersFail(t *testing.T) {
	md := &fakeProvider{name: "mangadex", eligible: true, err: errors.New("down")}
	al := &fakeProvider{name: "anilist", eligible: true, err: errors.New("down")}
	svc := NewService(testConfig(), nil, md, al)

	got, err := svc.Search(context.Background(), mangaQuery("berserk"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if got == nil {
		t.Fatal("result must be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("got %d results, want 0", len(got))
	}
}

func TestService_Search_SlowProviderBoundedByTimeout(t *testing.T) {
	cfg := &config.ExploreConfig{TimeoutSeconds: 1, MaxResults: 60}
	md := &fakeProvider{name: "mangadex", eligible: true, delay: 10 * time.Second}
	al := &fakeProvider{
		name: "anilist", eligible: true,
		results: []models.Candidate{withID(scored("Berserk", 9.4), "anilist", "al-2")},
	}
	svc := NewService(cfg, nil, md, al)

	start := time.Now()
	got, err := svc.Search(context.Background(), mangaQuery("berserk"))
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if elapsed > 3*time.Second {
		t.Errorf("search took %v, want about the 1s deadline", elapsed)
	}
	if len(got) != 1 || got[0].Source != "anilist" {
		t.Errorf("fast provider's results should survive, got %v", got)
	}
}

func TestService_Search_InvalidCategory(t *testing.T) {
	svc := NewService(testConfig(), nil)
	_, err := svc.Search(context.Background(), &models.ExploreQuery{Query: "dune", Category: "podcast"})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("got %v, want ErrInvalidCategory", err)
	}
}

func TestService_Search_ShortQuery(t *testing.T) {
	al := &fakeProvider{name: "anilist", eligible: true}
	svc := NewService(testConfig(), nil, al)
	_, err := svc.Search(context.Background(), &models.ExploreQuery{Query: "a", Category: models.CategoryAnime})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if al.callCount() != 0 {
		t.Errorf("invalid query must not reach providers, got %d calls", al.callCount())
	}
}

func TestService_Search_SkipsIneligible(t *testing.T) {
	tm := &fakeProvider{
		name: "tmdb", eligible: false,
		results: []models.Candidate{withID(scored("Dune", 7.8), "tmdb", "1")},
	}
	svc := NewService(testConfig(), nil, tm)

	got, err := svc.Search(context.Background(), &models.ExploreQuery{Query: "dune", Category: models.CategoryMovie})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d results, want 0", len(got))
	}
	if tm.callCount() != 0 {
		t.Errorf("ineligible provider must not be called, got %d calls", tm.callCount())
	}
}

func TestService_Search_UnregisteredProviderSkipped(t *testing.T) {
	al := &fakeProvider{
		name: "anilist", eligible: true,
		results: []models.Candidate{withID(scored("Berserk", 9.4), "anilist", "al-2")},
	}
	svc := NewService(testConfig(), nil, al)

	got, err := svc.Search(context.Background(), mangaQuery("berserk"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d results, want 1 from the registered provider", len(got))
	}
}

func TestService_Search_CapsResults(t *testing.T) {
	results := make([]models.Candidate, 70)
	for i := range results {
		results[i] = withID(scored("Title", float64(i%10)), "anilist", string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	al := &fakeProvider{name: "anilist", eligible: true, results: results}
	svc := NewService(testConfig(), nil, al)

	got, err := svc.Search(context.Background(), &models.ExploreQuery{Query: "title", Category: models.CategoryAnime})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 60 {
		t.Errorf("got %d results, want 60", len(got))
	}
}

func TestService_Search_DedupWithinProvider(t *testing.T) {
	al := &fakeProvider{
		name: "anilist", eligible: true,
		results: []models.Candidate{
			withID(scored("Berserk", 9.4), "anilist", "42"),
			withID(scored("Berserk", 9.4), "anilist", "42"),
		},
	}
	svc := NewService(testConfig(), nil, al)

	got, err := svc.Search(context.Background(), mangaQuery("berserk"))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d results, want 1 after dedup", len(got))
	}
}
