package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/tana/internal/config"
	"github.com/hyperjump/tana/internal/explore"
	"github.com/hyperjump/tana/internal/explore/providers"
	"github.com/hyperjump/tana/internal/models"
	"go.uber.org/zap"
)

// buildCandidates returns n candidates from one source, a third of them
// unrated and a quarter sharing repeated external ids.
func buildCandidates(n int, source string) []models.Candidate {
	out := make([]models.Candidate, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("ext-%d", i%(3*n/4+1))
		c := models.Candidate{
			Title:      fmt.Sprintf("Title %04d", i),
			MediaType:  models.MediaAnime,
			Source:     source,
			ExternalID: &id,
		}
		if i%3 != 0 {
			score := float64(i%100) / 10
			c.GlobalScore = &score
		}
		out[i] = c
	}
	return out
}

func BenchmarkDedup(b *testing.B) {
	candidates := buildCandidates(1000, providers.NameAniList)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = explore.Dedup(candidates)
	}
}

func BenchmarkRank(b *testing.B) {
	candidates := buildCandidates(1000, providers.NameAniList)
	work := make([]models.Candidate, len(candidates))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(work, candidates)
		explore.Rank(work)
	}
}

type cannedProvider struct {
	name    string
	results []models.Candidate
}

func (p *cannedProvider) Name() string   { return p.name }
func (p *cannedProvider) Eligible() bool { return true }

func (p *cannedProvider) Search(ctx context.Context, query string, category models.MediaCategory) ([]models.Candidate, error) {
	return p.results, nil
}

func BenchmarkServiceSearch(b *testing.B) {
	cfg := &config.ExploreConfig{TimeoutSeconds: 5, MaxResults: 60}
	svc := explore.NewService(cfg, zap.NewNop(),
		&cannedProvider{name: providers.NameMangaDex, results: buildCandidates(100, providers.NameMangaDex)},
		&cannedProvider{name: providers.NameAniList, results: buildCandidates(100, providers.NameAniList)},
	)
	ctx := context.Background()
	query := &models.ExploreQuery{Query: "berserk", Category: models.CategoryManga}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Search(ctx, query)
	}
}
