// Package explore federates media search across external providers.
package explore

import (
	"context"
	"sync"
	"time"

	"github.com/hyperjump/tana/internal/config"
	"github.com/hyperjump/tana/internal/explore/providers"
	"github.com/hyperjump/tana/internal/models"
	"go.uber.org/zap"
)

// Service fans a query out to the providers routed for its category, then
// merges, deduplicates, ranks, and caps the combined results. Provider
// failures are logged and otherwise ignored; one slow or broken upstream
// never sinks a search.
type Service struct {
	providers map[string]providers.Provider
	config    *config.ExploreConfig
	logger    *zap.Logger
}

// NewService creates an explore service over the given adapters.
func NewService(cfg *config.ExploreConfig, logger *zap.Logger, adapters ...providers.Provider) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]providers.Provider, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Service{
		providers: byName,
		config:    cfg,
		logger:    logger,
	}
}

// Search validates the query, routes it, and runs the fan-out. The returned
// slice is never nil. Validation and routing failures are the only errors;
// provider failures degrade to fewer (possibly zero) results.
func (s *Service) Search(ctx context.Context, query *models.ExploreQuery) ([]models.Candidate, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	names, err := Route(query.Category)
	if err != nil {
		return nil, err
	}

	var targets []providers.Provider
	for _, name := range names {
		p, ok := s.providers[name]
		if !ok || !p.Eligible() {
			continue
		}
		targets = append(targets, p)
	}

	merged := make([]models.Candidate, 0, len(targets)*10)
	if len(targets) == 0 {
		return merged, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutSeconds)*time.Second)
	defer cancel()

	// Each provider writes its own slot so merge order follows routing
	// order, not completion order.
	resultSets := make([][]models.Candidate, len(targets))
	var wg sync.WaitGroup
	for i, p := range targets {
		wg.Add(1)
		go func(slot int, p providers.Provider) {
			defer wg.Done()
			results, err := p.Search(ctx, query.Query, query.Category)
			if err != nil {
				s.logger.Warn("provider search failed",
					zap.String("provider", p.Name()),
					zap.String("kind", providers.ErrorKind(err)),
					zap.Error(err))
				return
			}
			resultSets[slot] = results
		}(i, p)
	}
	wg.Wait()

	for _, set := range resultSets {
		merged = append(merged, set...)
	}
	merged = Dedup(merged)
	Rank(merged)
	merged = Truncate(merged, s.config.MaxResults)

	s.logger.Debug("explore search finished",
		zap.String("query", query.Query),
		zap.String("category", string(query.Category)),
		zap.Int("providers", len(targets)),
		zap.Int("results", len(merged)),
		zap.Int64("elapsed_ms", time.Since(startTime).Milliseconds()))
	return merged, nil
}
