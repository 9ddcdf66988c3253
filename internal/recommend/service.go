package recommend

import (
	"context"

	"github.com/mobilcari/mobil-cari/internal/car"
	"github.com/mobilcari/mobil-cari/internal/dataset"
	"github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/query"
)

// Config configures the recommendation service.
type Config struct {
	// PrefetchLimit is how many candidates to request from the similarity
	// provider before filtering.
	PrefetchLimit int

	// DefaultTopK applies when a request does not specify top_k.
	DefaultTopK int

	// Rank holds the ranking weights.
	Rank RankConfig
}

// DefaultConfig returns sensible service defaults.
func DefaultConfig() Config {
	return Config{
		PrefetchLimit: 30,
		DefaultTopK:   DefaultTopK,
		Rank:          DefaultRankConfig(),
	}
}

// Service runs the recommendation pipeline. It is stateless per request:
// the dataset snapshot and the query string fully determine the output,
// so concurrent requests need no coordination.
type Service struct {
	parser   *query.Parser
	provider SimilarityProvider
	data     *dataset.Manager
	log      *logger.Logger
	cfg      Config
}

// NewService creates a recommendation service. provider may be nil, in
// which case every request runs the filter-only path.
func NewService(provider SimilarityProvider, data *dataset.Manager, log *logger.Logger, cfg Config) *Service {
	if cfg.PrefetchLimit <= 0 {
		cfg = DefaultConfig()
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = DefaultTopK
	}
	return &Service{
		parser:   query.NewParser(log),
		provider: provider,
		data:     data,
		log:      log,
		cfg:      cfg,
	}
}

// Recommend answers a free-text query with an ordered, deduplicated,
// explainable list of vehicles. For a non-empty dataset the result is
// never empty: the soft filter and backfill guarantee
// len(results) >= min(topK, len(dataset) - excluded).
func (s *Service) Recommend(ctx context.Context, req Request) (*Response, error) {
	if req.Query == "" {
		return nil, errors.ValidationError("query is required")
	}

	snap := s.data.Snapshot()
	if snap == nil || snap.Len() == 0 {
		return nil, errors.ServiceUnavailableError("dataset")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	topK = ClampTopK(topK)
	constraints := s.parser.Parse(req.Query)

	pool, degraded := s.buildPool(ctx, req.Query, snap)
	exclude := NewExcludeSet(req.Exclude)

	outcome := Filter(pool, constraints, exclude)
	ranked := Rank(Dedup(outcome.Candidates), constraints, s.cfg.Rank)

	// Backfill from the remaining pool rather than returning a short
	// list; mirrors the soft-filter policy.
	if len(ranked) < topK {
		ranked = s.backfill(ranked, pool, constraints, exclude, topK)
	}

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	s.log.Debug("Recommendation computed",
		"query", req.Query,
		"match", outcome.Match,
		"degraded", degraded,
		"results", len(ranked),
	)

	return &Response{
		Query:    req.Query,
		Results:  Format(ranked),
		Match:    outcome.Match,
		Degraded: degraded,
	}, nil
}

// Constraints exposes the parsed constraint set for a query. Used by the
// narrative layer to explain recommendations.
func (s *Service) Constraints(q string) query.Constraints {
	return s.parser.Parse(q)
}

// buildPool assembles the full candidate pool: similarity hits first (in
// provider order), then the rest of the snapshot in file order so the
// never-empty guarantee holds even when the provider returns few rows.
// A provider failure degrades to the snapshot-only pool.
func (s *Service) buildPool(ctx context.Context, q string, snap *dataset.Snapshot) ([]Candidate, bool) {
	var pool []Candidate
	degraded := false

	if s.provider != nil {
		hits, err := s.provider.Similar(ctx, q, s.cfg.PrefetchLimit)
		if err != nil {
			s.log.Warn("Similarity provider failed, using filter-only ranking", "error", err)
			degraded = true
		} else {
			for _, h := range hits {
				pool = append(pool, Candidate{
					Record:        h.Record,
					Similarity:    clamp01(float64(h.Score)),
					HasSimilarity: true,
					position:      len(pool),
				})
			}
		}
	} else {
		degraded = true
	}

	seen := make(map[car.Identity]bool, len(pool))
	for _, cand := range pool {
		seen[cand.Record.Identity()] = true
	}

	for _, rec := range snap.Records() {
		if seen[rec.Identity()] {
			continue
		}
		pool = append(pool, Candidate{
			Record:   rec,
			position: len(pool),
		})
	}

	return pool, degraded
}

// backfill appends ranked candidates from the rest of the pool until topK
// is reached, skipping identities already chosen and excluded names.
func (s *Service) backfill(ranked []RankedCandidate, pool []Candidate, c query.Constraints, exclude ExcludeSet, topK int) []RankedCandidate {
	chosen := make(map[car.Identity]bool, len(ranked))
	for _, rc := range ranked {
		chosen[rc.Record.Identity()] = true
	}

	rest := make([]Candidate, 0, len(pool))
	for _, cand := range pool {
		if exclude.Contains(cand.Record) {
			continue
		}
		if chosen[cand.Record.Identity()] {
			continue
		}
		rest = append(rest, cand)
	}

	for _, rc := range Rank(Dedup(rest), c, s.cfg.Rank) {
		if len(ranked) >= topK {
			break
		}
		ranked = append(ranked, rc)
	}

	return ranked
}
