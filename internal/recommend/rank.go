package recommend

import (
	"sort"

	"github.com/mobilcari/mobil-cari/internal/query"
)

// RankConfig holds the ranking weights and preferences.
type RankConfig struct {
	// SimilarityWeight applies when no price target is present.
	SimilarityWeight float64

	// SimilarityWeightPriced applies when the query carries a price
	// target: the numeric signal takes over part of the weight.
	SimilarityWeightPriced float64

	// PriceWeight is the price-proximity weight (priced queries only).
	PriceWeight float64

	// AgeWeight is the recency weight for priced queries.
	AgeWeight float64

	// AgeWeightUnpriced is the recency weight without a price target.
	AgeWeightUnpriced float64

	// AgePreferenceYears buckets candidates at or below this age ahead of
	// older ones.
	AgePreferenceYears int

	// OverBudgetPenalty multiplies the price proximity of candidates
	// priced above the target, so slightly-under outranks slightly-over.
	OverBudgetPenalty float64

	// MaxAgeYears is where the linear recency score bottoms out.
	MaxAgeYears int
}

// DefaultRankConfig returns the default ranking parameters.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		SimilarityWeight:       0.85,
		SimilarityWeightPriced: 0.45,
		PriceWeight:            0.35,
		AgeWeight:              0.20,
		AgeWeightUnpriced:      0.15,
		AgePreferenceYears:     5,
		OverBudgetPenalty:      0.7,
		MaxAgeYears:            30,
	}
}

// RankedCandidate pairs a candidate with its combined score.
type RankedCandidate struct {
	Candidate
	Score float64
}

// Rank orders candidates by the weighted combination of similarity, price
// proximity and recency. The ordering is fully deterministic: equal scores
// fall back to younger age, then lower price, then stable input order.
func Rank(candidates []Candidate, c query.Constraints, cfg RankConfig) []RankedCandidate {
	ranked := make([]RankedCandidate, len(candidates))
	for i, cand := range candidates {
		ranked[i] = RankedCandidate{
			Candidate: cand,
			Score:     score(cand, c, cfg),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		// Young-vehicle bucket ranks ahead of the older bucket.
		ab, bb := ageBucket(a.Record.AgeYears, cfg.AgePreferenceYears), ageBucket(b.Record.AgeYears, cfg.AgePreferenceYears)
		if ab != bb {
			return ab < bb
		}

		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Record.AgeYears != b.Record.AgeYears {
			return a.Record.AgeYears < b.Record.AgeYears
		}
		if a.Record.PriceNumeric != b.Record.PriceNumeric {
			return a.Record.PriceNumeric < b.Record.PriceNumeric
		}
		return a.position < b.position
	})

	return ranked
}

// score combines the three signals, each normalized to [0,1].
func score(cand Candidate, c query.Constraints, cfg RankConfig) float64 {
	sim := clamp01(cand.Similarity)
	age := ageScore(cand.Record.AgeYears, cfg.MaxAgeYears)

	if c.HasPriceTarget() {
		prox := PriceProximity(cand.Record.PriceNumeric, *c.PriceTarget, cfg.OverBudgetPenalty)
		return cfg.SimilarityWeightPriced*sim + cfg.PriceWeight*prox + cfg.AgeWeight*age
	}

	return cfg.SimilarityWeight*sim + cfg.AgeWeightUnpriced*age
}

// PriceProximity scores how close a price sits to the target:
// clamp(1 - |price-target|/target, 0, 1), multiplied by the over-budget
// penalty when the price exceeds the target. A missing price scores 0.
func PriceProximity(price, target int64, overBudgetPenalty float64) float64 {
	if price <= 0 || target <= 0 {
		return 0
	}

	delta := float64(price - target)
	if delta < 0 {
		delta = -delta
	}

	prox := clamp01(1 - delta/float64(target))
	if price > target {
		prox *= overBudgetPenalty
	}
	return prox
}

// ageScore maps age linearly to [0,1]: a current-year vehicle scores 1,
// anything at or beyond maxAge scores 0.
func ageScore(age, maxAge int) float64 {
	if maxAge <= 0 {
		return 0
	}
	if age >= maxAge {
		return 0
	}
	return 1 - float64(age)/float64(maxAge)
}

// ageBucket is 0 for vehicles at or below the preference threshold.
func ageBucket(age, threshold int) int {
	if age <= threshold {
		return 0
	}
	return 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
