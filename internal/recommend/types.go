// Package recommend implements the hybrid recommendation pipeline:
// constraint filtering, deduplication, ranking and formatting over
// candidates retrieved from the similarity provider.
package recommend

import (
	"context"

	"github.com/mobilcari/mobil-cari/internal/car"
)

// Candidate is a vehicle record considered for ranking.
type Candidate struct {
	// Record is the dataset row.
	Record car.Record

	// Similarity is the provider's similarity score, normalized to [0,1].
	Similarity float64

	// HasSimilarity is false on the degraded filter-only path.
	HasSimilarity bool

	// position preserves stable input order for tie-breaking.
	position int
}

// ScoredRecord is one similarity-provider hit.
type ScoredRecord struct {
	Record car.Record
	Score  float32
}

// SimilarityProvider returns the records most similar to a free-text
// query. The pipeline treats it as a black box; on error the service
// degrades to filter-only ranking over the full dataset.
type SimilarityProvider interface {
	Similar(ctx context.Context, query string, limit int) ([]ScoredRecord, error)
}

// MatchQuality describes how closely the returned set honors the parsed
// constraints.
type MatchQuality string

const (
	// MatchExact means every constraint was applied as parsed.
	MatchExact MatchQuality = "exact"

	// MatchRelaxed means unsatisfiable numeric constraints were dropped.
	MatchRelaxed MatchQuality = "relaxed"

	// MatchFallback means no constraint subset matched and the full pool
	// was used.
	MatchFallback MatchQuality = "fallback"
)

// Request is a recommendation request.
type Request struct {
	// Query is the free-text question, required.
	Query string `json:"query"`

	// TopK is the number of results to return (1-50, default 5).
	TopK int `json:"top_k,omitempty"`

	// Exclude lists names already shown to the user, matched by
	// normalized name.
	Exclude []string `json:"exclude,omitempty"`

	// SessionID optionally tracks shown results across requests in the
	// session store; its accumulated names extend Exclude.
	SessionID string `json:"session_id,omitempty"`
}

// Result is one caller-facing recommendation.
type Result struct {
	Name            string  `json:"name"`
	Year            int     `json:"year"`
	PriceDisplay    string  `json:"price_display"`
	PriceNumeric    int64   `json:"price_numeric"`
	AgeYears        int     `json:"age_years"`
	FuelType        string  `json:"fuel_type"`
	Transmission    string  `json:"transmission"`
	EngineCapacity  string  `json:"engine_capacity"`
	Brand           string  `json:"brand"`
	SimilarityScore float64 `json:"similarity_score"`
	Score           float64 `json:"score"`
}

// Response is the recommendation response.
type Response struct {
	Query   string       `json:"query"`
	Results []Result     `json:"results"`
	Match   MatchQuality `json:"match"`

	// Degraded is true when the similarity provider was unavailable and
	// ranking ran filter-only.
	Degraded bool `json:"degraded,omitempty"`
}

// TopK bounds.
const (
	DefaultTopK = 5
	MaxTopK     = 50
)

// ClampTopK applies the default and bounds to a requested top-k.
func ClampTopK(k int) int {
	if k <= 0 {
		return DefaultTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}
