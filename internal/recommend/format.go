package recommend

import "math"

// similarityDecimals is the rounding applied to the reported similarity.
const similarityDecimals = 4

// Format maps ranked candidates into the stable caller-facing schema.
// Fields the dataset could not parse render as documented placeholders
// (0 for numerics, "-" for display strings) instead of failing.
func Format(ranked []RankedCandidate) []Result {
	out := make([]Result, len(ranked))
	for i, rc := range ranked {
		r := rc.Record

		priceDisplay := r.PriceDisplay
		if priceDisplay == "" {
			priceDisplay = "-"
		}
		engine := r.EngineCapacity
		if engine == "" {
			engine = "-"
		}
		transmission := r.Transmission
		if transmission == "" {
			transmission = "-"
		}
		fuel := r.FuelType
		if fuel == "" {
			fuel = "-"
		}

		out[i] = Result{
			Name:            r.Name,
			Year:            r.Year,
			PriceDisplay:    priceDisplay,
			PriceNumeric:    r.PriceNumeric,
			AgeYears:        r.AgeYears,
			FuelType:        fuel,
			Transmission:    transmission,
			EngineCapacity:  engine,
			Brand:           r.Brand,
			SimilarityScore: round(rc.Similarity, similarityDecimals),
			Score:           round(rc.Score, similarityDecimals),
		}
	}
	return out
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
