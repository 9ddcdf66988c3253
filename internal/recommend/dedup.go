package recommend

import "github.com/mobilcari/mobil-cari/internal/car"

// Dedup collapses candidates denoting the same vehicle, keyed by
// normalized name + year. The first occurrence wins, so on the similarity
// path the best-scored duplicate survives; later duplicates are dropped,
// not merged.
func Dedup(candidates []Candidate) []Candidate {
	seen := make(map[car.Identity]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, cand := range candidates {
		id := cand.Record.Identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, cand)
	}

	return out
}
