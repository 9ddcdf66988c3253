package recommend

import (
	"strings"

	"github.com/mobilcari/mobil-cari/internal/car"
	"github.com/mobilcari/mobil-cari/internal/query"
)

// FilterOutcome is the result of the soft filter.
type FilterOutcome struct {
	Candidates []Candidate
	Match      MatchQuality
}

// ExcludeSet holds normalized names that must not appear in results.
type ExcludeSet map[string]bool

// NewExcludeSet normalizes the caller-supplied names into a lookup set.
func NewExcludeSet(names []string) ExcludeSet {
	set := make(ExcludeSet, len(names))
	for _, n := range names {
		norm := car.NormalizeName(n, 0)
		if norm != "" {
			set[norm] = true
		}
	}
	return set
}

// Contains reports whether the record's normalized name is excluded.
// The record side uses year 0, the same as NewExcludeSet, so a trailing
// "(YYYY)" in the listing name always strips even when it disagrees with
// the record's Year field.
func (s ExcludeSet) Contains(r car.Record) bool {
	if len(s) == 0 {
		return false
	}
	return s[car.NormalizeName(r.Name, 0)]
}

// Filter applies the parsed constraints conjunctively with a soft
// fallback: a query too narrow to match anything never empties the
// candidate pool. Exclusions are hard and survive every relaxation step.
//
// Relaxation order:
//  1. all constraints as parsed
//  2. drop the numeric constraints that no candidate satisfies
//  3. full pool (minus exclusions)
func Filter(pool []Candidate, c query.Constraints, exclude ExcludeSet) FilterOutcome {
	eligible := make([]Candidate, 0, len(pool))
	for _, cand := range pool {
		if !exclude.Contains(cand.Record) {
			eligible = append(eligible, cand)
		}
	}

	strict := applyConstraints(eligible, c)
	if len(strict) > 0 {
		return FilterOutcome{Candidates: strict, Match: MatchExact}
	}

	relaxed := applyConstraints(eligible, relaxUnsatisfiable(eligible, c))
	if len(relaxed) > 0 {
		return FilterOutcome{Candidates: relaxed, Match: MatchRelaxed}
	}

	return FilterOutcome{Candidates: eligible, Match: MatchFallback}
}

// applyConstraints keeps the candidates matching every set constraint.
func applyConstraints(pool []Candidate, c query.Constraints) []Candidate {
	out := make([]Candidate, 0, len(pool))
	for _, cand := range pool {
		if matches(cand.Record, c) {
			out = append(out, cand)
		}
	}
	return out
}

// matches checks one record against every set constraint. A field the
// record could not parse (zero price, zero year) never rejects it: bad
// input data must not silently discard listings.
func matches(r car.Record, c query.Constraints) bool {
	if c.Fuel != "" && !fuelMatches(r.FuelType, c.Fuel) {
		return false
	}
	if c.Transmission != "" && !transmissionMatches(r.Transmission, c.Transmission) {
		return false
	}
	if c.Brand != "" && !brandMatches(r, c.Brand) {
		return false
	}
	if c.PriceMax != nil && r.PriceNumeric > 0 && r.PriceNumeric > *c.PriceMax {
		return false
	}
	if c.PriceMin != nil && r.PriceNumeric > 0 && r.PriceNumeric < *c.PriceMin {
		return false
	}
	if c.YearMin != nil && r.Year > 0 && r.Year < *c.YearMin {
		return false
	}
	// Strict less-than: "tahun di bawah 2018" excludes 2018 itself.
	if c.YearMax != nil && r.Year > 0 && r.Year >= *c.YearMax {
		return false
	}
	if c.AgeMax != nil && r.Year > 0 && r.AgeYears > *c.AgeMax {
		return false
	}
	return true
}

func fuelMatches(recordFuel, canonical string) bool {
	f := strings.ToLower(recordFuel)
	for _, term := range query.FuelMatchTerms(canonical) {
		if strings.Contains(f, term) {
			return true
		}
	}
	return false
}

func transmissionMatches(recordTransmission, canonical string) bool {
	tr := strings.ToLower(recordTransmission)
	for _, term := range query.TransmissionMatchTerms(canonical) {
		if strings.Contains(tr, term) {
			return true
		}
	}
	return false
}

func brandMatches(r car.Record, brand string) bool {
	if r.Brand == brand {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), brand)
}

// relaxUnsatisfiable drops each numeric constraint that, applied on its
// own, matches nothing in the pool. Categorical constraints are kept: a
// fuel or brand that matches nothing is handled by the final fallback.
func relaxUnsatisfiable(pool []Candidate, c query.Constraints) query.Constraints {
	relaxed := c

	if c.PriceMax != nil && !anyMatches(pool, query.Constraints{PriceMax: c.PriceMax}) {
		relaxed.PriceMax = nil
	}
	if c.PriceMin != nil && !anyMatches(pool, query.Constraints{PriceMin: c.PriceMin}) {
		relaxed.PriceMin = nil
	}
	if c.YearMin != nil && !anyMatches(pool, query.Constraints{YearMin: c.YearMin}) {
		relaxed.YearMin = nil
	}
	if c.YearMax != nil && !anyMatches(pool, query.Constraints{YearMax: c.YearMax}) {
		relaxed.YearMax = nil
	}
	if c.AgeMax != nil && !anyMatches(pool, query.Constraints{AgeMax: c.AgeMax}) {
		relaxed.AgeMax = nil
	}

	return relaxed
}

func anyMatches(pool []Candidate, c query.Constraints) bool {
	for _, cand := range pool {
		if matches(cand.Record, c) {
			return true
		}
	}
	return false
}
