// Package car defines the vehicle record model shared by the dataset,
// index and recommendation layers.
package car

import (
	"fmt"
	"regexp"
	"strings"
)

// Record is one row of the used-car dataset, fully typed and normalized
// at the ingestion boundary.
type Record struct {
	// Name is the raw listing title. It may embed a year in parentheses.
	Name string `json:"name"`

	// Year is the model year, 0 if unknown.
	Year int `json:"year"`

	// PriceDisplay is the human-formatted price (e.g. "Rp 150.000.000").
	PriceDisplay string `json:"price_display"`

	// PriceNumeric is the price in rupiah, 0 if unparseable.
	PriceNumeric int64 `json:"price_numeric"`

	// AgeYears is the vehicle age derived from Year, never negative.
	AgeYears int `json:"age_years"`

	// FuelType is the fuel type (diesel, bensin, hybrid, listrik, free text).
	FuelType string `json:"fuel_type"`

	// Transmission is the transmission type (manual, otomatis, free text).
	Transmission string `json:"transmission"`

	// EngineCapacity is the raw engine capacity string, unit-unnormalized.
	EngineCapacity string `json:"engine_capacity"`

	// Brand is the first token of Name, lower-cased.
	Brand string `json:"brand"`
}

// Identity is the dedup key of a record: two rows with the same identity
// denote the same vehicle.
type Identity struct {
	Name string
	Year int
}

// Identity returns the record's dedup identity.
func (r Record) Identity() Identity {
	return Identity{Name: NormalizeName(r.Name, r.Year), Year: r.Year}
}

// DocumentText renders the record as the text indexed for semantic search.
func (r Record) DocumentText() string {
	parts := []string{r.Name, r.Brand, fmt.Sprintf("%d", r.Year), r.Transmission, r.FuelType, r.PriceDisplay}
	return strings.Join(parts, " | ")
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	trailingYearRe = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)
	nonDigitRe     = regexp.MustCompile(`[^0-9]`)
)

// NormalizeName lower-cases a listing title, collapses repeated whitespace
// and strips a trailing "(YYYY)" suffix when it repeats the year field.
func NormalizeName(name string, year int) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if m := trailingYearRe.FindStringSubmatch(n); m != nil {
		if year == 0 || m[1] == fmt.Sprintf("%d", year) {
			n = trailingYearRe.ReplaceAllString(n, "")
		}
	}
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(n), " ")
}

// ParsePrice strips every non-digit character and parses the rest as
// rupiah. Unparseable input yields 0, never an error: a record with a bad
// price must not be rejected because of it.
func ParsePrice(s string) int64 {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	var n int64
	for _, c := range digits {
		d := int64(c - '0')
		// Guard against absurd inputs overflowing int64.
		if n > (1<<62)/10 {
			return 0
		}
		n = n*10 + d
	}
	return n
}

// Age derives the vehicle age from its model year. A zero or future year
// yields 0.
func Age(year, currentYear int) int {
	if year <= 0 || year > currentYear {
		return 0
	}
	return currentYear - year
}

// BrandOf derives the brand as the first token of the listing title,
// lower-cased.
func BrandOf(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// FormatRupiah renders a rupiah amount with dot thousand separators,
// e.g. 150000000 -> "Rp 150.000.000". Non-positive amounts render as "-".
func FormatRupiah(n int64) string {
	if n <= 0 {
		return "-"
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return "Rp " + b.String()
}
