// Package query provides free-text constraint extraction for mobil-cari.
package query

// Fuel canonical values.
const (
	FuelDiesel  = "diesel"
	FuelBensin  = "bensin"
	FuelHybrid  = "hybrid"
	FuelListrik = "listrik"
)

// Transmission canonical values.
const (
	TransmissionManual   = "manual"
	TransmissionOtomatis = "otomatis"
)

// Constraints is the structured filter set extracted from a free-text
// query. Every field is independently optional: a nil pointer or empty
// string means "unconstrained", never "zero".
type Constraints struct {
	// Fuel is the canonical fuel value (diesel, bensin, hybrid, listrik).
	Fuel string `json:"fuel,omitempty"`

	// Transmission is the canonical transmission value (manual, otomatis).
	Transmission string `json:"transmission,omitempty"`

	// Brand is the canonical brand token.
	Brand string `json:"brand,omitempty"`

	// PriceMax is the price ceiling in rupiah.
	PriceMax *int64 `json:"price_max,omitempty"`

	// PriceMin is the price floor in rupiah.
	PriceMin *int64 `json:"price_min,omitempty"`

	// PriceTarget is the inferred target price used for proximity scoring.
	// Set whenever any price amount appears in the query, including a bare
	// "N juta" with no ceiling/floor trigger.
	PriceTarget *int64 `json:"price_target,omitempty"`

	// YearMin is the inclusive model-year floor.
	YearMin *int `json:"year_min,omitempty"`

	// YearMax is the exclusive model-year ceiling ("tahun di bawah X").
	YearMax *int `json:"year_max,omitempty"`

	// AgeMax is the inclusive vehicle-age ceiling in years.
	AgeMax *int `json:"age_max,omitempty"`
}

// HasAny reports whether at least one constraint was extracted.
func (c Constraints) HasAny() bool {
	return c.Fuel != "" || c.Transmission != "" || c.Brand != "" ||
		c.PriceMax != nil || c.PriceMin != nil || c.PriceTarget != nil ||
		c.YearMin != nil || c.YearMax != nil || c.AgeMax != nil
}

// HasPriceTarget reports whether a target price is inferable from the query.
func (c Constraints) HasPriceTarget() bool {
	return c.PriceTarget != nil && *c.PriceTarget > 0
}
