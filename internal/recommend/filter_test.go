package recommend

import (
	"testing"

	"github.com/mobilcari/mobil-cari/internal/car"
	"github.com/mobilcari/mobil-cari/internal/query"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func testPool() []Candidate {
	records := []car.Record{
		{Name: "Toyota Avanza G", Brand: "toyota", Year: 2019, AgeYears: 6, PriceNumeric: 150_000_000, FuelType: "Bensin", Transmission: "Manual"},
		{Name: "Honda CR-V Turbo", Brand: "honda", Year: 2022, AgeYears: 3, PriceNumeric: 420_000_000, FuelType: "Bensin", Transmission: "Otomatis"},
		{Name: "Mitsubishi Pajero Sport", Brand: "mitsubishi", Year: 2018, AgeYears: 7, PriceNumeric: 380_000_000, FuelType: "Diesel", Transmission: "Otomatis"},
		{Name: "Toyota Fortuner VRZ", Brand: "toyota", Year: 2020, AgeYears: 5, PriceNumeric: 450_000_000, FuelType: "Solar", Transmission: "Otomatis"},
		{Name: "Daihatsu Xenia", Brand: "daihatsu", Year: 2015, AgeYears: 10, PriceNumeric: 95_000_000, FuelType: "Bensin", Transmission: "Manual"},
	}

	pool := make([]Candidate, len(records))
	for i, r := range records {
		pool[i] = Candidate{Record: r, position: i}
	}
	return pool
}

func names(cands []Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Record.Name
	}
	return out
}

func TestFilterExact(t *testing.T) {
	out := Filter(testPool(), query.Constraints{
		Fuel:     query.FuelDiesel,
		PriceMax: i64(400_000_000),
	}, nil)

	if out.Match != MatchExact {
		t.Fatalf("Match = %q, want %q", out.Match, MatchExact)
	}
	got := names(out.Candidates)
	if len(got) != 1 || got[0] != "Mitsubishi Pajero Sport" {
		t.Errorf("candidates = %v, want Pajero only", got)
	}
}

func TestFilterDieselMatchesSolar(t *testing.T) {
	out := Filter(testPool(), query.Constraints{Fuel: query.FuelDiesel}, nil)

	if out.Match != MatchExact {
		t.Fatalf("Match = %q, want %q", out.Match, MatchExact)
	}
	got := names(out.Candidates)
	if len(got) != 2 {
		t.Fatalf("candidates = %v, want Pajero and Fortuner", got)
	}
}

func TestFilterRelaxesUnsatisfiablePrice(t *testing.T) {
	// Nothing under 50 juta, but the brand constraint is satisfiable.
	out := Filter(testPool(), query.Constraints{
		Brand:    "toyota",
		PriceMax: i64(50_000_000),
	}, nil)

	if out.Match != MatchRelaxed {
		t.Fatalf("Match = %q, want %q", out.Match, MatchRelaxed)
	}
	for _, n := range names(out.Candidates) {
		if n != "Toyota Avanza G" && n != "Toyota Fortuner VRZ" {
			t.Errorf("unexpected candidate %q after relaxation", n)
		}
	}
}

func TestFilterFallbackOnUnknownBrand(t *testing.T) {
	out := Filter(testPool(), query.Constraints{Brand: "ferrari"}, nil)

	if out.Match != MatchFallback {
		t.Fatalf("Match = %q, want %q", out.Match, MatchFallback)
	}
	if len(out.Candidates) != 5 {
		t.Errorf("fallback should return the full pool, got %d", len(out.Candidates))
	}
}

func TestFilterExclusionSurvivesFallback(t *testing.T) {
	exclude := NewExcludeSet([]string{"Toyota Avanza G", "honda cr-v turbo"})

	out := Filter(testPool(), query.Constraints{Brand: "ferrari"}, exclude)

	if out.Match != MatchFallback {
		t.Fatalf("Match = %q, want %q", out.Match, MatchFallback)
	}
	for _, n := range names(out.Candidates) {
		if n == "Toyota Avanza G" || n == "Honda CR-V Turbo" {
			t.Errorf("excluded vehicle %q returned", n)
		}
	}
	if len(out.Candidates) != 3 {
		t.Errorf("got %d candidates, want 3", len(out.Candidates))
	}
}

func TestFilterYearCeilingStrict(t *testing.T) {
	out := Filter(testPool(), query.Constraints{YearMax: iptr(2018)}, nil)

	for _, c := range out.Candidates {
		if c.Record.Year >= 2018 {
			t.Errorf("%q year %d should be excluded by ceiling 2018", c.Record.Name, c.Record.Year)
		}
	}
	got := names(out.Candidates)
	if len(got) != 1 || got[0] != "Daihatsu Xenia" {
		t.Errorf("candidates = %v, want Xenia only", got)
	}
}

func TestFilterZeroFieldsNeverReject(t *testing.T) {
	pool := []Candidate{
		{Record: car.Record{Name: "Suzuki Ertiga", Brand: "suzuki", Year: 0, PriceNumeric: 0, FuelType: "Bensin"}},
	}

	out := Filter(pool, query.Constraints{
		PriceMax: i64(100_000_000),
		YearMin:  iptr(2020),
		AgeMax:   iptr(3),
	}, nil)

	if out.Match != MatchExact {
		t.Fatalf("Match = %q, want %q", out.Match, MatchExact)
	}
	if len(out.Candidates) != 1 {
		t.Errorf("record with unparsed fields must not be rejected")
	}
}

func TestFilterAgeCeiling(t *testing.T) {
	out := Filter(testPool(), query.Constraints{AgeMax: iptr(5)}, nil)

	for _, c := range out.Candidates {
		if c.Record.AgeYears > 5 {
			t.Errorf("%q age %d exceeds ceiling", c.Record.Name, c.Record.AgeYears)
		}
	}
	if len(out.Candidates) != 2 {
		t.Errorf("got %v, want CR-V and Fortuner", names(out.Candidates))
	}
}

func TestNewExcludeSetNormalizes(t *testing.T) {
	set := NewExcludeSet([]string{"  Toyota   Avanza G (2019)", ""})

	if !set.Contains(car.Record{Name: "Toyota Avanza G", Year: 2019}) {
		t.Errorf("normalized exclusion should match record")
	}
	if set.Contains(car.Record{Name: "Honda Jazz", Year: 2019}) {
		t.Errorf("unrelated record matched exclusion")
	}
}

func TestExcludeSetYearSuffixMismatch(t *testing.T) {
	set := NewExcludeSet([]string{"Toyota Avanza G"})

	// The listing name carries a year that disagrees with the Year field.
	if !set.Contains(car.Record{Name: "Toyota Avanza G (2018)", Year: 2019}) {
		t.Errorf("record with mismatched year suffix escaped exclusion")
	}
	if !set.Contains(car.Record{Name: "Toyota Avanza G (2019)", Year: 2019}) {
		t.Errorf("record with matching year suffix escaped exclusion")
	}
}
