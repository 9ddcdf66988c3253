package query

import (
	"testing"

	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

func newParser() *Parser {
	return NewParser(logger.Default())
}

func TestParse_Fuel(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"mobil diesel murah", FuelDiesel},
		{"cari mobil bensin", FuelBensin},
		{"mobil pertamax irit", FuelBensin},
		{"mobil hybrid keluarga", FuelHybrid},
		{"mobil listrik bekas", FuelListrik},
		{"rekomendasi ev murah", FuelListrik},
		{"electric car", FuelListrik},
		{"mobil keluarga murah", ""},
		// priority order: diesel keyword appears first in the table
		{"diesel atau bensin", FuelDiesel},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := p.Parse(tt.query).Fuel; got != tt.want {
				t.Errorf("Fuel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Transmission(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"mobil matic murah", TransmissionOtomatis},
		{"mobil otomatis", TransmissionOtomatis},
		{"mobil manual", TransmissionManual},
		{"matic atau manual", ""}, // ambiguous
		{"mobil keluarga", ""},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := p.Parse(tt.query).Transmission; got != tt.want {
				t.Errorf("Transmission = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Brand(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"toyota avanza bekas", "toyota"},
		{"cari Honda jazz", "honda"},
		{"mobil vw bekas", "volkswagen"},
		{"mercy tua", "mercedes"},
		{"mobil keluarga", ""},
		// first brand in the query wins
		{"honda atau toyota", "honda"},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := p.Parse(tt.query).Brand; got != tt.want {
				t.Errorf("Brand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_PriceCeiling(t *testing.T) {
	tests := []struct {
		query string
		want  int64
	}{
		{"mobil di bawah 200 juta", 200_000_000},
		{"mobil dibawah 200jt", 200_000_000},
		{"maksimal 150 juta", 150_000_000},
		{"harga <= 150 juta", 150_000_000},
		{"kurang dari 100 juta", 100_000_000},
		{"di bawah 150.000.000", 150_000_000},
		{"di bawah Rp 150.000.000", 150_000_000},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := p.Parse(tt.query)
			if c.PriceMax == nil {
				t.Fatal("PriceMax not set")
			}
			if *c.PriceMax != tt.want {
				t.Errorf("PriceMax = %d, want %d", *c.PriceMax, tt.want)
			}
			if c.PriceTarget == nil || *c.PriceTarget != tt.want {
				t.Error("PriceTarget should follow the ceiling")
			}
		})
	}
}

func TestParse_PriceFloor(t *testing.T) {
	tests := []struct {
		query string
		want  int64
	}{
		{"mobil di atas 300 juta", 300_000_000},
		{"lebih dari 250 juta", 250_000_000},
		{"harga >= 200 juta", 200_000_000},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := p.Parse(tt.query)
			if c.PriceMin == nil {
				t.Fatal("PriceMin not set")
			}
			if *c.PriceMin != tt.want {
				t.Errorf("PriceMin = %d, want %d", *c.PriceMin, tt.want)
			}
		})
	}
}

func TestParse_PriceRange(t *testing.T) {
	c := newParser().Parse("mobil 100-200 juta")
	if c.PriceMin == nil || *c.PriceMin != 100_000_000 {
		t.Error("PriceMin should be 100 juta")
	}
	if c.PriceMax == nil || *c.PriceMax != 200_000_000 {
		t.Error("PriceMax should be 200 juta")
	}
	if c.PriceTarget == nil || *c.PriceTarget != 150_000_000 {
		t.Error("PriceTarget should be the range midpoint")
	}
}

func TestParse_BarePriceTarget(t *testing.T) {
	c := newParser().Parse("mobil 500 juta")
	if c.PriceMax != nil {
		t.Error("bare amount should not set a ceiling")
	}
	if c.PriceMin != nil {
		t.Error("bare amount should not set a floor")
	}
	if c.PriceTarget == nil || *c.PriceTarget != 500_000_000 {
		t.Error("bare amount should set the price target")
	}
}

func TestParse_SmallBareNumberIgnored(t *testing.T) {
	// "di bawah 5" must not become a 5-rupiah price ceiling.
	c := newParser().Parse("usia di bawah 5 tahun")
	if c.PriceMax != nil {
		t.Errorf("PriceMax = %d, want unset", *c.PriceMax)
	}
	if c.AgeMax == nil || *c.AgeMax != 5 {
		t.Error("AgeMax should be 5")
	}
}

func TestParse_Year(t *testing.T) {
	p := newParser()

	t.Run("floor ke atas", func(t *testing.T) {
		c := p.Parse("tahun 2018 ke atas")
		if c.YearMin == nil || *c.YearMin != 2018 {
			t.Error("YearMin should be 2018")
		}
		if c.YearMax != nil {
			t.Error("YearMax should be unset")
		}
	})

	t.Run("floor plain", func(t *testing.T) {
		c := p.Parse("mobil tahun 2020")
		if c.YearMin == nil || *c.YearMin != 2020 {
			t.Error("YearMin should be 2020")
		}
	})

	t.Run("ceiling", func(t *testing.T) {
		c := p.Parse("tahun di bawah 2018")
		if c.YearMax == nil || *c.YearMax != 2018 {
			t.Error("YearMax should be 2018")
		}
		if c.YearMin != nil {
			t.Error("YearMin should be unset for a ceiling query")
		}
		if c.PriceMax != nil {
			t.Error("a year figure must not be read as a price")
		}
	})

	t.Run("ceiling kurang dari", func(t *testing.T) {
		c := p.Parse("tahun kurang dari 2015")
		if c.YearMax == nil || *c.YearMax != 2015 {
			t.Error("YearMax should be 2015")
		}
	})
}

func TestParse_Age(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"usia di bawah 5 tahun", 5},
		{"usia kurang dari 3 tahun", 3},
		{"umur maksimal 10 tahun", 10},
	}

	p := newParser()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := p.Parse(tt.query)
			if c.AgeMax == nil {
				t.Fatal("AgeMax not set")
			}
			if *c.AgeMax != tt.want {
				t.Errorf("AgeMax = %d, want %d", *c.AgeMax, tt.want)
			}
		})
	}
}

func TestParse_Combined(t *testing.T) {
	c := newParser().Parse("mobil diesel manual di bawah 200 juta tahun 2018 ke atas")

	if c.Fuel != FuelDiesel {
		t.Errorf("Fuel = %q", c.Fuel)
	}
	if c.Transmission != TransmissionManual {
		t.Errorf("Transmission = %q", c.Transmission)
	}
	if c.PriceMax == nil || *c.PriceMax != 200_000_000 {
		t.Error("PriceMax should be 200 juta")
	}
	if c.YearMin == nil || *c.YearMin != 2018 {
		t.Error("YearMin should be 2018")
	}
}

func TestParse_NeverFails(t *testing.T) {
	queries := []string{
		"",
		"?????",
		"mobil bagus murah irit",
		"di bawah juta",
		"tahun ke atas",
	}

	p := newParser()
	for _, q := range queries {
		c := p.Parse(q) // must not panic
		_ = c
	}

	if p.Parse("apa saja").HasAny() {
		t.Error("unrecognized text should yield no constraints")
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := newParser()
	q := "toyota matic di bawah 200 juta tahun 2019 ke atas"

	a := p.Parse(q)
	b := p.Parse(q)

	if a.Fuel != b.Fuel || a.Transmission != b.Transmission || a.Brand != b.Brand {
		t.Error("Parse should be deterministic")
	}
	if *a.PriceMax != *b.PriceMax || *a.YearMin != *b.YearMin {
		t.Error("Parse should be deterministic for numeric constraints")
	}
}

func TestFuelMatchTerms(t *testing.T) {
	terms := FuelMatchTerms(FuelListrik)

	want := map[string]bool{"listrik": false, "electric": false, "ev": false}
	for _, term := range terms {
		if _, ok := want[term]; ok {
			want[term] = true
		}
	}
	for term, seen := range want {
		if !seen {
			t.Errorf("FuelMatchTerms(listrik) missing %q", term)
		}
	}
}
