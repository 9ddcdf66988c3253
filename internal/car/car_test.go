package car

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  int
		want  string
	}{
		{"lowercase", "Toyota Avanza G", 2019, "toyota avanza g"},
		{"collapse whitespace", "  Honda   Jazz  RS ", 2018, "honda jazz rs"},
		{"strip redundant year suffix", "Toyota Avanza G (2019)", 2019, "toyota avanza g"},
		{"keep non-matching year suffix", "Toyota Avanza G (2018)", 2019, "toyota avanza g (2018)"},
		{"strip year suffix when year unknown", "Toyota Avanza G (2019)", 0, "toyota avanza g"},
		{"empty", "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input, tt.year); got != tt.want {
				t.Errorf("NormalizeName(%q, %d) = %q, want %q", tt.input, tt.year, got, tt.want)
			}
		})
	}
}

func TestIdentity(t *testing.T) {
	a := Record{Name: "Toyota Avanza G (2019)", Year: 2019}
	b := Record{Name: "toyota  avanza g", Year: 2019}
	c := Record{Name: "toyota avanza g", Year: 2020}

	if a.Identity() != b.Identity() {
		t.Error("records with the same normalized name and year should share identity")
	}
	if a.Identity() == c.Identity() {
		t.Error("records with different years should not share identity")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"Rp 150.000.000", 150000000},
		{"150000000", 150000000},
		{"Rp150,000,000", 150000000},
		{"", 0},
		{"nego", 0},
		{"-", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.input); got != tt.want {
			t.Errorf("ParsePrice(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestAge(t *testing.T) {
	tests := []struct {
		year    int
		current int
		want    int
	}{
		{2020, 2025, 5},
		{2025, 2025, 0},
		{2030, 2025, 0}, // future year clamps to 0
		{0, 2025, 0},    // unknown year
		{-1, 2025, 0},
	}

	for _, tt := range tests {
		if got := Age(tt.year, tt.current); got != tt.want {
			t.Errorf("Age(%d, %d) = %d, want %d", tt.year, tt.current, got, tt.want)
		}
	}
}

func TestBrandOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Toyota Avanza G", "toyota"},
		{"  HONDA Jazz", "honda"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BrandOf(tt.input); got != tt.want {
			t.Errorf("BrandOf(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{150000000, "Rp 150.000.000"},
		{1500000, "Rp 1.500.000"},
		{999, "Rp 999"},
		{0, "-"},
		{-5, "-"},
	}

	for _, tt := range tests {
		if got := FormatRupiah(tt.input); got != tt.want {
			t.Errorf("FormatRupiah(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDocumentText(t *testing.T) {
	r := Record{
		Name:         "Toyota Avanza G",
		Brand:        "toyota",
		Year:         2019,
		Transmission: "Manual",
		FuelType:     "Bensin",
		PriceDisplay: "Rp 150.000.000",
	}

	want := "Toyota Avanza G | toyota | 2019 | Manual | Bensin | Rp 150.000.000"
	if got := r.DocumentText(); got != want {
		t.Errorf("DocumentText() = %q, want %q", got, want)
	}
}
