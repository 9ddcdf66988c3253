package query

import (
	"regexp"
	"strconv"
	"strings"
)

// fuelSynonym maps a query keyword to a canonical fuel value. The table is
// ordered: the first keyword present in the query wins.
type fuelSynonym struct {
	keyword   string
	canonical string
}

var fuelSynonyms = []fuelSynonym{
	{"diesel", FuelDiesel},
	{"solar", FuelDiesel},
	{"bensin", FuelBensin},
	{"pertamax", FuelBensin},
	{"petrol", FuelBensin},
	{"gasoline", FuelBensin},
	{"hybrid", FuelHybrid},
	{"hibrida", FuelHybrid},
	{"listrik", FuelListrik},
	{"electric", FuelListrik},
	{"ev", FuelListrik},
}

// FuelMatchTerms returns every keyword that counts as a match for the
// canonical fuel value, including the canonical itself. Used by the filter
// so that a "listrik" constraint also matches records labelled "electric"
// or "ev".
func FuelMatchTerms(canonical string) []string {
	terms := []string{canonical}
	for _, syn := range fuelSynonyms {
		if syn.canonical == canonical && syn.keyword != canonical {
			terms = append(terms, syn.keyword)
		}
	}
	return terms
}

// TransmissionMatchTerms returns the record substrings that satisfy a
// canonical transmission constraint. Dataset rows label automatics as
// "Matic", "Otomatis" or "Automatic" interchangeably.
func TransmissionMatchTerms(canonical string) []string {
	if canonical == TransmissionOtomatis {
		return []string{"otomatis", "matic", "automatic"}
	}
	return []string{canonical}
}

// knownBrands is the brand allow-list. First match in query order wins.
var knownBrands = []string{
	"toyota", "daihatsu", "honda", "suzuki", "mitsubishi", "nissan",
	"mazda", "hyundai", "kia", "wuling", "isuzu", "datsun", "ford",
	"chevrolet", "volkswagen", "bmw", "mercedes", "lexus", "subaru",
	"peugeot", "renault",
}

// brandAliases canonicalizes informal brand spellings.
var brandAliases = map[string]string{
	"vw":            "volkswagen",
	"mercy":         "mercedes",
	"mercedes-benz": "mercedes",
	"chevy":         "chevrolet",
}

var (
	maticRe  = regexp.MustCompile(`\b(matic|otomatis|automatic|at)\b`)
	manualRe = regexp.MustCompile(`\b(manual|mt)\b`)
	wordRe   = regexp.MustCompile(`[a-z0-9-]+`)
)

// numericRule binds one pattern to one constraint field. Rules are applied
// in table order and the first match per field wins, so more specific
// patterns must precede the generic ones (e.g. "tahun di bawah 2018"
// before "tahun 2018").
type numericRule struct {
	name  string
	re    *regexp.Regexp
	apply func(c *Constraints, groups []string)
}

var numericRules = []numericRule{
	{
		name: "price range",
		re:   regexp.MustCompile(`(\d{2,4})\s*[-–]\s*(\d{2,4})\s*(?:jt|juta)`),
		apply: func(c *Constraints, g []string) {
			if c.PriceMin != nil || c.PriceMax != nil {
				return
			}
			lo := juta(g[1])
			hi := juta(g[2])
			if lo > hi {
				lo, hi = hi, lo
			}
			c.PriceMin = &lo
			c.PriceMax = &hi
			mid := (lo + hi) / 2
			c.PriceTarget = &mid
		},
	},
	{
		name: "price ceiling",
		re:   regexp.MustCompile(`(?:di\s*bawah|dibawah|maksimal|maks|max|kurang\s*dari|<=|<)\s*(?:rp\.?\s*)?(\d+(?:\.\d{3})*)\s*(jt|juta)?`),
		apply: func(c *Constraints, g []string) {
			if c.PriceMax != nil {
				return
			}
			if v, ok := amount(g[1], g[2]); ok {
				c.PriceMax = &v
				if c.PriceTarget == nil {
					c.PriceTarget = &v
				}
			}
		},
	},
	{
		name: "price floor",
		re:   regexp.MustCompile(`(?:di\s*atas|diatas|lebih\s*dari|minimal|>=|>)\s*(?:rp\.?\s*)?(\d+(?:\.\d{3})*)\s*(jt|juta)?`),
		apply: func(c *Constraints, g []string) {
			if c.PriceMin != nil {
				return
			}
			if v, ok := amount(g[1], g[2]); ok {
				c.PriceMin = &v
				if c.PriceTarget == nil {
					c.PriceTarget = &v
				}
			}
		},
	},
	{
		name: "price target",
		re:   regexp.MustCompile(`(\d{2,4})\s*(?:jt|juta)`),
		apply: func(c *Constraints, g []string) {
			if c.PriceTarget != nil {
				return
			}
			v := juta(g[1])
			c.PriceTarget = &v
		},
	},
	{
		name: "year ceiling",
		re:   regexp.MustCompile(`tahun\s*(?:di\s*bawah|dibawah|kurang\s*dari)\s*(\d{4})`),
		apply: func(c *Constraints, g []string) {
			if c.YearMax != nil {
				return
			}
			if y, err := strconv.Atoi(g[1]); err == nil {
				c.YearMax = &y
			}
		},
	},
	{
		name: "year floor",
		re:   regexp.MustCompile(`tahun\s*(\d{4})\s*(?:ke\s*atas|\+)?`),
		apply: func(c *Constraints, g []string) {
			if c.YearMin != nil || c.YearMax != nil {
				return
			}
			if y, err := strconv.Atoi(g[1]); err == nil {
				c.YearMin = &y
			}
		},
	},
	{
		name: "age ceiling",
		re:   regexp.MustCompile(`(?:usia|umur)\s*(?:di\s*bawah|dibawah|kurang\s*dari|maksimal)\s*(\d{1,2})\s*tahun`),
		apply: func(c *Constraints, g []string) {
			if c.AgeMax != nil {
				return
			}
			if a, err := strconv.Atoi(g[1]); err == nil {
				c.AgeMax = &a
			}
		},
	},
}

// juta converts a "juta" (million rupiah) figure to rupiah.
func juta(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n * 1_000_000
}

// amount parses a price figure. A juta/jt suffix multiplies by one million;
// a bare figure must already be an absolute rupiah amount, so small bare
// integers ("di bawah 5 tahun") are rejected.
func amount(figure, suffix string) (int64, bool) {
	raw := strings.ReplaceAll(figure, ".", "")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if suffix != "" {
		return n * 1_000_000, true
	}
	if n < 1_000_000 {
		return 0, false
	}
	return n, true
}
