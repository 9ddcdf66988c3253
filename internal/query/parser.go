package query

import (
	"strings"

	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

// Parser extracts structured constraints from free-text queries.
//
// Parsing never fails: text the rule tables do not recognize simply leaves
// more constraint fields unset. Contradictory constraints (a ceiling below
// a floor) are not rejected here; the filter's relaxation cascade absorbs
// them.
type Parser struct {
	log *logger.Logger
}

// NewParser creates a new constraint parser.
func NewParser(log *logger.Logger) *Parser {
	return &Parser{log: log}
}

// Parse extracts constraints from a query. It is a pure function over the
// query text.
func (p *Parser) Parse(q string) Constraints {
	normalized := normalize(q)

	var c Constraints
	c.Fuel = extractFuel(normalized)
	c.Transmission = extractTransmission(normalized)
	c.Brand = extractBrand(normalized)

	for _, rule := range numericRules {
		for _, groups := range rule.re.FindAllStringSubmatch(normalized, -1) {
			rule.apply(&c, groups)
		}
	}

	if p.log != nil {
		p.log.Debug("Parsed query constraints",
			"query", q,
			"fuel", c.Fuel,
			"transmission", c.Transmission,
			"brand", c.Brand,
			"has_price", c.HasPriceTarget(),
		)
	}

	return c
}

// normalize lower-cases the query and collapses repeated whitespace.
func normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// extractFuel returns the canonical fuel for the first synonym present in
// the query, in table priority order.
func extractFuel(q string) string {
	words := tokenSet(q)
	for _, syn := range fuelSynonyms {
		if words[syn.keyword] {
			return syn.canonical
		}
	}
	return ""
}

// extractTransmission maps transmission keywords to a canonical value.
// When both automatic and manual keywords co-occur the query is ambiguous
// and the field is left unconstrained.
func extractTransmission(q string) string {
	auto := maticRe.MatchString(q)
	manual := manualRe.MatchString(q)

	switch {
	case auto && manual:
		return ""
	case auto:
		return TransmissionOtomatis
	case manual:
		return TransmissionManual
	default:
		return ""
	}
}

// extractBrand matches query tokens against the brand allow-list, resolving
// aliases first. The earliest token in the query wins.
func extractBrand(q string) string {
	allowed := make(map[string]bool, len(knownBrands))
	for _, b := range knownBrands {
		allowed[b] = true
	}

	for _, tok := range wordRe.FindAllString(q, -1) {
		if canonical, ok := brandAliases[tok]; ok {
			return canonical
		}
		if allowed[tok] {
			return tok
		}
	}
	return ""
}

// tokenSet splits the query into a word-presence set for whole-word
// keyword matching.
func tokenSet(q string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range wordRe.FindAllString(q, -1) {
		set[tok] = true
	}
	return set
}
