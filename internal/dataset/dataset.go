// Package dataset loads the used-car CSV into an immutable snapshot.
//
// The ingestion boundary is the only place where the historical column-name
// variants of the dataset ("Nama Mobil" vs "nama_mobil", "Bahan Bakar" vs
// "bbm", ...) are tolerated. Everything after it works with typed
// car.Record values.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mobilcari/mobil-cari/internal/car"
	"github.com/mobilcari/mobil-cari/internal/pkg/errors"
)

// Snapshot is an immutable view of the dataset at load time. It is shared
// across concurrent requests and must never be mutated after creation.
type Snapshot struct {
	records  []car.Record
	source   string
	loadedAt time.Time
}

// Records returns the records in file order. Callers must treat the
// returned slice as read-only.
func (s *Snapshot) Records() []car.Record {
	return s.records
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Source returns the path the snapshot was loaded from.
func (s *Snapshot) Source() string {
	return s.source
}

// LoadedAt returns when the snapshot was created.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Canonical column keys.
const (
	colName         = "name"
	colBrand        = "brand"
	colPrice        = "price"
	colPriceNumeric = "price_numeric"
	colYear         = "year"
	colAge          = "age"
	colFuel         = "fuel"
	colTransmission = "transmission"
	colEngine       = "engine"
)

// columnAliases maps each canonical column to the header spellings observed
// across dataset revisions. Headers are compared after normalization
// (lower-case, trimmed, camel case split, underscores and repeated spaces
// collapsed), so "FuelType", "fuel_type" and "Fuel Type" all resolve.
var columnAliases = map[string][]string{
	colName:         {"nama mobil", "nama", "name", "judul", "title", "tipe", "tipe mobil", "model"},
	colBrand:        {"merek", "merk", "brand"},
	colPrice:        {"harga", "price"},
	colPriceNumeric: {"harga angka", "harga num", "harga number", "price numeric"},
	colYear:         {"tahun", "year"},
	colAge:          {"usia", "usia kendaraan (tahun)", "umur", "age"},
	colFuel:         {"bahan bakar", "bbm", "fuel", "fuel type", "fueltype"},
	colTransmission: {"transmisi", "transmission", "transmision"},
	colEngine:       {"kapasitas mesin", "kapasitas mesin (cc)", "engine cc", "engine capacity", "enginecapacity", "cc", "mesin"},
}

// requiredColumns must resolve in the header or the load fails.
var requiredColumns = []string{colName, colPrice, colYear, colFuel, colTransmission}

// normalizeHeader canonicalizes a raw CSV header cell for alias matching.
func normalizeHeader(h string) string {
	h = splitCamel(strings.TrimSpace(h))
	h = strings.ToLower(h)
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// splitCamel inserts a space before an upper-case rune that follows a
// lower-case one, so "FuelType" normalizes like "Fuel Type".
func splitCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevLower := false
	for _, r := range s {
		if prevLower && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		prevLower = unicode.IsLower(r)
		b.WriteRune(r)
	}
	return b.String()
}

// resolveColumns maps canonical column keys to CSV column indices.
func resolveColumns(header []string) (map[string]int, error) {
	byAlias := make(map[string]string)
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			byAlias[a] = canonical
		}
	}

	cols := make(map[string]int)
	for i, cell := range header {
		norm := normalizeHeader(cell)
		canonical, ok := byAlias[norm]
		if !ok {
			continue
		}
		// First matching column wins; later duplicates are ignored.
		if _, seen := cols[canonical]; !seen {
			cols[canonical] = i
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, errors.DatasetError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	return cols, nil
}

// Load reads the CSV at path into a snapshot. currentYear anchors the age
// derivation; ages stored in the file are ignored because they were observed
// stale across dataset revisions.
func Load(path string, currentYear int) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DatasetError("opening dataset", err)
	}
	defer f.Close()

	snap, err := Read(f, currentYear)
	if err != nil {
		return nil, err
	}
	snap.source = path
	return snap, nil
}

// Read parses CSV data from r into a snapshot.
func Read(r io.Reader, currentYear int) (*Snapshot, error) {
	if currentYear <= 0 {
		currentYear = time.Now().Year()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.DatasetError("reading dataset header", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []car.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.DatasetError("reading dataset row", err)
		}

		rec := buildRecord(row, cols, currentYear)
		// Records with an empty name cannot be identified or recommended.
		if car.NormalizeName(rec.Name, rec.Year) == "" {
			continue
		}
		records = append(records, rec)
	}

	return &Snapshot{
		records:  records,
		loadedAt: time.Now(),
	}, nil
}

func buildRecord(row []string, cols map[string]int, currentYear int) car.Record {
	get := func(canonical string) string {
		idx, ok := cols[canonical]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	name := get(colName)
	year := parseInt(get(colYear))

	priceDisplay := get(colPrice)
	priceNumeric := car.ParsePrice(get(colPriceNumeric))
	if priceNumeric == 0 {
		priceNumeric = car.ParsePrice(priceDisplay)
	}
	if priceDisplay == "" {
		priceDisplay = car.FormatRupiah(priceNumeric)
	}

	brand := get(colBrand)
	if brand == "" {
		brand = car.BrandOf(name)
	} else {
		brand = strings.ToLower(brand)
	}

	return car.Record{
		Name:           name,
		Year:           year,
		PriceDisplay:   priceDisplay,
		PriceNumeric:   priceNumeric,
		AgeYears:       car.Age(year, currentYear),
		FuelType:       get(colFuel),
		Transmission:   get(colTransmission),
		EngineCapacity: get(colEngine),
		Brand:          brand,
	}
}

// parseInt parses an integer leniently: "2019", "2019.0" and padded values
// all resolve; anything else yields 0 (field absent, never fatal).
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
