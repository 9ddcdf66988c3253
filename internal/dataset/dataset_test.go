package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

const sampleCSV = `Nama Mobil,Harga,Tahun,Transmisi,Bahan Bakar,Kapasitas Mesin (cc)
Toyota Avanza G,Rp 150.000.000,2019,Manual,Bensin,1300
Honda CR-V Turbo,Rp 420.000.000,2022,Otomatis,Bensin,1500
Mitsubishi Pajero Sport,Rp 380.000.000,2018,Otomatis,Diesel,2400
`

func TestRead(t *testing.T) {
	snap, err := Read(strings.NewReader(sampleCSV), 2025)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if snap.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", snap.Len())
	}

	r := snap.Records()[0]
	if r.Name != "Toyota Avanza G" {
		t.Errorf("Name = %q", r.Name)
	}
	if r.PriceNumeric != 150000000 {
		t.Errorf("PriceNumeric = %d, want 150000000", r.PriceNumeric)
	}
	if r.Year != 2019 {
		t.Errorf("Year = %d, want 2019", r.Year)
	}
	if r.AgeYears != 6 {
		t.Errorf("AgeYears = %d, want 6", r.AgeYears)
	}
	if r.Brand != "toyota" {
		t.Errorf("Brand = %q, want toyota", r.Brand)
	}
	if r.FuelType != "Bensin" {
		t.Errorf("FuelType = %q", r.FuelType)
	}
	if r.EngineCapacity != "1300" {
		t.Errorf("EngineCapacity = %q", r.EngineCapacity)
	}
}

func TestRead_AliasHeaders(t *testing.T) {
	// Underscore variants and a pre-parsed numeric price column.
	csv := `nama_mobil,merek,harga,harga_angka,tahun,transmisi,bahan_bakar
Avanza G (2019),Toyota,,150000000,2019,Manual,Bensin
`
	snap, err := Read(strings.NewReader(csv), 2025)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", snap.Len())
	}

	r := snap.Records()[0]
	if r.PriceNumeric != 150000000 {
		t.Errorf("PriceNumeric = %d, want 150000000", r.PriceNumeric)
	}
	// Display price backfilled from the numeric column
	if r.PriceDisplay != "Rp 150.000.000" {
		t.Errorf("PriceDisplay = %q, want Rp 150.000.000", r.PriceDisplay)
	}
	// Explicit brand column wins over first-token derivation
	if r.Brand != "toyota" {
		t.Errorf("Brand = %q, want toyota", r.Brand)
	}
}

func TestRead_CamelCaseHeaders(t *testing.T) {
	// Single-word English headers as shipped by some exports.
	csv := `Name,Price,Year,Age,FuelType,Transmission,EngineCapacity
Toyota Avanza G,Rp 150.000.000,2019,6,Bensin,Manual,1300
`
	snap, err := Read(strings.NewReader(csv), 2025)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", snap.Len())
	}

	r := snap.Records()[0]
	if r.FuelType != "Bensin" {
		t.Errorf("FuelType = %q, want Bensin", r.FuelType)
	}
	if r.Transmission != "Manual" {
		t.Errorf("Transmission = %q, want Manual", r.Transmission)
	}
	if r.EngineCapacity != "1300" {
		t.Errorf("EngineCapacity = %q, want 1300", r.EngineCapacity)
	}
	if r.PriceNumeric != 150000000 {
		t.Errorf("PriceNumeric = %d, want 150000000", r.PriceNumeric)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"FuelType", "fuel type"},
		{"EngineCapacity", "engine capacity"},
		{"fuel_type", "fuel type"},
		{"  Bahan  Bakar ", "bahan bakar"},
		{"nama_mobil", "nama mobil"},
		{"Year", "year"},
	}

	for _, tt := range tests {
		if got := normalizeHeader(tt.input); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRead_MissingRequiredColumns(t *testing.T) {
	csv := `Nama Mobil,Tahun
Avanza,2019
`
	_, err := Read(strings.NewReader(csv), 2025)
	if err == nil {
		t.Fatal("expected error for missing required columns")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *AppError, got %T", err)
	}
	if appErr.Code != errors.CodeDatasetError {
		t.Errorf("Code = %s, want %s", appErr.Code, errors.CodeDatasetError)
	}
}

func TestRead_SkipsEmptyNames(t *testing.T) {
	csv := `Nama Mobil,Harga,Tahun,Transmisi,Bahan Bakar
,Rp 100.000.000,2019,Manual,Bensin
Toyota Yaris,Rp 200.000.000,2020,Otomatis,Bensin
`
	snap, err := Read(strings.NewReader(csv), 2025)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (empty-name row skipped)", snap.Len())
	}
}

func TestRead_UnparseableFields(t *testing.T) {
	csv := `Nama Mobil,Harga,Tahun,Transmisi,Bahan Bakar
Suzuki Carry,nego,abc,Manual,Bensin
`
	snap, err := Read(strings.NewReader(csv), 2025)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	r := snap.Records()[0]
	if r.PriceNumeric != 0 {
		t.Errorf("PriceNumeric = %d, want 0 for unparseable price", r.PriceNumeric)
	}
	if r.Year != 0 {
		t.Errorf("Year = %d, want 0 for unparseable year", r.Year)
	}
	if r.AgeYears != 0 {
		t.Errorf("AgeYears = %d, want 0 for unknown year", r.AgeYears)
	}
}

func TestManager_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data_mobil.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(path, 2025, logger.Default())
	if m.Snapshot() != nil {
		t.Error("Snapshot() should be nil before first load")
	}

	snap, err := m.Reload()
	if err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if snap.Len() != 3 {
		t.Errorf("Len() = %d, want 3", snap.Len())
	}
	if m.Snapshot() != snap {
		t.Error("Snapshot() should return the loaded snapshot")
	}

	// A failed reload keeps the previous snapshot active.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reload(); err == nil {
		t.Error("Reload() should fail for a missing file")
	}
	if m.Snapshot() != snap {
		t.Error("failed reload should not replace the active snapshot")
	}
}
