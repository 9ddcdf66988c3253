package qdrant

import (
	"testing"
	"time"

	"github.com/mobilcari/mobil-cari/internal/car"
)

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()

	if cfg.Host != DefaultHost {
		t.Errorf("expected host %s, got %s", DefaultHost, cfg.Host)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, cfg.Port)
	}

	if cfg.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.Timeout)
	}
}

func TestDefaultCollectionConfig(t *testing.T) {
	cfg := DefaultCollectionConfig("cars")

	if cfg.Name != "cars" {
		t.Errorf("expected name 'cars', got %s", cfg.Name)
	}

	if cfg.VectorSize != 768 {
		t.Errorf("expected vector size 768, got %d", cfg.VectorSize)
	}
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cars", "mobil_cars"},
		{"cars-v2", "mobil_cars-v2"},
	}

	for _, tt := range tests {
		result := collectionName(tt.input)
		if result != tt.expected {
			t.Errorf("collectionName(%s) = %s, expected %s", tt.input, result, tt.expected)
		}
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	rec := car.Record{
		Name:           "Toyota Avanza G",
		Brand:          "toyota",
		Year:           2019,
		PriceDisplay:   "Rp 150.000.000",
		PriceNumeric:   150_000_000,
		AgeYears:       6,
		FuelType:       "Bensin",
		Transmission:   "Manual",
		EngineCapacity: "1300",
	}

	payload := PayloadFor(rec, time.Now())
	if payload.Document != rec.DocumentText() {
		t.Errorf("Document = %q, want %q", payload.Document, rec.DocumentText())
	}

	got := payload.Record()
	if got != rec {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestBuildSearchFilter(t *testing.T) {
	if buildSearchFilter(nil) != nil {
		t.Error("nil filter must build to nil")
	}
	if buildSearchFilter(&SearchFilter{}) != nil {
		t.Error("empty filter must build to nil")
	}

	f := buildSearchFilter(&SearchFilter{
		Brand:    "toyota",
		FuelType: "Diesel",
		PriceMax: 200_000_000,
		YearMin:  2018,
	})
	if f == nil {
		t.Fatal("expected filter")
	}
	if len(f.Must) != 4 {
		t.Errorf("got %d conditions, want 4", len(f.Must))
	}
}
