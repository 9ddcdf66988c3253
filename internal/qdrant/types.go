// Package qdrant wraps the Qdrant Go client with the vehicle-catalog
// operations the recommender needs: one dense vector per listing, the
// listing fields as payload.
package qdrant

import (
	"time"

	"github.com/mobilcari/mobil-cari/internal/car"
)

// CollectionConfig defines the configuration for creating a collection.
type CollectionConfig struct {
	// Name is the collection name (will be prefixed with "mobil_").
	Name string

	// VectorSize is the embedding dimension (768 for nomic-embed-text).
	VectorSize uint64

	// OnDiskPayload stores payload on disk to save RAM.
	OnDiskPayload bool

	// IndexingThreshold is the number of vectors before HNSW index is built.
	IndexingThreshold uint64
}

// DefaultCollectionConfig returns sensible defaults for a vehicle catalog.
func DefaultCollectionConfig(name string) CollectionConfig {
	return CollectionConfig{
		Name:              name,
		VectorSize:        768,
		OnDiskPayload:     false,
		IndexingThreshold: 20000,
	}
}

// Point is one listing to upsert.
type Point struct {
	// ID is the unique point identifier, derived from the listing identity.
	ID string

	// Vector is the embedding of the listing's document text.
	Vector []float32

	// Payload is the listing metadata.
	Payload CarPayload
}

// CarPayload is the searchable listing metadata stored with each point.
type CarPayload struct {
	Name           string    `json:"name"`
	Brand          string    `json:"brand"`
	Year           int       `json:"year"`
	PriceDisplay   string    `json:"price_display"`
	PriceNumeric   int64     `json:"price_numeric"`
	AgeYears       int       `json:"age_years"`
	FuelType       string    `json:"fuel_type"`
	Transmission   string    `json:"transmission"`
	EngineCapacity string    `json:"engine_capacity"`
	Document       string    `json:"document"`
	IndexedAt      time.Time `json:"indexed_at"`
}

// PayloadFor builds the payload for a dataset record.
func PayloadFor(r car.Record, indexedAt time.Time) CarPayload {
	return CarPayload{
		Name:           r.Name,
		Brand:          r.Brand,
		Year:           r.Year,
		PriceDisplay:   r.PriceDisplay,
		PriceNumeric:   r.PriceNumeric,
		AgeYears:       r.AgeYears,
		FuelType:       r.FuelType,
		Transmission:   r.Transmission,
		EngineCapacity: r.EngineCapacity,
		Document:       r.DocumentText(),
		IndexedAt:      indexedAt,
	}
}

// Record converts the payload back into a dataset record.
func (p CarPayload) Record() car.Record {
	return car.Record{
		Name:           p.Name,
		Brand:          p.Brand,
		Year:           p.Year,
		PriceDisplay:   p.PriceDisplay,
		PriceNumeric:   p.PriceNumeric,
		AgeYears:       p.AgeYears,
		FuelType:       p.FuelType,
		Transmission:   p.Transmission,
		EngineCapacity: p.EngineCapacity,
	}
}

// SearchRequest defines parameters for a dense similarity search.
type SearchRequest struct {
	// Vector is the embedded query.
	Vector []float32

	// Limit is the maximum number of results to return.
	Limit uint64

	// Filter constrains the search to matching listings.
	Filter *SearchFilter

	// WithPayload includes payload in results.
	WithPayload bool

	// ScoreThreshold drops results below this score.
	ScoreThreshold *float32
}

// SearchFilter narrows a search by listing attributes. Zero values mean
// no condition.
type SearchFilter struct {
	Brand    string
	FuelType string
	PriceMax int64
	YearMin  int
}

// SearchResult is a single similarity hit.
type SearchResult struct {
	// ID is the point identifier.
	ID string

	// Score is the cosine similarity.
	Score float32

	// Payload contains the listing metadata.
	Payload CarPayload
}

// CollectionInfo describes a collection's state.
type CollectionInfo struct {
	// Name is the collection name (without prefix).
	Name string

	// PointsCount is the total number of points.
	PointsCount uint64

	// Status is the collection health status.
	Status string
}
