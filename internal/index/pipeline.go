// Package index builds the vector catalog: dataset records are embedded
// and upserted into Qdrant so the recommender can retrieve by similarity.
package index

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mobilcari/mobil-cari/internal/bus"
	"github.com/mobilcari/mobil-cari/internal/dataset"
	"github.com/mobilcari/mobil-cari/internal/ml"
	"github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/pkg/hash"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/qdrant"
)

// VectorStore is the subset of the Qdrant client the pipeline needs.
type VectorStore interface {
	EnsureCollection(ctx context.Context, cfg qdrant.CollectionConfig) error
	CountPoints(ctx context.Context, collection string) (uint64, error)
	UpsertPointsBatch(ctx context.Context, collection string, points []qdrant.Point, batchSize int) error
	Search(ctx context.Context, collection string, req qdrant.SearchRequest) ([]qdrant.SearchResult, error)
}

// PipelineConfig configures the indexing pipeline.
type PipelineConfig struct {
	// Collection is the target collection name (without prefix).
	Collection string

	// VectorSize is the embedding dimension.
	VectorSize uint64

	// UpsertBatchSize is the batch size for Qdrant upserts.
	UpsertBatchSize int

	// Workers is the number of parallel embedding workers.
	Workers int
}

// DefaultPipelineConfig returns sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Collection:      "cars",
		VectorSize:      768,
		UpsertBatchSize: 100,
		Workers:         4,
	}
}

// Pipeline orchestrates the full indexing flow:
// Records → Documents → Embeddings → Qdrant.
type Pipeline struct {
	cfg   PipelineConfig
	ml    ml.Service
	store VectorStore
	bus   bus.Bus
	log   *logger.Logger
}

// NewPipeline creates a new indexing pipeline.
// eventBus is optional - if nil, event publishing is disabled.
func NewPipeline(cfg PipelineConfig, mlSvc ml.Service, store VectorStore, log *logger.Logger, eventBus bus.Bus) *Pipeline {
	if cfg.Collection == "" {
		cfg = DefaultPipelineConfig()
	}
	if cfg.UpsertBatchSize <= 0 {
		cfg.UpsertBatchSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return &Pipeline{
		cfg:   cfg,
		ml:    mlSvc,
		store: store,
		bus:   eventBus,
		log:   log,
	}
}

// Result describes one indexing run.
type Result struct {
	Collection string        `json:"collection"`
	Indexed    int           `json:"indexed"`
	Skipped    bool          `json:"skipped"`
	Duration   time.Duration `json:"duration"`
}

// Index embeds every record of the snapshot and upserts it into the
// collection. When force is false and the collection already holds as
// many points as the snapshot has records, the run is skipped.
func (p *Pipeline) Index(ctx context.Context, snap *dataset.Snapshot, force bool) (*Result, error) {
	start := time.Now()

	if snap == nil || snap.Len() == 0 {
		return nil, errors.DatasetError("nothing to index", nil)
	}

	if err := p.store.EnsureCollection(ctx, qdrant.CollectionConfig{
		Name:              p.cfg.Collection,
		VectorSize:        p.cfg.VectorSize,
		IndexingThreshold: 20000,
	}); err != nil {
		return nil, errors.QdrantError("ensuring collection", err)
	}

	if !force {
		count, err := p.store.CountPoints(ctx, p.cfg.Collection)
		if err == nil && count == uint64(snap.Len()) {
			p.log.Info("Catalog already indexed, skipping", "collection", p.cfg.Collection, "points", count)
			return &Result{
				Collection: p.cfg.Collection,
				Skipped:    true,
				Duration:   time.Since(start),
			}, nil
		}
	}

	points, err := p.buildPoints(ctx, snap)
	if err != nil {
		return nil, err
	}

	if err := p.store.UpsertPointsBatch(ctx, p.cfg.Collection, points, p.cfg.UpsertBatchSize); err != nil {
		return nil, errors.QdrantError("upserting points", err)
	}

	result := &Result{
		Collection: p.cfg.Collection,
		Indexed:    len(points),
		Duration:   time.Since(start),
	}

	p.log.Info("Catalog indexed",
		"collection", p.cfg.Collection,
		"records", result.Indexed,
		"duration", result.Duration,
	)
	p.publishCompleted(ctx, result)

	return result, nil
}

// buildPoints embeds all records in parallel, bounded by cfg.Workers.
// Point IDs derive from the record identity, so re-indexing updates in
// place instead of duplicating.
func (p *Pipeline) buildPoints(ctx context.Context, snap *dataset.Snapshot) ([]qdrant.Point, error) {
	records := snap.Records()
	points := make([]qdrant.Point, len(records))
	indexedAt := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for i, rec := range records {
		g.Go(func() error {
			vecs, err := p.ml.Embed(ctx, []string{rec.DocumentText()})
			if err != nil {
				return fmt.Errorf("embedding %q: %w", rec.Name, err)
			}

			id := rec.Identity()
			points[i] = qdrant.Point{
				ID:      hash.RecordID(id.Name, id.Year),
				Vector:  vecs[0],
				Payload: qdrant.PayloadFor(rec, indexedAt),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.EmbedError("embedding catalog", err)
	}

	return points, nil
}

func (p *Pipeline) publishCompleted(ctx context.Context, result *Result) {
	if p.bus == nil {
		return
	}

	event := bus.NewEvent(bus.TopicIndexCompleted, "index", result)
	if err := p.bus.Publish(ctx, bus.TopicIndexCompleted, event); err != nil {
		p.log.Warn("Failed to publish index event", "error", err)
	}
}
