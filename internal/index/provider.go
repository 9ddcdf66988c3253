package index

import (
	"context"

	"github.com/mobilcari/mobil-cari/internal/ml"
	"github.com/mobilcari/mobil-cari/internal/qdrant"
	"github.com/mobilcari/mobil-cari/internal/recommend"
)

// Provider answers similarity queries against the indexed catalog. It
// implements the recommender's SimilarityProvider.
type Provider struct {
	ml         ml.Service
	store      VectorStore
	collection string
}

// NewProvider creates a similarity provider over the given collection.
func NewProvider(mlSvc ml.Service, store VectorStore, collection string) *Provider {
	if collection == "" {
		collection = DefaultPipelineConfig().Collection
	}
	return &Provider{
		ml:         mlSvc,
		store:      store,
		collection: collection,
	}
}

// Similar embeds the query and returns the closest listings.
func (p *Provider) Similar(ctx context.Context, query string, limit int) ([]recommend.ScoredRecord, error) {
	vecs, err := p.ml.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}

	hits, err := p.store.Search(ctx, p.collection, qdrant.SearchRequest{
		Vector:      vecs[0],
		Limit:       uint64(limit),
		WithPayload: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]recommend.ScoredRecord, len(hits))
	for i, h := range hits {
		out[i] = recommend.ScoredRecord{
			Record: h.Payload.Record(),
			Score:  h.Score,
		}
	}
	return out, nil
}
