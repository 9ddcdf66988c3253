package evaluation

import (
	"context"
	"encoding/json"
	"os"

	"github.com/mobilcari/mobil-cari/internal/car"
	"github.com/mobilcari/mobil-cari/internal/pkg/errors"
	"github.com/mobilcari/mobil-cari/internal/recommend"
)

// Evaluator runs labeled queries through the recommendation service and
// scores the returned names against the ground truth.
type Evaluator struct {
	svc *recommend.Service
	ks  []int
}

// NewEvaluator creates an evaluator computing metrics at the given cutoffs.
func NewEvaluator(svc *recommend.Service, ks []int) *Evaluator {
	if len(ks) == 0 {
		ks = []int{1, 3, 5}
	}
	return &Evaluator{
		svc: svc,
		ks:  ks,
	}
}

// LoadGroundTruth reads a JSON array of labeled queries from path.
func LoadGroundTruth(path string) ([]GroundTruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DatasetError("reading ground truth", err)
	}

	var gt []GroundTruth
	if err := json.Unmarshal(data, &gt); err != nil {
		return nil, errors.DatasetError("parsing ground truth", err)
	}
	return gt, nil
}

// EvaluateQuery scores a single labeled query.
func (e *Evaluator) EvaluateQuery(ctx context.Context, gt GroundTruth) (*QueryResult, error) {
	topK := e.ks[len(e.ks)-1]

	resp, err := e.svc.Recommend(ctx, recommend.Request{
		Query: gt.Query,
		TopK:  topK,
	})
	if err != nil {
		return nil, err
	}

	expected := make(map[string]bool, len(gt.Expected))
	for _, name := range gt.Expected {
		if norm := car.NormalizeName(name, 0); norm != "" {
			expected[norm] = true
		}
	}

	relevances := make([]int, len(resp.Results))
	for i, r := range resp.Results {
		if expected[car.NormalizeName(r.Name, r.Year)] {
			relevances[i] = 1
		}
	}

	result := &QueryResult{
		QueryID:     gt.QueryID,
		Query:       gt.Query,
		Precision:   make(map[int]float64),
		Recall:      make(map[int]float64),
		F1:          make(map[int]float64),
		MRR:         MRR(relevances),
		AP:          AveragePrecision(relevances),
		ResultCount: len(resp.Results),
	}

	for _, k := range e.ks {
		p := Precision(relevances, k)
		r := Recall(relevances, k, len(expected))
		result.Precision[k] = p
		result.Recall[k] = r
		result.F1[k] = F1(p, r)
	}

	return result, nil
}

// Evaluate runs every labeled query and returns per-query results plus
// the aggregate summary.
func (e *Evaluator) Evaluate(ctx context.Context, gts []GroundTruth) ([]*QueryResult, *Summary, error) {
	results := make([]*QueryResult, 0, len(gts))
	for _, gt := range gts {
		r, err := e.EvaluateQuery(ctx, gt)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, r)
	}
	return results, e.Summarize(results), nil
}

// Summarize aggregates results across queries.
func (e *Evaluator) Summarize(results []*QueryResult) *Summary {
	if len(results) == 0 {
		return &Summary{}
	}

	summary := &Summary{
		QueryCount:    len(results),
		MeanPrecision: make(map[int]float64),
		MeanRecall:    make(map[int]float64),
		MeanF1:        make(map[int]float64),
	}

	for _, r := range results {
		summary.MeanMRR += r.MRR
		summary.MAP += r.AP

		for k, v := range r.Precision {
			summary.MeanPrecision[k] += v
		}
		for k, v := range r.Recall {
			summary.MeanRecall[k] += v
		}
		for k, v := range r.F1 {
			summary.MeanF1[k] += v
		}
	}

	n := float64(len(results))
	summary.MeanMRR /= n
	summary.MAP /= n

	for k := range summary.MeanPrecision {
		summary.MeanPrecision[k] /= n
	}
	for k := range summary.MeanRecall {
		summary.MeanRecall[k] /= n
	}
	for k := range summary.MeanF1 {
		summary.MeanF1[k] /= n
	}

	return summary
}
