// Package evaluation measures recommendation quality against labeled
// ground truth: for each query, the vehicle names a human judged relevant.
package evaluation

// GroundTruth is one labeled query with the names judged relevant.
type GroundTruth struct {
	QueryID  string   `json:"query_id"`
	Query    string   `json:"query"`
	Expected []string `json:"expected"`
}

// QueryResult contains metrics for a single query.
type QueryResult struct {
	QueryID     string          `json:"query_id"`
	Query       string          `json:"query"`
	Precision   map[int]float64 `json:"precision"` // Precision@K
	Recall      map[int]float64 `json:"recall"`    // Recall@K
	F1          map[int]float64 `json:"f1"`        // F1@K
	MRR         float64         `json:"mrr"`
	AP          float64         `json:"ap"`
	ResultCount int             `json:"result_count"`
}

// Summary aggregates metrics across queries.
type Summary struct {
	QueryCount    int             `json:"query_count"`
	MeanPrecision map[int]float64 `json:"mean_precision"`
	MeanRecall    map[int]float64 `json:"mean_recall"`
	MeanF1        map[int]float64 `json:"mean_f1"`
	MeanMRR       float64         `json:"mean_mrr"`
	MAP           float64         `json:"map"`
}
