package evaluation

// Rank metrics over a binary relevance vector: relevances[i] is 1 when
// the result at rank i matched a ground-truth name.

// Precision calculates Precision at K.
func Precision(relevances []int, k int) float64 {
	if k > len(relevances) {
		k = len(relevances)
	}
	if k == 0 {
		return 0
	}

	relevant := 0
	for i := 0; i < k; i++ {
		if relevances[i] > 0 {
			relevant++
		}
	}

	return float64(relevant) / float64(k)
}

// Recall calculates Recall at K against the total number of expected
// names, which can exceed what the result list contains.
func Recall(relevances []int, k, totalExpected int) float64 {
	if totalExpected == 0 {
		return 0
	}
	if k > len(relevances) {
		k = len(relevances)
	}

	relevantInK := 0
	for i := 0; i < k; i++ {
		if relevances[i] > 0 {
			relevantInK++
		}
	}

	return float64(relevantInK) / float64(totalExpected)
}

// F1 combines precision and recall.
func F1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// MRR calculates the reciprocal rank of the first relevant result.
func MRR(relevances []int) float64 {
	for i, r := range relevances {
		if r > 0 {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// AveragePrecision calculates Average Precision.
func AveragePrecision(relevances []int) float64 {
	relevant := 0
	sumPrecision := 0.0

	for i, r := range relevances {
		if r > 0 {
			relevant++
			sumPrecision += float64(relevant) / float64(i+1)
		}
	}

	if relevant == 0 {
		return 0
	}
	return sumPrecision / float64(relevant)
}
