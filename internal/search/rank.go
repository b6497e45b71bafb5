package search

import "sort"

// Result is a ranked document index with its similarity score.
type Result struct {
	// Index is the position of the document in the input slice.
	Index int
	// Score is the Jaccard similarity against the query.
	Score float64
}

// TopK ranks docs against query and returns at most k results with a
// positive score, best first. Ties break on input order, so ranking is
// deterministic.
func TopK(query string, docs []string, k int) []Result {
	if k <= 0 || len(docs) == 0 {
		return nil
	}
	q := Tokenize(query)
	if len(q) == 0 {
		return nil
	}

	results := make([]Result, 0, len(docs))
	for i, d := range docs {
		if score := Score(q, Tokenize(d)); score > 0 {
			results = append(results, Result{Index: i, Score: score})
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}
