// Package eval measures ranking quality with mean average precision and
// supports paired comparison of expanded versus non-expanded runs.
package eval

import "sort"

// RelevantSet is the set of document ids judged relevant for one query.
type RelevantSet map[string]struct{}

// NewRelevantSet builds a RelevantSet from a list of document ids.
func NewRelevantSet(docIDs []string) RelevantSet {
	set := make(RelevantSet, len(docIDs))
	for _, id := range docIDs {
		set[id] = struct{}{}
	}
	return set
}

// Judgments maps a query id to its relevant documents. It is read-only
// input supplied externally.
type Judgments map[string]RelevantSet

// AveragePrecision walks the ranking in order, takes precision at each rank
// holding a relevant document, and averages over |relevant|. Relevant
// documents never retrieved therefore depress the score. An empty relevant
// set yields 0; callers exclude such queries from MAP.
func AveragePrecision(ranking []string, relevant RelevantSet) float64 {
	if len(relevant) == 0 {
		return 0
	}
	var sum float64
	hits := 0
	for rank, docID := range ranking {
		if _, ok := relevant[docID]; ok {
			hits++
			sum += float64(hits) / float64(rank+1)
		}
	}
	return sum / float64(len(relevant))
}

// MeanAveragePrecision averages AveragePrecision across every query present
// in judgments. Queries with an empty relevant set are excluded from the
// mean rather than contributing an undefined value; a query without a
// ranking contributes 0.
func MeanAveragePrecision(rankings map[string][]string, judgments Judgments) float64 {
	var sum float64
	counted := 0
	for queryID, relevant := range judgments {
		if len(relevant) == 0 {
			continue
		}
		sum += AveragePrecision(rankings[queryID], relevant)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// QueryComparison is the per-query breakdown of a paired run.
type QueryComparison struct {
	QueryID    string  `json:"query_id"`
	BaselineAP float64 `json:"baseline_ap"`
	ExpandedAP float64 `json:"expanded_ap"`
	Delta      float64 `json:"delta"`
}

// Comparison reports MAP for the same query set with and without expansion.
type Comparison struct {
	BaselineMAP float64           `json:"baseline_map"`
	ExpandedMAP float64           `json:"expanded_map"`
	Delta       float64           `json:"delta"`
	PerQuery    []QueryComparison `json:"per_query"`
}

// Compare evaluates a baseline and an expanded run against the same
// judgments and reports the MAP delta with a per-query breakdown sorted by
// query id.
func Compare(baseline map[string][]string, expanded map[string][]string, judgments Judgments) Comparison {
	cmp := Comparison{
		BaselineMAP: MeanAveragePrecision(baseline, judgments),
		ExpandedMAP: MeanAveragePrecision(expanded, judgments),
	}
	cmp.Delta = cmp.ExpandedMAP - cmp.BaselineMAP

	for queryID, relevant := range judgments {
		if len(relevant) == 0 {
			continue
		}
		baseAP := AveragePrecision(baseline[queryID], relevant)
		expAP := AveragePrecision(expanded[queryID], relevant)
		cmp.PerQuery = append(cmp.PerQuery, QueryComparison{
			QueryID:    queryID,
			BaselineAP: baseAP,
			ExpandedAP: expAP,
			Delta:      expAP - baseAP,
		})
	}
	sort.Slice(cmp.PerQuery, func(i, j int) bool {
		return cmp.PerQuery[i].QueryID < cmp.PerQuery[j].QueryID
	})
	return cmp
}
