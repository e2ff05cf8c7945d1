// Package scorer ranks documents against a query by cosine similarity in
// the TF-IDF vector space. The query is weighted as a pseudo-document under
// the same scheme as the corpus.
package scorer

import (
	"math"
	"sort"

	"github.com/AustinPardosi/IR-System-BE/internal/engine/index"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/weighting"
)

// ScoredDoc is one entry of a Ranking.
type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Ranking is an ordered sequence of scored documents: descending score,
// ties broken by ascending document id.
type Ranking []ScoredDoc

// DocIDs returns the ranking's document ids in rank order.
func (r Ranking) DocIDs() []string {
	ids := make([]string, len(r))
	for i, d := range r {
		ids[i] = d.DocID
	}
	return ids
}

// Params controls one scoring run. Normalize selects cosine similarity;
// when unset the raw dot product is used. TopK <= 0 returns all matches.
type Params struct {
	Options   weighting.Options
	Normalize bool
	TopK      int
}

// DefaultParams is cosine similarity under raw TF-IDF.
func DefaultParams() Params {
	return Params{Options: weighting.DefaultOptions(), Normalize: true}
}

// Scorer executes queries against the weighted index.
type Scorer struct {
	ix      *index.Index
	weights *weighting.Engine
}

// New creates a Scorer over ix and its weighting engine.
func New(ix *index.Index, weights *weighting.Engine) *Scorer {
	return &Scorer{ix: ix, weights: weights}
}

// Score ranks every document sharing at least one term with the query.
// An empty query or a query of only out-of-vocabulary terms yields an
// empty Ranking; documents with a zero vector norm are excluded.
func (s *Scorer) Score(queryTerms []string, p Params) Ranking {
	if len(queryTerms) == 0 {
		return Ranking{}
	}

	queryFreqs := make(map[string]int, len(queryTerms))
	maxFreq := 0
	for _, term := range queryTerms {
		queryFreqs[term]++
		if queryFreqs[term] > maxFreq {
			maxFreq = queryFreqs[term]
		}
	}

	queryWeights := make(map[string]float64, len(queryFreqs))
	var queryNormSq float64
	for term, freq := range queryFreqs {
		w := weighting.TF(freq, maxFreq, p.Options.Scheme)
		if p.Options.UseIDF {
			w *= s.weights.IDF(term)
		}
		if w == 0 {
			continue
		}
		queryWeights[term] = w
		queryNormSq += w * w
	}
	if len(queryWeights) == 0 {
		return Ranking{}
	}
	queryNorm := math.Sqrt(queryNormSq)

	dot := make(map[string]float64)
	for term, qw := range queryWeights {
		idf := 1.0
		if p.Options.UseIDF {
			idf = s.weights.IDF(term)
		}
		for _, posting := range s.ix.Postings(term) {
			dw := weighting.TF(posting.Frequency, s.ix.MaxFrequency(posting.DocID), p.Options.Scheme) * idf
			dot[posting.DocID] += qw * dw
		}
	}

	ranking := make(Ranking, 0, len(dot))
	for docID, product := range dot {
		score := product
		if p.Normalize {
			docNorm := s.weights.VectorNorm(docID, p.Options)
			if docNorm == 0 {
				continue
			}
			score = product / (queryNorm * docNorm)
		}
		if score <= 0 {
			continue
		}
		ranking = append(ranking, ScoredDoc{DocID: docID, Score: score})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		return ranking[i].DocID < ranking[j].DocID
	})
	if p.TopK > 0 && len(ranking) > p.TopK {
		ranking = ranking[:p.TopK]
	}
	return ranking
}
