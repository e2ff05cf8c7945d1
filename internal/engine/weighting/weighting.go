// Package weighting computes TF-IDF term weights and per-document vector
// norms over the inverted index. Norms are cached per (document, options)
// and invalidated explicitly when a document is re-indexed or removed;
// stale norms would silently change similarity scores, so the invalidation
// contract is part of the package API.
package weighting

import (
	"math"
	"sync"

	"github.com/AustinPardosi/IR-System-BE/internal/engine/index"
)

type normKey struct {
	docID string
	opt   Options
}

// Engine computes term weights and document norms for the current index
// state. All computations are deterministic and pure given that state.
type Engine struct {
	ix    *index.Index
	mu    sync.Mutex
	norms map[normKey]float64
}

// NewEngine creates a weighting Engine over ix with an empty norm cache.
func NewEngine(ix *index.Index) *Engine {
	return &Engine{
		ix:    ix,
		norms: make(map[normKey]float64),
	}
}

// TF applies the scheme's term-frequency formula to a raw frequency.
// maxFreq is the highest raw frequency in the containing document, used
// only by the augmented variant.
func TF(rawFreq int, maxFreq int, scheme Scheme) float64 {
	if rawFreq <= 0 {
		return 0
	}
	switch scheme {
	case SchemeRaw:
		return float64(rawFreq)
	case SchemeLog:
		return 1 + math.Log(float64(rawFreq))
	case SchemeBinary:
		return 1
	case SchemeAugmented:
		if maxFreq <= 0 {
			return 0
		}
		return 0.5 + 0.5*float64(rawFreq)/float64(maxFreq)
	}
	return 0
}

// IDF returns ln(N / df(term)). Terms absent from the index contribute 0
// rather than causing a division error; an empty index likewise yields 0.
func (e *Engine) IDF(term string) float64 {
	df := e.ix.DocumentFrequency(term)
	if df == 0 {
		return 0
	}
	n := e.ix.DocumentCount()
	if n == 0 {
		return 0
	}
	return math.Log(float64(n) / float64(df))
}

// Weight returns the weight of term in docID under opt: TF(scheme) times
// IDF when opt.UseIDF is set. Always >= 0.
func (e *Engine) Weight(term string, docID string, opt Options) float64 {
	tf := TF(e.ix.TermFrequency(term, docID), e.ix.MaxFrequency(docID), opt.Scheme)
	if tf == 0 {
		return 0
	}
	if !opt.UseIDF {
		return tf
	}
	return tf * e.IDF(term)
}

// VectorNorm returns the Euclidean norm of docID's weight vector under opt.
// The result is cached until Invalidate(docID) is called.
func (e *Engine) VectorNorm(docID string, opt Options) float64 {
	key := normKey{docID: docID, opt: opt}

	e.mu.Lock()
	if norm, ok := e.norms[key]; ok {
		e.mu.Unlock()
		return norm
	}
	e.mu.Unlock()

	norm := e.computeNorm(docID, opt)

	e.mu.Lock()
	e.norms[key] = norm
	e.mu.Unlock()
	return norm
}

func (e *Engine) computeNorm(docID string, opt Options) float64 {
	freqs := e.ix.DocumentTermFreqs(docID)
	if len(freqs) == 0 {
		return 0
	}
	maxFreq := e.ix.MaxFrequency(docID)
	var sum float64
	for term, freq := range freqs {
		w := TF(freq, maxFreq, opt.Scheme)
		if opt.UseIDF {
			w *= e.IDF(term)
		}
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Invalidate drops every cached norm for docID. It must be called whenever
// docID is re-indexed or removed.
func (e *Engine) Invalidate(docID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key := range e.norms {
		if key.docID == docID {
			delete(e.norms, key)
		}
	}
}

// InvalidateAll clears the entire norm cache. Index-wide mutations such as
// bulk re-ingestion use it instead of per-document invalidation.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.norms = make(map[normKey]float64)
}

// CachedNorms reports the number of cached norm entries, for diagnostics.
func (e *Engine) CachedNorms() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.norms)
}
