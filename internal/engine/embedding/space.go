// Package embedding trains a term-embedding space from the normalized
// corpus with a skip-gram negative-sampling objective, and expands queries
// with the nearest terms in that space.
package embedding

import (
	"math"
	"sort"
)

// Neighbor is a term close to some anchor term in the embedding space.
type Neighbor struct {
	Term       string  `json:"term"`
	Similarity float64 `json:"similarity"`
}

// Space maps terms to fixed-dimension unit vectors. It is immutable once
// built; a corpus change requires retraining, never in-place mutation.
type Space struct {
	dim     int
	vectors map[string][]float32
	terms   []string
}

// newSpace wraps trained vectors, normalizing each to unit length so cosine
// similarity reduces to a dot product.
func newSpace(dim int, vectors map[string][]float32) *Space {
	terms := make([]string, 0, len(vectors))
	for term, vec := range vectors {
		var normSq float64
		for _, v := range vec {
			normSq += float64(v) * float64(v)
		}
		if norm := math.Sqrt(normSq); norm > 0 {
			inv := float32(1 / norm)
			for i := range vec {
				vec[i] *= inv
			}
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return &Space{dim: dim, vectors: vectors, terms: terms}
}

// Dimension returns the vector dimensionality.
func (s *Space) Dimension() int {
	return s.dim
}

// Size returns the number of embedded terms.
func (s *Space) Size() int {
	return len(s.vectors)
}

// Contains reports whether term was embedded.
func (s *Space) Contains(term string) bool {
	_, ok := s.vectors[term]
	return ok
}

// Vector returns term's unit vector.
func (s *Space) Vector(term string) ([]float32, bool) {
	vec, ok := s.vectors[term]
	return vec, ok
}

// Similarity returns the cosine similarity of two embedded terms. The second
// return value is false when either term is out of vocabulary.
func (s *Space) Similarity(a string, b string) (float64, bool) {
	va, ok := s.vectors[a]
	if !ok {
		return 0, false
	}
	vb, ok := s.vectors[b]
	if !ok {
		return 0, false
	}
	return dot(va, vb), true
}

// MostSimilar returns up to k embedded terms nearest to term, descending by
// similarity with ties broken by term order. The anchor itself is excluded.
// An out-of-vocabulary anchor yields nil.
func (s *Space) MostSimilar(term string, k int) []Neighbor {
	anchor, ok := s.vectors[term]
	if !ok || k <= 0 {
		return nil
	}
	neighbors := make([]Neighbor, 0, len(s.terms)-1)
	for _, other := range s.terms {
		if other == term {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Term:       other,
			Similarity: dot(anchor, s.vectors[other]),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].Term < neighbors[j].Term
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
