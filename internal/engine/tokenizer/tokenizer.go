// Package tokenizer turns raw text into a sequence of normalized terms.
// It lower-cases input, splits on non-alphanumeric boundaries, removes
// stop-words, and applies a configurable stemming function.
package tokenizer

import (
	"net/http"
	"strings"
	"unicode"

	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

// Config selects the stopword list and stemming algorithm. An empty
// StopwordsFile falls back to the built-in English list; Stemmer must name
// a registered algorithm ("none" or "porter").
type Config struct {
	StopwordsFile string
	Stemmer       string
}

// Normalizer applies the full normalization pipeline. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	stopwords map[string]struct{}
	stem      StemFunc
	stemmer   string
}

// New builds a Normalizer from cfg. The stopword file is read once; an
// unknown stemmer name is a configuration error.
func New(cfg Config) (*Normalizer, error) {
	if cfg.Stemmer == "" {
		cfg.Stemmer = "porter"
	}
	stem, ok := stemmers[cfg.Stemmer]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrConfiguration, http.StatusBadRequest,
			"unknown stemmer %q", cfg.Stemmer)
	}
	stopwords, err := loadStopwords(cfg.StopwordsFile)
	if err != nil {
		return nil, err
	}
	return &Normalizer{
		stopwords: stopwords,
		stem:      stem,
		stemmer:   cfg.Stemmer,
	}, nil
}

// Normalize breaks text into lowercased, stemmed terms with stop-words
// removed. The result depends only on the input text and the Normalizer's
// configuration, so re-running it yields an identical sequence.
func (n *Normalizer) Normalize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words)/2)
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, isStop := n.stopwords[word]; isStop {
			continue
		}
		stemmed := n.stem(word)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// Stemmer returns the name of the configured stemming algorithm.
func (n *Normalizer) Stemmer() string {
	return n.stemmer
}

// StopwordCount returns the size of the loaded stopword set.
func (n *Normalizer) StopwordCount() int {
	return len(n.stopwords)
}
