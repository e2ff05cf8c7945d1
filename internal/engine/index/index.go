// Package index implements the in-memory inverted index: a mapping from
// interned terms to postings lists, together with the document store and
// per-document statistics the weighting engine needs.
package index

import (
	"net/http"
	"sort"
	"sync"

	"github.com/AustinPardosi/IR-System-BE/internal/engine/tokenizer"
	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
)

// document holds everything the index owns about one indexed document.
type document struct {
	text      string
	tokens    []string
	termFreqs map[int]int
	maxFreq   int
}

// Index is the inverted index. Terms are interned to dense int ids; each
// term id maps to an insertion-ordered postings list with unique document
// ids. Indexing a document again atomically replaces its prior postings.
type Index struct {
	mu       sync.RWMutex
	norm     *tokenizer.Normalizer
	termIDs  map[string]int
	terms    []string
	postings map[int]PostingList
	docs     map[string]*document
}

// New creates an empty Index that normalizes text with norm.
func New(norm *tokenizer.Normalizer) *Index {
	return &Index{
		norm:     norm,
		termIDs:  make(map[string]int),
		postings: make(map[int]PostingList),
		docs:     make(map[string]*document),
	}
}

// IndexDocument tokenizes text and records raw term frequencies for docID.
// Any prior postings for docID are fully removed first, so re-indexing is
// idempotent. An empty document indexes legally and yields no postings.
func (ix *Index) IndexDocument(docID string, text string) {
	tokens := ix.norm.Normalize(text)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.docs[docID]; exists {
		ix.dropPostings(docID)
	}

	freqs := make(map[int]int, len(tokens))
	maxFreq := 0
	for _, term := range tokens {
		id := ix.intern(term)
		freqs[id]++
		if freqs[id] > maxFreq {
			maxFreq = freqs[id]
		}
	}
	for id, freq := range freqs {
		ix.postings[id] = append(ix.postings[id], Posting{DocID: docID, Frequency: freq})
	}
	ix.docs[docID] = &document{
		text:      text,
		tokens:    tokens,
		termFreqs: freqs,
		maxFreq:   maxFreq,
	}
}

// RemoveDocument deletes docID from every postings list it appears in and
// prunes terms left with no postings. Removing an unknown document is a
// NotFound error.
func (ix *Index) RemoveDocument(docID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.docs[docID]; !exists {
		return apperrors.Newf(apperrors.ErrNotFound, http.StatusNotFound,
			"document %q is not indexed", docID)
	}
	ix.dropPostings(docID)
	delete(ix.docs, docID)
	return nil
}

// dropPostings removes docID's postings and prunes emptied terms.
// Caller holds the write lock.
func (ix *Index) dropPostings(docID string) {
	doc := ix.docs[docID]
	for id := range doc.termFreqs {
		list := ix.postings[id]
		kept := list[:0]
		for _, p := range list {
			if p.DocID != docID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(ix.postings, id)
		} else {
			ix.postings[id] = kept
		}
	}
}

// intern returns the dense id for term, assigning one on first sight.
// Caller holds the write lock.
func (ix *Index) intern(term string) int {
	if id, ok := ix.termIDs[term]; ok {
		return id
	}
	id := len(ix.terms)
	ix.termIDs[term] = id
	ix.terms = append(ix.terms, term)
	return id
}

// Postings returns a copy of the postings list for term, or nil when the
// term is not in the vocabulary.
func (ix *Index) Postings(term string) PostingList {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.termIDs[term]
	if !ok {
		return nil
	}
	list, ok := ix.postings[id]
	if !ok {
		return nil
	}
	out := make(PostingList, len(list))
	copy(out, list)
	return out
}

// Terms returns the sorted vocabulary: every term with at least one posting.
func (ix *Index) Terms() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.postings))
	for id := range ix.postings {
		out = append(out, ix.terms[id])
	}
	sort.Strings(out)
	return out
}

// VocabularySize returns the number of terms with live postings.
func (ix *Index) VocabularySize() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.postings)
}

// DocumentCount returns the number of indexed documents.
func (ix *Index) DocumentCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// DocumentFrequency returns the number of documents containing term.
func (ix *Index) DocumentFrequency(term string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.termIDs[term]
	if !ok {
		return 0
	}
	return len(ix.postings[id])
}

// TermFrequency returns term's raw frequency in docID, or 0.
func (ix *Index) TermFrequency(term string, docID string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.termIDs[term]
	if !ok {
		return 0
	}
	doc, ok := ix.docs[docID]
	if !ok {
		return 0
	}
	return doc.termFreqs[id]
}

// DocumentTermFreqs returns docID's term-to-raw-frequency mapping, or nil
// when the document is unknown.
func (ix *Index) DocumentTermFreqs(docID string) map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[docID]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(doc.termFreqs))
	for id, freq := range doc.termFreqs {
		out[ix.terms[id]] = freq
	}
	return out
}

// MaxFrequency returns the highest raw term frequency in docID, used by the
// augmented TF scheme. Unknown or empty documents report 0.
func (ix *Index) MaxFrequency(docID string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[docID]
	if !ok {
		return 0
	}
	return doc.maxFreq
}

// TokenCount returns the number of tokens in docID after normalization.
func (ix *Index) TokenCount(docID string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[docID]
	if !ok {
		return 0
	}
	return len(doc.tokens)
}

// HasDocument reports whether docID is indexed.
func (ix *Index) HasDocument(docID string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.docs[docID]
	return ok
}

// DocumentText returns the original text of docID.
func (ix *Index) DocumentText(docID string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs[docID]
	if !ok {
		return "", false
	}
	return doc.text, true
}

// DocumentIDs returns all indexed document ids in sorted order.
func (ix *Index) DocumentIDs() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.docs))
	for id := range ix.docs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TokenSequences returns a snapshot of every document's normalized token
// sequence, keyed nondeterministically; it is the training corpus for the
// embedding space.
func (ix *Index) TokenSequences() [][]string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([][]string, 0, len(ix.docs))
	for _, doc := range ix.docs {
		tokens := make([]string, len(doc.tokens))
		copy(tokens, doc.tokens)
		out = append(out, tokens)
	}
	return out
}

// Snapshot returns the full inverted file as sorted term entries, used by
// the diagnostic inspection endpoint.
func (ix *Index) Snapshot() []TermEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	entries := make([]TermEntry, 0, len(ix.postings))
	for id, list := range ix.postings {
		postings := make(PostingList, len(list))
		copy(postings, list)
		entries = append(entries, TermEntry{
			Term:     ix.terms[id],
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}
