// Package engine exposes the retrieval core to its transport collaborator:
// document ingestion, embedding training, query execution with optional
// expansion, ranking evaluation, and index inspection.
//
// The engine is read-heavy. Mutations (ingest, remove, retrain) take the
// write lock; scoring, expansion, and inspection share the read lock, so
// queries never observe a half-rebuilt index or embedding space.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/AustinPardosi/IR-System-BE/internal/engine/embedding"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/eval"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/index"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/scorer"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/tokenizer"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/weighting"
	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
	"github.com/AustinPardosi/IR-System-BE/pkg/metrics"
)

// Config assembles an Engine.
type Config struct {
	Tokenizer           tokenizer.Config
	ExpansionThreshold  float64
	ExpansionMaxPerTerm int
	Metrics             *metrics.Metrics
}

// Engine is the retrieval core. All state is process-local and in-memory;
// it is rebuilt from scratch on restart.
type Engine struct {
	mu      sync.RWMutex
	norm    *tokenizer.Normalizer
	ix      *index.Index
	weights *weighting.Engine
	scorer  *scorer.Scorer
	space   *embedding.Space

	expansionThreshold  float64
	expansionMaxPerTerm int
	metrics             *metrics.Metrics
	logger              *slog.Logger
}

// New builds an Engine from cfg. Tokenizer configuration errors surface
// here, before any document can be indexed.
func New(cfg Config) (*Engine, error) {
	norm, err := tokenizer.New(cfg.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("building normalizer: %w", err)
	}
	ix := index.New(norm)
	weights := weighting.NewEngine(ix)
	if cfg.ExpansionThreshold <= 0 {
		cfg.ExpansionThreshold = 0.7
	}
	if cfg.ExpansionMaxPerTerm <= 0 {
		cfg.ExpansionMaxPerTerm = 5
	}
	return &Engine{
		norm:                norm,
		ix:                  ix,
		weights:             weights,
		scorer:              scorer.New(ix, weights),
		expansionThreshold:  cfg.ExpansionThreshold,
		expansionMaxPerTerm: cfg.ExpansionMaxPerTerm,
		metrics:             cfg.Metrics,
		logger:              slog.Default().With("component", "engine"),
	}, nil
}

// Document is one unit of ingestion.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Ingest indexes a single document, replacing any prior version of the same
// id. The norm cache is cleared wholesale because IDF couples every cached
// norm to the corpus-wide document and term frequencies.
func (e *Engine) Ingest(docID string, text string) error {
	if docID == "" {
		return apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"document id must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ix.IndexDocument(docID, text)
	e.weights.InvalidateAll()
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
		e.metrics.DocumentCount.Set(float64(e.ix.DocumentCount()))
		e.metrics.VocabularySize.Set(float64(e.ix.VocabularySize()))
	}
	e.logger.Debug("document ingested", "doc_id", docID)
	return nil
}

// IngestOutcome reports the result of one document in a batch ingestion.
type IngestOutcome struct {
	DocID string `json:"doc_id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// IngestBatch processes each document independently: one malformed document
// does not abort ingestion of the others.
func (e *Engine) IngestBatch(docs []Document) []IngestOutcome {
	outcomes := make([]IngestOutcome, 0, len(docs))
	for _, doc := range docs {
		outcome := IngestOutcome{DocID: doc.ID, OK: true}
		if err := e.Ingest(doc.ID, doc.Text); err != nil {
			outcome.OK = false
			outcome.Error = err.Error()
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Remove deletes a document from the index. Removing an unknown id is a
// NotFound error.
func (e *Engine) Remove(docID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ix.RemoveDocument(docID); err != nil {
		return err
	}
	e.weights.InvalidateAll()
	if e.metrics != nil {
		e.metrics.DocsRemovedTotal.Inc()
		e.metrics.DocumentCount.Set(float64(e.ix.DocumentCount()))
		e.metrics.VocabularySize.Set(float64(e.ix.VocabularySize()))
	}
	e.logger.Debug("document removed", "doc_id", docID)
	return nil
}

// TrainEmbeddings learns a new embedding space from the current corpus and
// swaps it in atomically on success. Training runs outside the engine lock
// on an immutable corpus snapshot, so queries (and expansion against the
// previous space) continue during the pass. Cancellation or failure leaves
// the previous space untouched.
func (e *Engine) TrainEmbeddings(ctx context.Context, cfg embedding.Config) error {
	e.mu.RLock()
	corpus := e.ix.TokenSequences()
	e.mu.RUnlock()

	start := time.Now()
	space, err := embedding.Train(ctx, corpus, cfg)
	if err != nil {
		if e.metrics != nil {
			outcome := "error"
			if ctx.Err() != nil {
				outcome = "cancelled"
			}
			e.metrics.TrainingRunsTotal.WithLabelValues(outcome).Inc()
		}
		return err
	}

	e.mu.Lock()
	e.space = space
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.TrainingRunsTotal.WithLabelValues("success").Inc()
		e.metrics.TrainingDuration.Observe(time.Since(start).Seconds())
	}
	e.logger.Info("embedding space trained",
		"terms", space.Size(),
		"dimension", space.Dimension(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// Trained reports whether an embedding space is available.
func (e *Engine) Trained() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.space != nil
}

// QueryOptions controls one query execution.
type QueryOptions struct {
	// Scheme names the TF variant: raw, log, binary, or augmented.
	Scheme string `json:"scheme"`
	// Expand augments the query from the embedding space before scoring.
	Expand bool `json:"expand"`
	// TopK truncates the ranking; <= 0 returns all matches.
	TopK int `json:"top_k"`
	// UseIDF multiplies TF by IDF (the reference behaviour).
	UseIDF bool `json:"use_idf"`
	// Normalize divides by vector norms (cosine); off means dot product.
	Normalize bool `json:"normalize"`
}

// DefaultQueryOptions is raw TF with IDF and cosine normalization.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{Scheme: "raw", UseIDF: true, Normalize: true}
}

// QueryResult is the outcome of one query execution.
type QueryResult struct {
	Query         string         `json:"query"`
	Terms         []string       `json:"terms"`
	ExpandedTerms []string       `json:"expanded_terms,omitempty"`
	Ranking       scorer.Ranking `json:"ranking"`
	TotalHits     int            `json:"total_hits"`
}

// Query normalizes rawText, optionally expands it, and ranks the corpus.
// An empty or out-of-vocabulary query yields an empty ranking, not an
// error; an unknown scheme name is a configuration error.
func (e *Engine) Query(rawText string, opt QueryOptions) (*QueryResult, error) {
	scheme, err := weighting.ParseScheme(opt.Scheme)
	if err != nil {
		return nil, err
	}

	terms := e.norm.Normalize(rawText)
	result := &QueryResult{Query: rawText, Terms: terms}

	e.mu.RLock()
	defer e.mu.RUnlock()

	scoringTerms := terms
	if opt.Expand && e.space != nil {
		expanded := embedding.Expand(e.space, terms, e.expansionThreshold, e.expansionMaxPerTerm)
		if len(expanded) > len(terms) {
			result.ExpandedTerms = expanded[len(terms):]
		}
		scoringTerms = expanded
		if e.metrics != nil {
			e.metrics.ExpansionTermsAdded.Observe(float64(len(expanded) - len(terms)))
		}
	}

	ranking := e.scorer.Score(scoringTerms, scorer.Params{
		Options:   weighting.Options{Scheme: scheme, UseIDF: opt.UseIDF},
		Normalize: opt.Normalize,
		TopK:      opt.TopK,
	})
	result.Ranking = ranking
	result.TotalHits = len(ranking)

	if e.metrics != nil {
		e.metrics.QueriesTotal.WithLabelValues(opt.Scheme, boolLabel(opt.Expand)).Inc()
		e.metrics.QueryResultsCount.Observe(float64(len(ranking)))
	}
	return result, nil
}

// EvaluationResult reports ranking quality for a query set. When the run
// was expanded, Comparison carries the paired baseline-versus-expanded
// breakdown and MAP refers to the expanded run.
type EvaluationResult struct {
	MAP        float64            `json:"map"`
	PerQuery   map[string]float64 `json:"per_query"`
	Comparison *eval.Comparison   `json:"comparison,omitempty"`
}

// Evaluate runs every query in querySet (query id to raw text) under opt
// and scores the rankings against judgments. Queries with an empty
// relevant set are excluded from the mean.
func (e *Engine) Evaluate(querySet map[string]string, judgments eval.Judgments, opt QueryOptions) (*EvaluationResult, error) {
	if _, err := weighting.ParseScheme(opt.Scheme); err != nil {
		return nil, err
	}

	baselineOpt := opt
	baselineOpt.Expand = false
	baselineOpt.TopK = 0

	baseline, err := e.runQuerySet(querySet, baselineOpt)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{PerQuery: make(map[string]float64)}
	if opt.Expand {
		expandedOpt := opt
		expandedOpt.TopK = 0
		expanded, err := e.runQuerySet(querySet, expandedOpt)
		if err != nil {
			return nil, err
		}
		cmp := eval.Compare(baseline, expanded, judgments)
		result.Comparison = &cmp
		result.MAP = cmp.ExpandedMAP
		for _, q := range cmp.PerQuery {
			result.PerQuery[q.QueryID] = q.ExpandedAP
		}
	} else {
		result.MAP = eval.MeanAveragePrecision(baseline, judgments)
		for queryID, relevant := range judgments {
			if len(relevant) == 0 {
				continue
			}
			result.PerQuery[queryID] = eval.AveragePrecision(baseline[queryID], relevant)
		}
	}

	if e.metrics != nil {
		e.metrics.EvaluationsTotal.Inc()
		e.metrics.LastMAPScore.WithLabelValues(boolLabel(opt.Expand)).Set(result.MAP)
	}
	return result, nil
}

func (e *Engine) runQuerySet(querySet map[string]string, opt QueryOptions) (map[string][]string, error) {
	rankings := make(map[string][]string, len(querySet))
	for queryID, rawText := range querySet {
		res, err := e.Query(rawText, opt)
		if err != nil {
			return nil, fmt.Errorf("evaluating query %q: %w", queryID, err)
		}
		rankings[queryID] = res.Ranking.DocIDs()
	}
	return rankings, nil
}

// IndexSnapshot is the read-only diagnostic view of the index.
type IndexSnapshot struct {
	VocabularySize int               `json:"vocabulary_size"`
	DocumentCount  int               `json:"document_count"`
	EmbeddedTerms  int               `json:"embedded_terms"`
	Term           string            `json:"term,omitempty"`
	Postings       index.PostingList `json:"postings,omitempty"`
}

// InspectIndex reports vocabulary size, document count, and, when term is
// non-empty, the postings list of that term after normalization.
func (e *Engine) InspectIndex(term string) *IndexSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := &IndexSnapshot{
		VocabularySize: e.ix.VocabularySize(),
		DocumentCount:  e.ix.DocumentCount(),
	}
	if e.space != nil {
		snap.EmbeddedTerms = e.space.Size()
	}
	if term != "" {
		if normalized := e.norm.Normalize(term); len(normalized) > 0 {
			snap.Term = normalized[0]
			snap.Postings = e.ix.Postings(normalized[0])
		}
	}
	return snap
}

// InvertedFile returns the full term-to-postings mapping for diagnostics.
func (e *Engine) InvertedFile() []index.TermEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ix.Snapshot()
}

// DocumentCount returns the number of indexed documents.
func (e *Engine) DocumentCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ix.DocumentCount()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
