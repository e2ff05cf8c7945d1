// Package server exposes the retrieval engine over HTTP: document
// ingestion, search with optional query expansion, embedding training,
// evaluation, and index inspection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AustinPardosi/IR-System-BE/internal/analytics"
	"github.com/AustinPardosi/IR-System-BE/internal/corpus"
	"github.com/AustinPardosi/IR-System-BE/internal/engine"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/embedding"
	"github.com/AustinPardosi/IR-System-BE/internal/engine/eval"
	"github.com/AustinPardosi/IR-System-BE/internal/server/cache"
	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	apperrors "github.com/AustinPardosi/IR-System-BE/pkg/errors"
	"github.com/AustinPardosi/IR-System-BE/pkg/logger"
	"github.com/AustinPardosi/IR-System-BE/pkg/metrics"
	"github.com/AustinPardosi/IR-System-BE/pkg/tracing"
)

type Handler struct {
	engine    *engine.Engine
	cache     *cache.QueryCache
	collector *analytics.Collector
	metrics   *metrics.Metrics
	cfg       config.Config
	logger    *slog.Logger
}

func New(eng *engine.Engine, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, cfg config.Config) *Handler {
	return &Handler{
		engine:    eng,
		cache:     queryCache,
		collector: collector,
		metrics:   m,
		cfg:       cfg,
		logger:    slog.Default().With("component", "http-handler"),
	}
}

// IngestDocument handles POST /api/v1/documents.
func (h *Handler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var doc engine.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.Ingest(doc.ID, doc.Text); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.invalidateCache(r.Context())
	h.trackIndexEvent(analytics.EventIndexDoc, doc.ID, start)
	h.writeJSON(w, http.StatusCreated, map[string]string{"doc_id": doc.ID, "status": "indexed"})
}

// IngestBatch handles POST /api/v1/documents/batch.
func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var docs []engine.Document
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcomes := h.engine.IngestBatch(docs)
	h.invalidateCache(r.Context())
	for _, o := range outcomes {
		if o.OK {
			h.trackIndexEvent(analytics.EventIndexDoc, o.DocID, start)
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":    len(outcomes),
		"outcomes": outcomes,
	})
}

// UploadCorpus handles POST /api/v1/documents/upload: the body is a corpus
// file in the dotted field-marker format (.I/.T/.A/.W/.B records).
func (h *Handler) UploadCorpus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body := io.LimitReader(r.Body, h.cfg.Server.MaxUploadBytes)
	docs, err := corpus.ParseDocuments(body)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	batch := make([]engine.Document, len(docs))
	for i, d := range docs {
		batch[i] = engine.Document{ID: d.ID, Text: d.FullText()}
	}
	outcomes := h.engine.IngestBatch(batch)
	h.invalidateCache(r.Context())
	indexed := 0
	for _, o := range outcomes {
		if o.OK {
			indexed++
			h.trackIndexEvent(analytics.EventIndexDoc, o.DocID, start)
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"parsed":   len(docs),
		"indexed":  indexed,
		"outcomes": outcomes,
	})
}

// RemoveDocument handles DELETE /api/v1/documents/{id}.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	docID := r.PathValue("id")
	if err := h.engine.Remove(docID); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.invalidateCache(r.Context())
	h.trackIndexEvent(analytics.EventRemoveDoc, docID, start)
	h.writeJSON(w, http.StatusOK, map[string]string{"doc_id": docID, "status": "removed"})
}

// Search handles GET /api/v1/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	opt, err := h.parseQueryOptions(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result *engine.QueryResult
	cacheHit := false
	execute := func() (*engine.QueryResult, error) {
		_, span := tracing.StartChildSpan(ctx, "engine.query")
		defer span.End()
		res, qerr := h.engine.Query(query, opt)
		if qerr == nil {
			span.SetAttr("total_hits", res.TotalHits)
		}
		return res, qerr
	}
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, opt, execute)
	} else {
		result, err = execute()
	}
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	latencyMs := time.Since(start).Milliseconds()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	if h.metrics != nil {
		h.metrics.QueryLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		if cacheHit {
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
	}
	log.Info("search completed",
		"query", query,
		"scheme", opt.Scheme,
		"expanded", opt.Expand,
		"total_hits", result.TotalHits,
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.collector != nil {
		eventType := analytics.EventQuery
		if result.TotalHits == 0 {
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(string(eventType), analytics.QueryEvent{
			Type:       eventType,
			Query:      query,
			Scheme:     opt.Scheme,
			Expanded:   opt.Expand,
			TermsAdded: len(result.ExpandedTerms),
			TotalHits:  result.TotalHits,
			Returned:   len(result.Ranking),
			LatencyMs:  latencyMs,
			CacheHit:   cacheHit,
			Timestamp:  time.Now().UTC(),
			RequestID:  logger.RequestIDFromContext(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Train handles POST /api/v1/train. The body may override the configured
// training defaults; absent fields fall back to configuration.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	trainCfg := embedding.Config{
		Dimension:       h.cfg.Embedding.Dimension,
		Window:          h.cfg.Embedding.Window,
		MinCount:        h.cfg.Embedding.MinCount,
		Iterations:      h.cfg.Embedding.Iterations,
		NegativeSamples: h.cfg.Embedding.NegativeSamples,
		LearningRate:    h.cfg.Embedding.LearningRate,
		Seed:            h.cfg.Embedding.Seed,
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&trainCfg); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	start := time.Now()
	if err := h.engine.TrainEmbeddings(r.Context(), trainCfg); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.invalidateCache(r.Context())
	if h.collector != nil {
		h.collector.Track(string(analytics.EventTraining), analytics.IndexEvent{
			Type:      analytics.EventTraining,
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "trained",
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// EvaluateRequest carries the query set and relevance judgments for one
// evaluation run.
type EvaluateRequest struct {
	Queries   map[string]string   `json:"queries"`
	Qrels     map[string][]string `json:"qrels"`
	Scheme    string              `json:"scheme"`
	Expand    bool                `json:"expand"`
	UseIDF    *bool               `json:"use_idf"`
	Normalize *bool               `json:"normalize"`
}

// Evaluate handles POST /api/v1/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Queries) == 0 {
		h.writeError(w, http.StatusBadRequest, "queries must not be empty")
		return
	}
	judgments := make(eval.Judgments, len(req.Qrels))
	for queryID, docs := range req.Qrels {
		judgments[queryID] = eval.NewRelevantSet(docs)
	}

	opt := engine.DefaultQueryOptions()
	if req.Scheme != "" {
		opt.Scheme = req.Scheme
	}
	opt.Expand = req.Expand
	if req.UseIDF != nil {
		opt.UseIDF = *req.UseIDF
	}
	if req.Normalize != nil {
		opt.Normalize = *req.Normalize
	}

	result, err := h.engine.Evaluate(req.Queries, judgments, opt)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	if h.collector != nil {
		h.collector.Track(string(analytics.EventEvaluation), analytics.EvaluationEvent{
			Type:      analytics.EventEvaluation,
			Queries:   len(req.Queries),
			Expanded:  opt.Expand,
			MAP:       result.MAP,
			Timestamp: time.Now().UTC(),
		})
	}
	h.writeJSON(w, http.StatusOK, result)
}

// InspectIndex handles GET /api/v1/index. An optional ?term= reports that
// term's postings alongside the corpus-level counters.
func (h *Handler) InspectIndex(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.InspectIndex(r.URL.Query().Get("term"))
	h.writeJSON(w, http.StatusOK, snap)
}

// InvertedFile handles GET /api/v1/index/terms: the full term-to-postings
// mapping, sorted by term.
func (h *Handler) InvertedFile(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.InvertedFile())
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) parseQueryOptions(r *http.Request) (engine.QueryOptions, error) {
	q := r.URL.Query()
	opt := engine.DefaultQueryOptions()
	opt.Scheme = h.cfg.Retrieval.DefaultScheme
	opt.TopK = h.cfg.Retrieval.DefaultLimit

	if scheme := q.Get("scheme"); scheme != "" {
		opt.Scheme = strings.ToLower(scheme)
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return opt, errors.New("limit must be a positive integer")
		}
		if limit > h.cfg.Retrieval.MaxResults {
			limit = h.cfg.Retrieval.MaxResults
		}
		opt.TopK = limit
	}
	var err error
	if opt.Expand, err = parseBoolParam(q.Get("expand"), false); err != nil {
		return opt, errors.New("expand must be a boolean")
	}
	if opt.UseIDF, err = parseBoolParam(q.Get("idf"), true); err != nil {
		return opt, errors.New("idf must be a boolean")
	}
	if opt.Normalize, err = parseBoolParam(q.Get("normalize"), true); err != nil {
		return opt, errors.New("normalize must be a boolean")
	}
	return opt, nil
}

func parseBoolParam(raw string, fallback bool) (bool, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseBool(raw)
}

func (h *Handler) invalidateCache(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("query cache invalidation failed", "error", err)
	}
}

func (h *Handler) trackIndexEvent(eventType analytics.EventType, docID string, start time.Time) {
	if h.collector == nil {
		return
	}
	h.collector.Track(string(eventType), analytics.IndexEvent{
		Type:       eventType,
		DocumentID: docID,
		LatencyMs:  time.Since(start).Milliseconds(),
		Timestamp:  time.Now().UTC(),
	})
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
