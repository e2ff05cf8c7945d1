package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AustinPardosi/IR-System-BE/pkg/config"
	"github.com/AustinPardosi/IR-System-BE/pkg/kafka"
)

// AggregatedStats is the rolling summary served by the analytics endpoint
// and snapshotted to PostgreSQL.
type AggregatedStats struct {
	TotalQueries     int64        `json:"total_queries"`
	ExpandedQueries  int64        `json:"expanded_queries"`
	ZeroResultCount  int64        `json:"zero_result_count"`
	TotalDocsIndexed int64        `json:"total_docs_indexed"`
	TotalDocsRemoved int64        `json:"total_docs_removed"`
	CacheHits        int64        `json:"cache_hits"`
	CacheMisses      int64        `json:"cache_misses"`
	TermsAddedTotal  int64        `json:"terms_added_total"`
	AvgLatencyMs     float64      `json:"avg_latency_ms"`
	P50LatencyMs     int64        `json:"p50_latency_ms"`
	P95LatencyMs     int64        `json:"p95_latency_ms"`
	P99LatencyMs     int64        `json:"p99_latency_ms"`
	TopQueries       []QueryCount `json:"top_queries"`
	ZeroResultTop    []QueryCount `json:"zero_result_queries"`
	LastMAP          float64      `json:"last_map"`
	LastExpandedMAP  float64      `json:"last_expanded_map"`
	QueriesPerMinute float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes analytics events from Kafka and maintains
// AggregatedStats.
type Aggregator struct {
	mu                sync.RWMutex
	totalQueries      atomic.Int64
	expandedQueries   atomic.Int64
	zeroResults       atomic.Int64
	docsIndexed       atomic.Int64
	docsRemoved       atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	termsAdded        atomic.Int64
	latencies         []int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	lastMAP           float64
	lastExpandedMAP   float64
	startTime         time.Time

	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewAggregator creates an Aggregator consuming from the given topic.
func NewAggregator(cfg config.KafkaConfig, topic string) *Aggregator {
	a := &Aggregator{
		latencies:         make([]int64, 0, 10000),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
	a.consumer = kafka.NewConsumer(cfg, topic, HandleEvent(a))
	return a
}

// Start enters the consume loop until ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) error {
	a.logger.Info("analytics aggregator starting")
	return a.consumer.Start(ctx)
}

// HandleEvent returns the Kafka handler that feeds agg. Events that fail to
// decode are logged and skipped, never retried.
func HandleEvent(agg *Aggregator) kafka.Handler {
	return func(ctx context.Context, key []byte, value []byte) error {
		switch EventType(key) {
		case EventQuery, EventZeroResult:
			event, err := kafka.Decode[QueryEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode query event", "error", err)
				return nil
			}
			agg.recordQueryEvent(event)
		case EventIndexDoc, EventRemoveDoc:
			event, err := kafka.Decode[IndexEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode index event", "error", err)
				return nil
			}
			agg.recordIndexEvent(event)
		case EventEvaluation:
			event, err := kafka.Decode[EvaluationEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode evaluation event", "error", err)
				return nil
			}
			agg.recordEvaluationEvent(event)
		default:
			agg.logger.Warn("unknown analytics event type", "key", string(key))
		}
		return nil
	}
}

func (a *Aggregator) recordQueryEvent(event QueryEvent) {
	a.totalQueries.Add(1)
	if event.Expanded {
		a.expandedQueries.Add(1)
		a.termsAdded.Add(int64(event.TermsAdded))
	}
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}
	if event.TotalHits == 0 {
		a.zeroResults.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if event.TotalHits == 0 {
		a.zeroResultQueries[event.Query]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) recordIndexEvent(event IndexEvent) {
	if event.Type == EventRemoveDoc {
		a.docsRemoved.Add(1)
		return
	}
	a.docsIndexed.Add(1)
}

func (a *Aggregator) recordEvaluationEvent(event EvaluationEvent) {
	a.mu.Lock()
	if event.Expanded {
		a.lastExpandedMAP = event.MAP
	} else {
		a.lastMAP = event.MAP
	}
	a.mu.Unlock()
}

// Stats returns a copy of the current aggregate.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalQueries:     a.totalQueries.Load(),
		ExpandedQueries:  a.expandedQueries.Load(),
		ZeroResultCount:  a.zeroResults.Load(),
		TotalDocsIndexed: a.docsIndexed.Load(),
		TotalDocsRemoved: a.docsRemoved.Load(),
		CacheHits:        a.cacheHits.Load(),
		CacheMisses:      a.cacheMisses.Load(),
		TermsAddedTotal:  a.termsAdded.Load(),
		LastMAP:          a.lastMAP,
		LastExpandedMAP:  a.lastExpandedMAP,
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultTop = topN(a.zeroResultQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
