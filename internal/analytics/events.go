// Package analytics collects query and indexing events, batches them to
// Kafka, aggregates them into rolling statistics, and snapshots those
// statistics to PostgreSQL.
package analytics

import "time"

type EventType string

const (
	EventQuery      EventType = "query"
	EventZeroResult EventType = "zero_result"
	EventIndexDoc   EventType = "index_document"
	EventRemoveDoc  EventType = "remove_document"
	EventEvaluation EventType = "evaluation"
	EventTraining   EventType = "training"
)

// QueryEvent records one query execution.
type QueryEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Scheme     string    `json:"scheme"`
	Expanded   bool      `json:"expanded"`
	TermsAdded int       `json:"terms_added"`
	TotalHits  int       `json:"total_hits"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}

// IndexEvent records a document ingestion or removal.
type IndexEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	LatencyMs  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// EvaluationEvent records one evaluation run.
type EvaluationEvent struct {
	Type      EventType `json:"type"`
	Queries   int       `json:"queries"`
	Expanded  bool      `json:"expanded"`
	MAP       float64   `json:"map"`
	Timestamp time.Time `json:"timestamp"`
}
