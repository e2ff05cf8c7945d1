// Package tracing carries lightweight request spans through contexts and
// emits them as structured slog records when a request completes. Spans
// nest: the query pipeline opens children under the HTTP root span.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey struct{}

// Span is one timed operation. A root span owns a trace id; children
// inherit it.
type Span struct {
	Name    string
	TraceID string
	Started time.Time
	Elapsed time.Duration

	mu       sync.Mutex
	attrs    []any
	children []*Span
}

// StartSpan opens a root span and stores it in the returned context.
func StartSpan(ctx context.Context, name string, traceID string) (context.Context, *Span) {
	span := &Span{Name: name, TraceID: traceID, Started: time.Now()}
	return context.WithValue(ctx, contextKey{}, span), span
}

// StartChildSpan opens a span nested under the one in ctx. Without a parent
// in ctx the child behaves as an unlinked root with an empty trace id.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	child := &Span{Name: name, Started: time.Now()}
	if parent := FromContext(ctx); parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, contextKey{}, child), child
}

// FromContext returns the innermost span in ctx, or nil.
func FromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(contextKey{}).(*Span)
	return span
}

// End stamps the span's duration. Safe to call once per span.
func (s *Span) End() {
	s.Elapsed = time.Since(s.Started)
}

// SetAttr attaches a key-value pair emitted with the span record.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, key, value)
	s.mu.Unlock()
}

// Log emits the span and its descendants as one slog record per span.
func (s *Span) Log() {
	s.log(0)
}

func (s *Span) log(depth int) {
	s.mu.Lock()
	attrs := make([]any, 0, len(s.attrs)+8)
	attrs = append(attrs,
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_ms", s.Elapsed.Milliseconds(),
		"depth", depth,
	)
	attrs = append(attrs, s.attrs...)
	children := s.children
	s.mu.Unlock()

	slog.Debug("span", attrs...)
	for _, child := range children {
		child.log(depth + 1)
	}
}
