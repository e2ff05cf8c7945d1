package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AustinPardosi/IR-System-BE/pkg/postgres"
	"github.com/AustinPardosi/IR-System-BE/pkg/resilience"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS analytics_snapshots (
    id          BIGSERIAL PRIMARY KEY,
    data        JSONB NOT NULL,
    captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Store persists aggregated analytics snapshots in PostgreSQL. Writes go
// through a circuit breaker with retries, so a downed database degrades
// analytics persistence without affecting the query path.
type Store struct {
	db      *postgres.Client
	breaker *resilience.Breaker
	logger  *slog.Logger
}

// NewStore creates an analytics persistence store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:      db,
		breaker: resilience.NewBreaker("analytics-store", resilience.BreakerConfig{}),
		logger:  slog.Default().With("component", "analytics-store"),
	}
}

// SaveSnapshot persists a stats snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, stats AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	return s.breaker.Execute(func() error {
		return resilience.Retry(ctx, "save-analytics-snapshot", resilience.RetryConfig{}, func() error {
			return s.db.Exec(ctx,
				`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
				data, time.Now().UTC(),
			)
		})
	})
}

// LatestSnapshot returns the most recently captured snapshot.
func (s *Store) LatestSnapshot(ctx context.Context) (AggregatedStats, error) {
	var stats AggregatedStats
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC LIMIT 1`,
	).Scan(&data)
	if err != nil {
		return stats, fmt.Errorf("querying latest snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return stats, nil
}

// StartSnapshotLoop periodically persists the aggregator's stats until ctx
// is cancelled.
func (s *Store) StartSnapshotLoop(ctx context.Context, agg *Aggregator, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		if err := s.db.Exec(ctx, snapshotSchema); err != nil {
			s.logger.Error("snapshot schema setup failed", "error", err)
			return
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.logger.Error("snapshot persistence failed", "error", err)
				}
			}
		}
	}()
	s.logger.Info("snapshot loop started", "interval", interval)
}
