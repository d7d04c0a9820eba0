// Package queryrun batches completed anytime query runs and flushes
// them to PostgreSQL for offline TREC-style evaluation of the
// accumulator strategies (latency distribution, early-exit hit rate,
// result counts) — the query-level counterpart to
// internal/analytics/aggregator's periodic stats snapshots.
package queryrun

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/kestrel-search/anyk/internal/analytics"
	"github.com/kestrel-search/anyk/pkg/postgres"
)

// Writer accumulates QueryRunEvents in memory and flushes them to the
// `query_runs` table either when the batch reaches a configurable size
// or after a time interval, whichever comes first. It requires a
// table:
//
//	CREATE TABLE query_runs (
//	    id                   BIGSERIAL PRIMARY KEY,
//	    topic_id             TEXT NOT NULL,
//	    query                TEXT NOT NULL,
//	    k                    INTEGER NOT NULL,
//	    accumulator_strategy TEXT NOT NULL,
//	    early_exit           BOOLEAN NOT NULL,
//	    latency_ms           BIGINT NOT NULL,
//	    result_count         INTEGER NOT NULL,
//	    run_at               TIMESTAMPTZ NOT NULL
//	);
type Writer struct {
	db            *postgres.Client
	mu            sync.Mutex
	buffer        []analytics.QueryRunEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
}

// NewWriter creates a Writer that flushes when the buffer reaches
// batchSize events or after flushInterval.
func NewWriter(db *postgres.Client, batchSize int, flushInterval time.Duration) *Writer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &Writer{
		db:            db,
		buffer:        make([]analytics.QueryRunEvent, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "query-run-writer"),
		done:          make(chan struct{}),
	}
}

// Start launches the background flush loop. It returns immediately;
// the loop runs until ctx is cancelled.
func (w *Writer) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.flush(ctx)
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				w.flush(flushCtx)
				cancel()
				return
			}
		}
	}()
	w.logger.Info("query-run writer started",
		"batch_size", w.batchSize,
		"flush_interval", w.flushInterval,
	)
}

// Track buffers one query run. If the buffer reaches batchSize, an
// immediate flush is triggered in the background.
func (w *Writer) Track(event analytics.QueryRunEvent) {
	w.mu.Lock()
	w.buffer = append(w.buffer, event)
	shouldFlush := len(w.buffer) >= w.batchSize
	w.mu.Unlock()

	if shouldFlush {
		go w.flush(context.Background())
	}
}

// Close waits for the background flush loop to finish.
func (w *Writer) Close() {
	<-w.done
}

func (w *Writer) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.buffer) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.buffer
	w.buffer = make([]analytics.QueryRunEvent, 0, w.batchSize)
	w.mu.Unlock()

	if writeErr := w.writeBatch(ctx, batch); writeErr != nil {
		w.logger.Error("query-run batch flush failed",
			"batch_size", len(batch),
			"error", writeErr,
		)
		w.mu.Lock()
		w.buffer = append(batch, w.buffer...)
		if len(w.buffer) > w.batchSize*3 {
			dropped := len(w.buffer) - w.batchSize*3
			w.buffer = w.buffer[:w.batchSize*3]
			w.logger.Warn("query-run buffer overflow, events dropped", "dropped", dropped)
		}
		w.mu.Unlock()
		return
	}

	w.logger.Debug("query-run batch flushed", "events", len(batch))
}

func (w *Writer) writeBatch(ctx context.Context, batch []analytics.QueryRunEvent) error {
	return w.db.InTx(ctx, func(tx *sql.Tx) error {
		const stmt = `INSERT INTO query_runs
			(topic_id, query, k, accumulator_strategy, early_exit, latency_ms, result_count, run_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		for _, e := range batch {
			if _, err := tx.ExecContext(ctx, stmt,
				e.TopicID, e.Query, e.TopK, e.AccumulatorStrategy,
				e.EarlyExit, e.LatencyMs, e.ResultCount, e.Timestamp,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
