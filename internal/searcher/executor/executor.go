package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kestrel-search/anyk/internal/anyk"
	"github.com/kestrel-search/anyk/internal/indexer"
	"github.com/kestrel-search/anyk/internal/searcher/merger"
	"github.com/kestrel-search/anyk/internal/searcher/parser"
	"github.com/kestrel-search/anyk/internal/searcher/ranker"
)

// SearchResult is the response shape the handler and cache layers
// depend on.
type SearchResult struct {
	Query               string             `json:"query"`
	TotalHits           int                `json:"total_hits"`
	Results             []ranker.ScoredDoc `json:"results"`
	TermStats           map[string]int     `json:"term_stats"`
	AccumulatorStrategy string             `json:"accumulator_strategy"`
	EarlyExit           bool               `json:"early_exit"`
}

// Executor runs a query against one Engine's segments.
type Executor struct {
	engine   *indexer.Engine
	strategy anyk.Strategy
	logger   *slog.Logger
}

func New(engine *indexer.Engine, strategy anyk.Strategy) *Executor {
	return &Executor{
		engine:   engine,
		strategy: strategy,
		logger:   slog.Default().With("component", "query-executor"),
	}
}

func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if len(plan.Terms) == 0 {
		return &SearchResult{
			Query:               plan.RawQuery,
			Results:             []ranker.ScoredDoc{},
			TermStats:           map[string]int{},
			AccumulatorStrategy: e.strategy.String(),
		}, nil
	}
	requestK := limit
	if requestK <= 0 {
		requestK = defaultTopK
	}

	codec := e.engine.Codec()
	segments := e.engine.Segments()
	perSegment := make([][]ranker.ScoredDoc, 0, len(segments))
	termStats := make(map[string]int)
	totalHits := 0
	earlyExit := false
	for _, seg := range segments {
		results, stats, stopped, err := scoreSegment(seg, codec, e.strategy, requestK, plan)
		if err != nil {
			return nil, fmt.Errorf("scoring segment: %w", err)
		}
		for term, n := range stats {
			termStats[term] += n
		}
		totalHits += len(results)
		earlyExit = earlyExit || stopped
		if len(results) > 0 {
			perSegment = append(perSegment, results)
		}
	}

	merged := merger.Merge(perSegment, limit)
	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"segments", len(segments),
		"total_hits", totalHits,
		"results", len(merged),
	)
	return &SearchResult{
		Query:               plan.RawQuery,
		TotalHits:           totalHits,
		Results:             merged,
		TermStats:           termStats,
		AccumulatorStrategy: e.strategy.String(),
		EarlyExit:           earlyExit,
	}, nil
}
