package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kestrel-search/anyk/internal/anyk"
	"github.com/kestrel-search/anyk/internal/indexer"
	"github.com/kestrel-search/anyk/internal/searcher/merger"
	"github.com/kestrel-search/anyk/internal/searcher/parser"
	"github.com/kestrel-search/anyk/internal/searcher/ranker"
)

// shardResult holds one shard's contribution to a query: each of its
// segments' already-scored top-k, concatenated (not yet merged), plus
// the per-term hit counts that fed them.
type shardResult struct {
	shardID   int
	results   []ranker.ScoredDoc
	termStats map[string]int
	totalHits int
	earlyExit bool
}

// ShardedExecutor runs a query against every shard's Engine in
// parallel and merges the per-shard top-k into one global top-k via
// merger.Merge.
type ShardedExecutor struct {
	engines  map[int]*indexer.Engine
	strategy anyk.Strategy
	logger   *slog.Logger
}

func NewSharded(engines map[int]*indexer.Engine, strategy anyk.Strategy) *ShardedExecutor {
	return &ShardedExecutor{
		engines:  engines,
		strategy: strategy,
		logger:   slog.Default().With("component", "sharded-executor"),
	}
}

func (se *ShardedExecutor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if len(plan.Terms) == 0 {
		return &SearchResult{
			Query:               plan.RawQuery,
			Results:             []ranker.ScoredDoc{},
			TermStats:           map[string]int{},
			AccumulatorStrategy: se.strategy.String(),
		}, nil
	}
	requestK := limit
	if requestK <= 0 {
		requestK = defaultTopK
	}

	shardResults, err := se.fanOut(plan, requestK)
	if err != nil {
		return nil, fmt.Errorf("shard fan-out: %w", err)
	}

	perShard := make([][]ranker.ScoredDoc, 0, len(shardResults))
	termStats := make(map[string]int)
	totalHits := 0
	earlyExit := false
	for _, sr := range shardResults {
		for term, n := range sr.termStats {
			termStats[term] += n
		}
		totalHits += sr.totalHits
		earlyExit = earlyExit || sr.earlyExit
		if len(sr.results) > 0 {
			perShard = append(perShard, sr.results)
		}
	}

	merged := merger.Merge(perShard, limit)
	se.logger.Info("sharded query executed",
		"query", plan.RawQuery,
		"shards_queried", len(shardResults),
		"total_hits", totalHits,
		"results", len(merged),
	)
	return &SearchResult{
		Query:               plan.RawQuery,
		TotalHits:           totalHits,
		Results:             merged,
		TermStats:           termStats,
		AccumulatorStrategy: se.strategy.String(),
		EarlyExit:           earlyExit,
	}, nil
}

func (se *ShardedExecutor) fanOut(plan *parser.QueryPlan, requestK int) ([]shardResult, error) {
	type outcome struct {
		sr  shardResult
		err error
	}
	outcomes := make([]outcome, len(se.engines))
	var wg sync.WaitGroup
	i := 0
	for shardID, engine := range se.engines {
		wg.Add(1)
		go func(idx int, sid int, eng *indexer.Engine) {
			defer wg.Done()
			sr := shardResult{shardID: sid, termStats: make(map[string]int)}
			codec := eng.Codec()
			for _, seg := range eng.Segments() {
				results, stats, stopped, err := scoreSegment(seg, codec, se.strategy, requestK, plan)
				if err != nil {
					outcomes[idx] = outcome{err: fmt.Errorf("shard %d: %w", sid, err)}
					return
				}
				for term, n := range stats {
					sr.termStats[term] += n
				}
				sr.totalHits += len(results)
				sr.earlyExit = sr.earlyExit || stopped
				sr.results = append(sr.results, results...)
			}
			outcomes[idx] = outcome{sr: sr}
		}(i, shardID, engine)
		i++
	}
	wg.Wait()

	results := make([]shardResult, 0, len(se.engines))
	for _, o := range outcomes {
		if o.err != nil {
			se.logger.Error("shard query failed", "error", o.err)
			continue
		}
		results = append(results, o.sr)
	}
	if len(results) == 0 && len(se.engines) > 0 {
		return nil, fmt.Errorf("all %d shards failed", len(se.engines))
	}
	return results, nil
}
