package executor

import (
	"fmt"

	"github.com/kestrel-search/anyk/internal/anyk"
	"github.com/kestrel-search/anyk/internal/index"
	"github.com/kestrel-search/anyk/internal/searcher/parser"
	"github.com/kestrel-search/anyk/internal/searcher/ranker"
)

// defaultTopK is the request size handed to Init when a caller asks
// for an unbounded number of results.
const defaultTopK = 10

// decodedSegment is one term's impact segment after codec decoding and
// delta reconstruction: an ascending list of absolute document ids all
// carrying the same impact.
type decodedSegment struct {
	impact uint32
	ids    []anyk.DocID
}

// scoreSegment resolves plan against one index segment and drives one
// anyk.Processor over the result. AND intersection and NOT exclusion
// are resolved at the posting-list level, before the processor ever
// sees a document — every term's postings are decoded, filtered
// against the query's boolean structure, and re-encoded before being
// handed to DecodeAndProcess — mirroring how the teacher's BM25
// executor filtered postings ahead of ranking rather than after it.
func scoreSegment(r *index.Reader, codec anyk.Codec, strategy anyk.Strategy, requestK int, plan *parser.QueryPlan) ([]ranker.ScoredDoc, map[string]int, bool, error) {
	docCount := r.DocCount()
	if docCount == 0 || len(plan.Terms) == 0 {
		return nil, nil, false, nil
	}

	termStats := make(map[string]int)
	termSegments := make(map[string][]decodedSegment, len(plan.Terms))
	for _, term := range plan.Terms {
		postings, ok, err := r.Term(term)
		if err != nil {
			return nil, nil, false, fmt.Errorf("reading postings for %q: %w", term, err)
		}
		if !ok {
			continue
		}
		termStats[term] = postings.DocFrequency
		termSegments[term] = decodeSegments(postings, codec)
	}
	if len(termSegments) == 0 {
		return nil, termStats, false, nil
	}
	if plan.Type == parser.QueryAND && len(termSegments) < len(plan.Terms) {
		// at least one AND term never appears in this segment, so no
		// document here can satisfy the query
		return nil, termStats, false, nil
	}

	var filterSet map[anyk.DocID]struct{}
	if plan.Type == parser.QueryAND && len(plan.Terms) > 1 {
		for _, term := range plan.Terms {
			set := idSet(termSegments[term])
			if filterSet == nil {
				filterSet = set
				continue
			}
			for id := range filterSet {
				if _, in := set[id]; !in {
					delete(filterSet, id)
				}
			}
		}
		if len(filterSet) == 0 {
			return nil, termStats, false, nil
		}
	}

	var excludeSet map[anyk.DocID]struct{}
	if len(plan.ExcludeTerms) > 0 {
		excludeSet = make(map[anyk.DocID]struct{})
		for _, term := range plan.ExcludeTerms {
			postings, ok, err := r.Term(term)
			if err != nil {
				return nil, nil, false, fmt.Errorf("reading exclude postings for %q: %w", term, err)
			}
			if !ok {
				continue
			}
			for _, seg := range decodeSegments(postings, codec) {
				for _, id := range seg.ids {
					excludeSet[id] = struct{}{}
				}
			}
		}
	}

	p := anyk.NewProcessor(strategy, codec)
	if err := p.Init(r.PrimaryKeys(), docCount, requestK, 0); err != nil {
		return nil, nil, false, fmt.Errorf("initializing processor: %w", err)
	}
	p.Rewind(0, 1, 0)

	for _, term := range plan.Terms {
		segments, ok := termSegments[term]
		if !ok {
			continue
		}
		for _, seg := range segments {
			ids := seg.ids
			if filterSet != nil || excludeSet != nil {
				ids = filterIDs(seg.ids, filterSet, excludeSet)
			}
			if len(ids) == 0 {
				continue
			}
			payload, n := encodeDeltas(codec, ids)
			if n == 0 {
				return nil, nil, false, anyk.ErrCodecOverflow
			}
			if p.DecodeAndProcess(anyk.Accumulator(seg.impact), len(ids), payload[:n]) {
				break
			}
		}
	}

	var results []ranker.ScoredDoc
	for res, ok := p.GetFirst(); ok; res, ok = p.GetNext() {
		results = append(results, ranker.ScoredDoc{DocID: res.PrimaryKey, Score: float64(res.RSV)})
	}
	return results, termStats, p.Stopped(), nil
}

// decodeSegments codec-decodes and delta-reconstructs every raw
// segment in postings, preserving each segment's impact grouping.
func decodeSegments(postings index.Postings, codec anyk.Codec) []decodedSegment {
	const decodeSlack = 64 // mirrors the driver's own decoder padding allowance
	out := make([]decodedSegment, 0, len(postings.Segments))
	for _, seg := range postings.Segments {
		dst := make([]uint32, seg.Count+decodeSlack)
		codec.Decode(dst, seg.Count, seg.Data)
		dst = dst[:seg.Count]
		ids := make([]anyk.DocID, seg.Count)
		var id uint32
		for i, delta := range dst {
			id += delta
			ids[i] = id
		}
		out = append(out, decodedSegment{impact: seg.Impact, ids: ids})
	}
	return out
}

func idSet(segments []decodedSegment) map[anyk.DocID]struct{} {
	set := make(map[anyk.DocID]struct{})
	for _, seg := range segments {
		for _, id := range seg.ids {
			set[id] = struct{}{}
		}
	}
	return set
}

// filterIDs keeps only ids present in filterSet (when non-nil) and
// absent from excludeSet (when non-nil), preserving ascending order.
func filterIDs(ids []anyk.DocID, filterSet, excludeSet map[anyk.DocID]struct{}) []anyk.DocID {
	kept := make([]anyk.DocID, 0, len(ids))
	for _, id := range ids {
		if filterSet != nil {
			if _, in := filterSet[id]; !in {
				continue
			}
		}
		if excludeSet != nil {
			if _, excluded := excludeSet[id]; excluded {
				continue
			}
		}
		kept = append(kept, id)
	}
	return kept
}

// encodeDeltas d1-deltas ascending ids and codec-encodes them into a
// freshly sized buffer, mirroring index.Writer's own postings framing.
func encodeDeltas(codec anyk.Codec, ids []anyk.DocID) ([]byte, int) {
	deltas := make([]uint32, len(ids))
	var prev uint32
	for i, id := range ids {
		deltas[i] = id - prev
		prev = id
	}
	dst := make([]byte, len(deltas)*5) // worst-case var-byte width
	n := codec.Encode(dst, deltas)
	return dst, n
}
