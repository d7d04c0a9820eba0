package indexer

import (
	"math"
	"sort"

	"github.com/kestrel-search/anyk/internal/anyk"
	"github.com/kestrel-search/anyk/internal/index"
	memindex "github.com/kestrel-search/anyk/internal/indexer/index"
)

// impactParams carries the corpus statistics an impact quantizer needs
// to convert a raw term frequency into a BM25-shaped contribution,
// mirroring ranker.RankParams but scoped to one term rather than a
// whole query.
type impactParams struct {
	totalDocs    int64
	avgDocLength float64
	scale        float64
}

// quantizeSegment converts one flush batch's term entries (teacher's
// MemoryIndex.Snapshot shape, per-document term frequency and
// position lists) into the descending-impact TermPostings the new
// on-disk writer expects. denseID maps each string document id to its
// batch-local dense id; lengths supplies each dense id's document
// length for BM25 length normalization.
func quantizeSegment(entries []memindex.TermEntry, denseID map[string]uint32, lengths []int, params impactParams) []index.TermPostings {
	terms := make([]index.TermPostings, 0, len(entries))
	for _, entry := range entries {
		docFreq := int64(len(entry.Postings))
		idf := bm25IDF(params.totalDocs, docFreq)

		byImpact := make(map[uint32][]uint32)
		for _, p := range entry.Postings {
			id, ok := denseID[p.DocID]
			if !ok {
				continue
			}
			tfNorm := bm25TFNorm(float64(p.Frequency), float64(lengths[id]), params.avgDocLength)
			impact := quantizeImpact(idf*tfNorm, params.scale)
			byImpact[impact] = append(byImpact[impact], id)
		}
		if len(byImpact) == 0 {
			continue
		}

		impacts := make([]uint32, 0, len(byImpact))
		for impact := range byImpact {
			impacts = append(impacts, impact)
		}
		sort.Slice(impacts, func(i, j int) bool { return impacts[i] > impacts[j] })

		segments := make([]index.ImpactSegment, 0, len(impacts))
		for _, impact := range impacts {
			docs := byImpact[impact]
			sort.Slice(docs, func(i, j int) bool { return docs[i] < docs[j] })
			segments = append(segments, index.ImpactSegment{Impact: impact, DocIDs: docs})
		}

		terms = append(terms, index.TermPostings{Term: entry.Term, Segments: segments})
	}
	return terms
}

// maxSingleTermImpact caps one term's quantized contribution at a
// quarter of the accumulator's range, leaving headroom for a
// multi-term query's cumulative sum to stay within Accumulator's
// width without the core needing to check for overflow (spec.md §9:
// "callers guarantee per-segment impacts and their cumulative sum fit").
const maxSingleTermImpact = uint32(anyk.MaxRSV) / 4

// quantizeImpact maps a floating-point BM25 contribution onto a
// positive integer impact; zero is reserved so every stored posting
// carries impact >= 1, letting Rewind's smallestPossibleRSV of 0
// distinguish "document has not been touched" from "document's score
// is as low as the scale allows" (spec.md §4.1).
func quantizeImpact(score, scale float64) uint32 {
	v := math.Round(score * scale)
	if v < 1 {
		return 1
	}
	if v > float64(maxSingleTermImpact) {
		return maxSingleTermImpact
	}
	return uint32(v)
}

// bm25IDF mirrors ranker.computeIDF; impacts are quantized per-term,
// per-document contributions rather than summed query scores, but the
// underlying BM25 weighting is the one the searcher already uses.
func bm25IDF(totalDocs, docFreq int64) float64 {
	numerator := float64(totalDocs) - float64(docFreq)
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

func bm25TFNorm(termFreq, docLength, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + bm25K1*(1-bm25B+bm25B*lengthRatio)
	return (termFreq * (bm25K1 + 1)) / denominator
}
