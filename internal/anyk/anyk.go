// Package anyk implements an anytime, impact-ordered top-k query
// processor over a document-identifier inverted index: given a parsed
// query (terms with per-term impact-sorted, delta-encoded posting
// lists), it produces the top-k documents by cumulative impact score.
//
// A Processor owns exactly one accumulator array, one bounded min-heap
// and one decode scratch buffer; it is rewound between queries and is
// never shared across concurrent queries (see the package-level
// concurrency note on Processor).
package anyk

// DocID is a dense document identifier in [0, Documents).
type DocID = uint32

const (
	// MaxDocuments is the largest collection size the core supports.
	MaxDocuments = 200_000_000
	// MaxTopK is the largest top-k value the bounded heap supports.
	MaxTopK = 1_000
	// decoderSlack is the number of extra scratch slots a Codec may
	// overwrite past the requested integer count.
	decoderSlack = 64
)

// Strategy selects one of the four accumulator/heap combinations. The
// set is closed and dispatch is a switch over this tag rather than
// dynamic interface dispatch, so the hot decode loop inlines.
type Strategy int

const (
	// Strategy2DHeap pages the accumulator array and drives a bounded
	// heap directly from add_rsv on every posting.
	Strategy2DHeap Strategy = iota
	// Strategy1DHeap uses a flat accumulator array with the same
	// heap-driven scoring as Strategy2DHeap.
	Strategy1DHeap
	// StrategySimple is an alias for Strategy1DHeap kept for parity
	// with the driver surface's "simple" option name; it carries no
	// behavioral difference from Strategy1DHeap.
	StrategySimple
	// StrategyBlockMax defers top-k extraction to sort() and uses
	// block-maxima to skip blocks that cannot enter the top-k.
	StrategyBlockMax
)

// String returns the driver-surface option name for s, the inverse of
// ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case Strategy2DHeap:
		return "2d_heap"
	case Strategy1DHeap:
		return "1d_heap"
	case StrategySimple:
		return "simple"
	case StrategyBlockMax:
		return "blockmax"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a driver-surface option name (spec.md §6) to a Strategy.
func ParseStrategy(name string) (Strategy, bool) {
	switch name {
	case "2d_heap":
		return Strategy2DHeap, true
	case "1d_heap":
		return Strategy1DHeap, true
	case "simple":
		return StrategySimple, true
	case "blockmax":
		return StrategyBlockMax, true
	default:
		return 0, false
	}
}
