package anyk

// Result is a single (document, score) pair produced by GetFirst/GetNext.
type Result struct {
	DocID      DocID
	PrimaryKey string
	RSV        Accumulator
}

// Processor is a query driver: it owns exactly one accumulator array,
// one bounded min-heap (or block-max collector) and one decode scratch
// buffer, dispatching to one of the four Strategy variants via a
// switch rather than interface dynamic dispatch (spec.md §9, "variant
// dispatch"). A Processor handles one query at a time; it is rewound
// between queries and must never be shared across concurrent queries.
type Processor struct {
	strategy Strategy
	codec    Codec

	documents      int
	topK           int
	preferredShift int

	acc accumulators

	heap *heapScorer     // non-nil for Strategy2DHeap / Strategy1DHeap / StrategySimple
	bm   *blockMaxScorer // non-nil for StrategyBlockMax

	primaryKeys []string
	parser      *Parser
	terms       []string

	impact  Accumulator
	scratch []uint32

	sorted      bool
	stopped     bool
	resultRefs  []AccRef
	resultIndex int
}

// NewProcessor constructs a driver for the given strategy and codec.
// Init must be called before first use.
func NewProcessor(strategy Strategy, codec Codec) *Processor {
	return &Processor{strategy: strategy, codec: codec, parser: NewParser()}
}

// Init allocates the accumulator array, the decode scratch buffer
// (sized documents + decoderSlack, matching spec.md §4.4), and the
// top-k heap, then rewinds to a fresh state.
func (p *Processor) Init(primaryKeys []string, documents int, topK int, preferredShift int) error {
	if topK < 0 || topK > MaxTopK {
		return ErrSizingOverflow
	}
	p.primaryKeys = primaryKeys
	p.documents = documents
	p.topK = topK
	p.preferredShift = preferredShift

	switch p.strategy {
	case Strategy2DHeap:
		a := &accumulator2D{}
		if err := a.init(documents, preferredShift); err != nil {
			return err
		}
		p.acc = a
		p.heap = newHeapScorer(a)
		p.heap.setK(topK)

	case Strategy1DHeap, StrategySimple:
		a := &accumulatorSimple{}
		if err := a.init(documents, preferredShift); err != nil {
			return err
		}
		p.acc = a
		p.heap = newHeapScorer(a)
		p.heap.setK(topK)

	case StrategyBlockMax:
		a := &accumulatorBlockMax{}
		if err := a.init(documents, preferredShift); err != nil {
			return err
		}
		p.acc = a
		p.bm = newBlockMaxScorer(a)
		p.bm.setK(topK)
	}

	p.scratch = make([]uint32, documents+decoderSlack)
	p.Rewind(0, 1, 0)
	return nil
}

// Rewind resets the processor for a new query. lowerBound installs the
// initial admission threshold: 1 is the natural bound that admits any
// touched document, anything else is an oracle bound that enables
// early exit (heap-driven strategies only).
func (p *Processor) Rewind(smallestPossibleRSV, lowerBound, largestPossibleRSV Accumulator) {
	p.acc.rewind()
	p.sorted = false
	p.stopped = false
	p.terms = nil
	p.impact = 0
	p.resultRefs = nil
	p.resultIndex = 0

	switch p.strategy {
	case Strategy2DHeap, Strategy1DHeap, StrategySimple:
		p.heap.rewind(lowerBound, lowerBound != 1)
	case StrategyBlockMax:
		p.bm.rewind()
	}
}

// Parse fills the processor's term list from text.
func (p *Processor) Parse(text string, mode ParserMode) {
	p.terms = p.parser.Parse(text, mode)
}

// Terms returns the most recently parsed term list.
func (p *Processor) Terms() []string {
	return p.terms
}

// DecodeAndProcess decodes count integers from src, d1-decodes them in
// place into ascending document ids, and scores each one with impact.
// It returns true only once an oracle-bounded heap fill has triggered
// cooperative early exit, in this call (the remainder of the segment
// is then discarded) or in an earlier call of the same query; the
// caller should then stop feeding further segments. A segment that is
// processed to its end returns false.
func (p *Processor) DecodeAndProcess(impact Accumulator, count int, src []byte) (done bool) {
	if p.stopped {
		return true
	}
	p.impact = impact

	dst := p.scratch[:count+decoderSlack]
	p.codec.Decode(dst, count, src)

	var id uint32
	switch p.strategy {
	case Strategy2DHeap, Strategy1DHeap, StrategySimple:
		for i := 0; i < count; i++ {
			id += dst[i]
			if p.heap.addRSV(DocID(id), impact) {
				p.stopped = true
				return true
			}
		}
	case StrategyBlockMax:
		for i := 0; i < count; i++ {
			id += dst[i]
			p.bm.addRSV(DocID(id), impact)
		}
	}
	return false
}

// Sort finalizes the top-k into rank order. It is idempotent: later
// calls before the next Rewind are no-ops.
func (p *Processor) Sort() {
	if p.sorted {
		return
	}
	switch p.strategy {
	case Strategy2DHeap, Strategy1DHeap, StrategySimple:
		p.resultRefs = p.heap.sortedRefs()
	case StrategyBlockMax:
		p.resultRefs = p.bm.sortedRefs()
	}
	p.sorted = true
}

// GetFirst sorts (if needed) and returns the top result.
func (p *Processor) GetFirst() (Result, bool) {
	p.Sort()
	p.resultIndex = 0
	return p.GetNext()
}

// GetNext returns the next result in rank order, or false once
// exhausted.
func (p *Processor) GetNext() (Result, bool) {
	if p.resultIndex >= len(p.resultRefs) {
		return Result{}, false
	}
	ref := p.resultRefs[p.resultIndex]
	p.resultIndex++

	id := p.acc.indexOf(ref)
	r := Result{DocID: id, RSV: p.acc.value(ref)}
	if int(id) < len(p.primaryKeys) {
		r.PrimaryKey = p.primaryKeys[id]
	}
	return r, true
}

// Stopped reports whether an oracle-bounded heap fill triggered
// cooperative early exit during this query (spec.md §7). False for
// a query rewound with the natural lower bound of 1, since that bound
// never admits the early-exit signal.
func (p *Processor) Stopped() bool {
	return p.stopped
}

// Filled reports how many of the k slots hold a real result, valid
// only after Sort.
func (p *Processor) Filled() int {
	switch p.strategy {
	case Strategy2DHeap, Strategy1DHeap, StrategySimple:
		return p.heap.filled()
	case StrategyBlockMax:
		return p.bm.filled()
	}
	return 0
}
