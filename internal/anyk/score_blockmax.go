package anyk

// blockMaxScorer implements the block-max-driven scoring variant
// (spec.md §4.3, query_block_max): add_rsv does nothing but update the
// accumulator and its block maximum, and top-k extraction is deferred
// entirely to collect, which runs at sort() time and uses the block
// maxima to skip blocks that cannot possibly contain a top-k member.
type blockMaxScorer struct {
	acc *accumulatorBlockMax
	heap *topKHeap

	k    int
	need int
}

func newBlockMaxScorer(acc *accumulatorBlockMax) *blockMaxScorer {
	s := &blockMaxScorer{acc: acc}
	s.heap = newTopKHeap(acc.value)
	return s
}

func (s *blockMaxScorer) setK(k int) {
	s.k = k
	s.heap.setK(k)
}

func (s *blockMaxScorer) rewind() {
	s.need = s.k
}

func (s *blockMaxScorer) addRSV(d DocID, impact Accumulator) {
	s.acc.add(d, impact)
}

// collect scans block maxima, skipping any block whose maximum cannot
// exceed the current heap bottom, and otherwise scans that block's
// accumulators for candidates to admit into the top-k heap.
func (s *blockMaxScorer) collect() {
	var bottom Accumulator
	width := s.acc.width

	for block := 0; block < s.acc.numBlocks; block++ {
		if s.acc.blockMax[block] <= bottom {
			continue
		}
		base := block * width
		for off := 0; off < width; off++ {
			i := DocID(base + off)
			if s.acc.accumulator[i] <= bottom {
				continue
			}
			ref := AccRef(i)
			if s.need > 0 {
				s.need--
				s.heap.set(s.need, ref)
				if s.need == 0 {
					s.heap.makeHeap()
					bottom = s.acc.value(s.heap.root())
				}
			} else {
				s.heap.pushBack(ref)
				bottom = s.acc.value(s.heap.root())
			}
		}
	}
}

// sortedRefs runs collect and returns the filled suffix in final rank
// order. Like collect, it is meant to be invoked once per query; the
// driver enforces idempotency with its own sorted flag.
func (s *blockMaxScorer) sortedRefs() []AccRef {
	s.collect()
	filled := s.heap.refs[s.need:s.k]
	sortTopK(filled, s.acc.value)
	return filled
}

func (s *blockMaxScorer) filled() int {
	return s.k - s.need
}
