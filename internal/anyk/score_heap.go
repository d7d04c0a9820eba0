package anyk

// heapScorer implements the heap-driven scoring variant (spec.md §4.3,
// query_heap): every add_rsv call touches the accumulator directly and
// maintains a bounded min-heap of the current best k references, so
// the top-k is always available without a separate collection pass.
type heapScorer struct {
	acc  accumulators
	heap *topKHeap

	k    int
	need int

	lowerBound Accumulator
	// oracle is true when rewind was given a caller-supplied lower
	// bound other than the natural bound of 1; filling the heap under
	// an oracle bound means no document outside it can ever qualify,
	// so the query is done.
	oracle bool
}

func newHeapScorer(acc accumulators) *heapScorer {
	s := &heapScorer{acc: acc}
	s.heap = newTopKHeap(acc.value)
	return s
}

func (s *heapScorer) setK(k int) {
	s.k = k
	s.heap.setK(k)
}

func (s *heapScorer) rewind(lowerBound Accumulator, oracle bool) {
	s.need = s.k
	s.lowerBound = lowerBound
	s.oracle = oracle
}

// addRSV adds impact to document d's accumulator and updates the
// top-k heap accordingly. It returns true if the caller must stop
// processing the query immediately: the oracle bound has been
// satisfied and no further document can possibly qualify.
func (s *heapScorer) addRSV(d DocID, impact Accumulator) (stop bool) {
	ref := s.acc.add(d, impact)
	v := s.acc.value(ref)

	if v < s.lowerBound {
		return false
	}

	if s.need > 0 {
		// The heap isn't full yet, so this only matters if d is a new
		// entry (its previous value was below the bound).
		if v-impact < s.lowerBound {
			s.need--
			s.heap.set(s.need, ref)
			if s.need == 0 {
				s.heap.makeHeap()
				if s.oracle {
					return true
				}
				s.lowerBound = s.acc.value(s.heap.root())
			}
		}
		return false
	}

	if v == s.lowerBound {
		if s.heap.less(ref, s.heap.root()) {
			return false
		}
		s.heap.pushBack(ref)
		s.lowerBound = s.acc.value(s.heap.root())
		return false
	}

	// v > lowerBound: figure out whether d was already a heap member
	// by applying the same admission rule to its pre-impact value.
	wasMember := !(v-impact < s.lowerBound ||
		(v-impact == s.lowerBound && ref < s.heap.root()))
	if wasMember {
		slot := s.heap.find(ref)
		s.heap.promote(slot)
	} else {
		s.heap.pushBack(ref)
	}
	s.lowerBound = s.acc.value(s.heap.root())
	return false
}

// sortedRefs returns the filled suffix of the heap's array in final
// rank order (spec.md §4.4: descending value, descending AccRef on
// ties). It is idempotent; callers should only invoke it once per
// query and cache the result.
func (s *heapScorer) sortedRefs() []AccRef {
	filled := s.heap.refs[s.need:s.k]
	sortTopK(filled, s.acc.value)
	return filled
}

// filled reports how many of the k slots hold a real result.
func (s *heapScorer) filled() int {
	return s.k - s.need
}
