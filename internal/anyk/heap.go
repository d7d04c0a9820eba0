package anyk

// topKHeap is a fixed-capacity array of AccRefs ordered as a min-heap
// by the comparator cmp(a, b) := (value(a), a) lexicographic (spec.md
// §4.2): the heap root is always the current top-k's weakest member,
// and AccRef ordering substitutes for the original's address
// comparison (see AccRef's doc comment).
//
// The heap does not track how many of its k slots are filled; callers
// fill refs[0:k] directly while the top-k is still being primed (no
// heap property needs to be maintained yet) and call makeHeap once all
// k slots hold a real reference.
type topKHeap struct {
	refs  []AccRef
	k     int
	value func(AccRef) Accumulator
}

func newTopKHeap(value func(AccRef) Accumulator) *topKHeap {
	return &topKHeap{value: value}
}

// setK sets the heap's capacity, (re)allocating its backing array.
func (h *topKHeap) setK(k int) {
	h.k = k
	h.refs = make([]AccRef, k)
}

// less reports whether a sorts before b under the heap's comparator.
func (h *topKHeap) less(a, b AccRef) bool {
	va, vb := h.value(a), h.value(b)
	if va != vb {
		return va < vb
	}
	return a < b
}

// set directly assigns slot i without any heap-order maintenance; used
// while priming the heap's k slots before the first makeHeap call.
func (h *topKHeap) set(i int, ref AccRef) {
	h.refs[i] = ref
}

// root returns the current minimum (the top-k's weakest member).
func (h *topKHeap) root() AccRef {
	return h.refs[0]
}

// makeHeap heapifies refs[0:k] in place after the slice is first filled.
func (h *topKHeap) makeHeap() {
	for i := h.k/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
}

// pushBack replaces the current minimum with ref and sifts it into place.
// Callers must first confirm cmp(root(), ref) < 0.
func (h *topKHeap) pushBack(ref AccRef) {
	h.refs[0] = ref
	h.siftDown(0)
}

// find returns the heap slot holding ref, or -1 if absent.
func (h *topKHeap) find(ref AccRef) int {
	for i, r := range h.refs {
		if r == ref {
			return i
		}
	}
	return -1
}

// promote re-sifts the heap after an in-place value increase at slot.
// Increasing a value can only violate the min-heap property downward
// (towards leaves), so this is a sift-down.
func (h *topKHeap) promote(slot int) {
	h.siftDown(slot)
}

func (h *topKHeap) siftDown(i int) {
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < h.k && h.less(h.refs[left], h.refs[smallest]) {
			smallest = left
		}
		if right < h.k && h.less(h.refs[right], h.refs[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.refs[i], h.refs[smallest] = h.refs[smallest], h.refs[i]
		i = smallest
	}
}
