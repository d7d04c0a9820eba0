package anyk

// accumulatorSimple is a flat accumulator array with no lazy-zero
// trick: rewind memsets the whole thing (spec.md §4.1 Variant B).
type accumulatorSimple struct {
	accumulator []Accumulator
	n           int
}

func (a *accumulatorSimple) init(n int, preferredShift int) error {
	if n < 0 || n > MaxDocuments {
		return ErrSizingOverflow
	}
	a.n = n
	a.accumulator = make([]Accumulator, n)
	return nil
}

func (a *accumulatorSimple) get(i DocID) Accumulator {
	return a.accumulator[i]
}

func (a *accumulatorSimple) readWrite(i DocID) AccRef {
	return AccRef(i)
}

func (a *accumulatorSimple) add(i DocID, v Accumulator) AccRef {
	a.accumulator[i] += v
	return AccRef(i)
}

func (a *accumulatorSimple) value(ref AccRef) Accumulator {
	return a.accumulator[ref.DocID()]
}

func (a *accumulatorSimple) setValue(ref AccRef, v Accumulator) {
	a.accumulator[ref.DocID()] = v
}

func (a *accumulatorSimple) indexOf(ref AccRef) DocID {
	return ref.DocID()
}

func (a *accumulatorSimple) size() int {
	return a.n
}

func (a *accumulatorSimple) rewind() {
	clear(a.accumulator)
}
