package anyk

// accumulator2D stores the array as a rectangle of width W = 2^shift
// with a dirty byte per row (spec.md §4.1 Variant A, "2d"). rewind
// only touches the dirty-flag array; a row's accumulators are zeroed
// lazily, on first touch through readWrite or add, after which the
// row's flag is cleared.
type accumulator2D struct {
	accumulator []Accumulator
	dirty       []byte

	shift int
	width int
	rows  int // number of dirty flags ("rows")
	n     int // documents actually requested
}

func (a *accumulator2D) init(n int, preferredShift int) error {
	if n < 0 || n > MaxDocuments {
		return ErrSizingOverflow
	}
	a.n = n

	if preferredShift >= 1 {
		a.shift = preferredShift
	} else {
		a.shift = defaultShift(n)
	}
	a.width = 1 << uint(a.shift)

	a.rows = (n + a.width - 1) / a.width
	allocated := a.width * a.rows

	a.accumulator = make([]Accumulator, allocated)
	a.dirty = make([]byte, a.rows)

	a.rewind()
	return nil
}

func (a *accumulator2D) whichRow(i DocID) int {
	return int(i) >> uint(a.shift)
}

func (a *accumulator2D) get(i DocID) Accumulator {
	if a.dirty[a.whichRow(i)] != 0 {
		return 0
	}
	return a.accumulator[i]
}

func (a *accumulator2D) readWrite(i DocID) AccRef {
	row := a.whichRow(i)
	if a.dirty[row] != 0 {
		start := row * a.width
		clear(a.accumulator[start : start+a.width])
		a.dirty[row] = 0
	}
	return AccRef(i)
}

func (a *accumulator2D) add(i DocID, v Accumulator) AccRef {
	ref := a.readWrite(i)
	a.accumulator[i] += v
	return ref
}

func (a *accumulator2D) value(ref AccRef) Accumulator {
	return a.accumulator[ref.DocID()]
}

func (a *accumulator2D) setValue(ref AccRef, v Accumulator) {
	a.accumulator[ref.DocID()] = v
}

func (a *accumulator2D) indexOf(ref AccRef) DocID {
	return ref.DocID()
}

func (a *accumulator2D) size() int {
	return a.n
}

func (a *accumulator2D) rewind() {
	for i := range a.dirty {
		a.dirty[i] = 0xFF
	}
}
