package anyk

// accumulators is the common contract satisfied by the three
// accumulator-array variants (spec.md §4.1). Reading an index that has
// not been written since the last rewind must yield 0.
type accumulators interface {
	// init configures the array for n documents. preferredShift, if >=
	// 1, overrides the default width/shift selection.
	init(n int, preferredShift int) error
	// rewind logically zeros every entry. Variants that support it do
	// this in sublinear-of-n time.
	rewind()
	// get returns the current value at i without creating state.
	get(i DocID) Accumulator
	// readWrite materializes accumulator i (e.g. clearing its page on
	// first touch since the last rewind) and returns a reference to it.
	// Reading the returned reference before any add/setValue yields 0.
	readWrite(i DocID) AccRef
	// add increments accumulator i by v, updating any auxiliary
	// book-keeping (e.g. a block maximum) the variant maintains, and
	// returns a reference to the (now updated) accumulator.
	add(i DocID, v Accumulator) AccRef
	// value dereferences ref, valid only once its index has been
	// materialized via readWrite or add since the last rewind.
	value(ref AccRef) Accumulator
	// setValue writes through ref directly (no addition).
	setValue(ref AccRef, v Accumulator)
	// indexOf is the inverse of indexing: indexOf(readWrite(i)) == i.
	indexOf(ref AccRef) DocID
	// size returns the number of documents the array was initialised for.
	size() int
}

// floorLog2 returns floor(log2(n)) for n >= 1, and 0 for n == 0.
func floorLog2(n int) int {
	if n <= 1 {
		return 0
	}
	shift := 0
	for n > 1 {
		n >>= 1
		shift++
	}
	return shift
}

// isqrt returns floor(sqrt(n)) using integer arithmetic only, so the
// page-width selection is deterministic and does not depend on
// floating-point rounding behavior.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// defaultShift computes floor(log2(sqrt(n))), the default page/block
// shift used by the 2d and block-max variants when no preferred shift
// is supplied.
func defaultShift(n int) int {
	return floorLog2(isqrt(n))
}
