package anyk

// AccRef is a reference into an accumulator array. It substitutes for
// the original implementation's raw pointer into the accumulator slice
// (spec.md §9 design note: "an index newtype... comparisons on AccRef
// substitute for pointer comparisons"). Across all three accumulator
// variants an AccRef's numeric value equals the document id it refers
// to, so ordering AccRefs is equivalent to ordering addresses, which
// is what the heap and the final sort's tie-break rule require.
type AccRef uint32

// DocID returns the document id this reference points at.
func (r AccRef) DocID() DocID {
	return DocID(r)
}
