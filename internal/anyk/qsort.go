package anyk

import "sort"

// sortTopK orders refs descending by value, breaking ties descending
// by AccRef: the scenario in spec.md §8 ("six results... ordered by
// descending document id") resolves a full tie in favor of the larger
// document id, the same direction the heap's own admission rule
// favors when two documents tie at the current bottom-of-heap value
// (addr(ref) >= addr(root) is required to evict the root). Matching
// both on the same rule keeps heap membership and final order
// consistent. Uses sort.SliceStable, the teacher's own preference over
// a hand-rolled sort (see e.g. internal/searcher/ranker.Rank).
func sortTopK(refs []AccRef, value func(AccRef) Accumulator) {
	sort.SliceStable(refs, func(i, j int) bool {
		vi, vj := value(refs[i]), value(refs[j])
		if vi != vj {
			return vi > vj
		}
		return refs[i] > refs[j]
	})
}
