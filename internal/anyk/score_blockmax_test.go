package anyk

import "testing"

// TestBlockMaxScorerCanonicalSequence reproduces the same canonical
// add_rsv sequence as the heap variant and confirms it collects the
// identical top-k at sort time (spec.md §8 scenario 2).
func TestBlockMaxScorerCanonicalSequence(t *testing.T) {
	acc := &accumulatorBlockMax{}
	if err := acc.init(16, 0); err != nil {
		t.Fatalf("init: %v", err)
	}
	s := newBlockMaxScorer(acc)
	s.setK(2)
	s.rewind()

	type step struct {
		doc    DocID
		impact Accumulator
	}
	for _, st := range []step{{2, 10}, {3, 20}, {2, 2}, {1, 1}, {1, 14}} {
		s.addRSV(st.doc, st.impact)
	}

	refs := s.sortedRefs()
	if len(refs) != 2 {
		t.Fatalf("len(sortedRefs) = %d, want 2", len(refs))
	}
	if got := acc.indexOf(refs[0]); got != 3 {
		t.Errorf("rank 1 doc = %d, want 3", got)
	}
	if got := acc.value(refs[0]); got != 20 {
		t.Errorf("rank 1 rsv = %d, want 20", got)
	}
	if got := acc.indexOf(refs[1]); got != 1 {
		t.Errorf("rank 2 doc = %d, want 1", got)
	}
	if got := acc.value(refs[1]); got != 15 {
		t.Errorf("rank 2 rsv = %d, want 15", got)
	}
}

func TestBlockMaxScorerSkipsColdBlocks(t *testing.T) {
	acc := &accumulatorBlockMax{}
	if err := acc.init(256, 3); err != nil { // width 8, 32 blocks
		t.Fatalf("init: %v", err)
	}
	s := newBlockMaxScorer(acc)
	s.setK(1)
	s.rewind()

	s.addRSV(200, 50)
	refs := s.sortedRefs()
	if len(refs) != 1 {
		t.Fatalf("len(sortedRefs) = %d, want 1", len(refs))
	}
	if got := acc.indexOf(refs[0]); got != 200 {
		t.Errorf("doc = %d, want 200", got)
	}
	if got := acc.value(refs[0]); got != 50 {
		t.Errorf("rsv = %d, want 50", got)
	}
}
