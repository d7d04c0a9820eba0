package anyk

import "testing"

// TestHeapScorerCanonicalSequence reproduces the canonical add_rsv
// sequence (2,10) (3,20) (2,2) (1,1) (1,14) against k=2 and confirms
// the final rank order is doc 3 (20) then doc 1 (15), with doc 2 (12)
// excluded.
func TestHeapScorerCanonicalSequence(t *testing.T) {
	acc := &accumulatorSimple{}
	if err := acc.init(16, 0); err != nil {
		t.Fatalf("init: %v", err)
	}
	s := newHeapScorer(acc)
	s.setK(2)
	s.rewind(1, false)

	type step struct {
		doc    DocID
		impact Accumulator
	}
	for _, st := range []step{{2, 10}, {3, 20}, {2, 2}, {1, 1}, {1, 14}} {
		if s.addRSV(st.doc, st.impact) {
			t.Fatalf("addRSV(%d, %d) signalled early exit unexpectedly", st.doc, st.impact)
		}
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

// TestHeapScorerOracleEarlyExit confirms that once the heap fills
// under an oracle lower bound (!= 1), addRSV signals the caller to
// stop immediately.
func TestHeapScorerOracleEarlyExit(t *testing.T) {
	acc := &accumulatorSimple{}
	if err := acc.init(16, 0); err != nil {
		t.Fatalf("init: %v", err)
	}
	s := newHeapScorer(acc)
	s.setK(2)
	s.rewind(5, true)

	if s.addRSV(1, 10) {
		t.Fatal("addRSV signalled stop before the heap filled")
	}
	if stop := s.addRSV(2, 10); !stop {
		t.Fatal("addRSV did not signal stop once the oracle-bounded heap filled")
	}
}

// TestHeapScorerReScoredTieLoserLaterQualifies covers a document that
// ties the heap's lone bottom slot, loses the address tie-break (so it
// is never admitted), and is later re-scored by a further impact
// segment past the current bound. addRSV must treat it as a fresh
// entrant rather than mistaking it for an already-heaped member (which
// would look up a heap slot that doesn't exist and panic).
func TestHeapScorerReScoredTieLoserLaterQualifies(t *testing.T) {
	acc := &accumulatorSimple{}
	if err := acc.init(16, 0); err != nil {
		t.Fatalf("init: %v", err)
	}
	s := newHeapScorer(acc)
	s.setK(1)
	s.rewind(1, false)

	if s.addRSV(5, 3) {
		t.Fatal("addRSV(5, 3) signalled early exit unexpectedly")
	}
	if s.addRSV(2, 3) {
		t.Fatal("addRSV(2, 3) signalled early exit unexpectedly")
	}
	if s.filled() != 1 || acc.indexOf(s.heap.root()) != 5 {
		t.Fatalf("doc 2's tie at address 2 < 5 should lose; root = %d, filled = %d", acc.indexOf(s.heap.root()), s.filled())
	}

	if s.addRSV(2, 5) {
		t.Fatal("addRSV(2, 5) signalled early exit unexpectedly")
	}

	refs := s.sortedRefs()
	if len(refs) != 1 {
		t.Fatalf("len(sortedRefs) = %d, want 1", len(refs))
	}
	if got := acc.indexOf(refs[0]); got != 2 {
		t.Errorf("winner doc = %d, want 2", got)
	}
	if got := acc.value(refs[0]); got != 8 {
		t.Errorf("winner rsv = %d, want 8", got)
	}
}

func TestHeapScorerTieBreakOnEqualFinalScores(t *testing.T) {
	acc := &accumulatorSimple{}
	if err := acc.init(16, 0); err != nil {
		t.Fatalf("init: %v", err)
	}
	s := newHeapScorer(acc)
	s.setK(10)
	s.rewind(1, false)

	for doc := DocID(1); doc <= 6; doc++ {
		if s.addRSV(doc, 1) {
			t.Fatalf("addRSV(%d) signalled early exit unexpectedly", doc)
		}
	}

	refs := s.sortedRefs()
	if len(refs) != 6 {
		t.Fatalf("len(sortedRefs) = %d, want 6", len(refs))
	}
	want := []DocID{6, 5, 4, 3, 2, 1}
	for i, w := range want {
		if got := acc.indexOf(refs[i]); got != w {
			t.Errorf("refs[%d] doc = %d, want %d", i, got, w)
		}
	}
}
