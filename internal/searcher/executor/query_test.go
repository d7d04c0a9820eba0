package executor

import (
	"sort"
	"testing"

	"github.com/kestrel-search/anyk/internal/anyk"
	"github.com/kestrel-search/anyk/internal/index"
	"github.com/kestrel-search/anyk/internal/searcher/parser"
)

// buildSegment writes a small four-document, three-term index segment
// to a temp dir and opens it for reading, mirroring the fixture shape
// in internal/index's own round-trip test.
func buildSegment(t *testing.T) *index.Reader {
	t.Helper()
	dir := t.TempDir()
	keys := []string{"doc0", "doc1", "doc2", "doc3"}
	terms := []index.TermPostings{
		{
			Term: "quick",
			Segments: []index.ImpactSegment{
				{Impact: 9, DocIDs: []uint32{0, 1, 2, 3}},
			},
		},
		{
			Term: "fox",
			Segments: []index.ImpactSegment{
				{Impact: 5, DocIDs: []uint32{1, 3}},
			},
		},
		{
			Term: "lazy",
			Segments: []index.ImpactSegment{
				{Impact: 3, DocIDs: []uint32{2}},
			},
		},
	}

	w := index.NewWriter(dir, anyk.NoneCodec{})
	path, err := w.Write("seg0", keys, terms)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := index.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func docIDs(t *testing.T, r *index.Reader, plan *parser.QueryPlan) []string {
	t.Helper()
	results, _, _, err := scoreSegment(r, anyk.NoneCodec{}, anyk.Strategy2DHeap, 10, plan)
	if err != nil {
		t.Fatalf("scoreSegment: %v", err)
	}
	got := make([]string, len(results))
	for i, res := range results {
		got[i] = res.DocID
	}
	sort.Strings(got)
	return got
}

func TestScoreSegmentORUnion(t *testing.T) {
	r := buildSegment(t)
	plan := &parser.QueryPlan{Terms: []string{"fox", "lazy"}, Type: parser.QueryOR}

	got := docIDs(t, r, plan)
	want := []string{"doc1", "doc2", "doc3"}
	if !equalStrings(got, want) {
		t.Errorf("OR fox|lazy = %v, want %v", got, want)
	}
}

func TestScoreSegmentANDIntersection(t *testing.T) {
	r := buildSegment(t)
	plan := &parser.QueryPlan{Terms: []string{"quick", "fox"}, Type: parser.QueryAND}

	got := docIDs(t, r, plan)
	want := []string{"doc1", "doc3"}
	if !equalStrings(got, want) {
		t.Errorf("AND quick&fox = %v, want %v", got, want)
	}
}

func TestScoreSegmentANDMissingTermYieldsNothing(t *testing.T) {
	r := buildSegment(t)
	plan := &parser.QueryPlan{Terms: []string{"quick", "absent"}, Type: parser.QueryAND}

	got := docIDs(t, r, plan)
	if len(got) != 0 {
		t.Errorf("AND with an unmatched term = %v, want empty", got)
	}
}

func TestScoreSegmentNotExcludes(t *testing.T) {
	r := buildSegment(t)
	plan := &parser.QueryPlan{
		Terms:        []string{"quick"},
		Type:         parser.QueryOR,
		ExcludeTerms: []string{"lazy"},
	}

	got := docIDs(t, r, plan)
	want := []string{"doc0", "doc1", "doc3"}
	if !equalStrings(got, want) {
		t.Errorf("quick NOT lazy = %v, want %v", got, want)
	}
}

func TestScoreSegmentTermStatsCountDocFrequency(t *testing.T) {
	r := buildSegment(t)
	plan := &parser.QueryPlan{Terms: []string{"quick", "fox"}, Type: parser.QueryOR}

	_, stats, _, err := scoreSegment(r, anyk.NoneCodec{}, anyk.Strategy2DHeap, 10, plan)
	if err != nil {
		t.Fatalf("scoreSegment: %v", err)
	}
	if stats["quick"] != 4 {
		t.Errorf("quick doc frequency = %d, want 4", stats["quick"])
	}
	if stats["fox"] != 2 {
		t.Errorf("fox doc frequency = %d, want 2", stats["fox"])
	}
}

// TestScoreSegmentNaturalRewindNeverStops confirms the executor's
// fixed p.Rewind(0, 1, 0) call keeps the oracle disabled, so feeding
// terms in plan order (rather than merging into one globally
// descending impact stream) can never trip a spurious early exit.
func TestScoreSegmentNaturalRewindNeverStops(t *testing.T) {
	r := buildSegment(t)
	plan := &parser.QueryPlan{Terms: []string{"lazy", "fox", "quick"}, Type: parser.QueryOR}

	_, _, stopped, err := scoreSegment(r, anyk.NoneCodec{}, anyk.Strategy2DHeap, 10, plan)
	if err != nil {
		t.Fatalf("scoreSegment: %v", err)
	}
	if stopped {
		t.Error("scoreSegment reported early exit under the natural lower bound of 1")
	}
}

func TestScoreSegmentEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	w := index.NewWriter(dir, anyk.NoneCodec{})
	path, err := w.Write("empty", nil, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := index.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	plan := &parser.QueryPlan{Terms: []string{"quick"}, Type: parser.QueryOR}
	results, stats, stopped, err := scoreSegment(r, anyk.NoneCodec{}, anyk.Strategy2DHeap, 10, plan)
	if err != nil {
		t.Fatalf("scoreSegment: %v", err)
	}
	if results != nil || stats != nil || stopped {
		t.Errorf("empty index scoreSegment = (%v, %v, %v), want (nil, nil, false)", results, stats, stopped)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
