package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrel-search/anyk/internal/anyk"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keys := []string{"alpha", "bravo", "charlie", "delta"}
	terms := []TermPostings{
		{
			Term: "quick",
			Segments: []ImpactSegment{
				{Impact: 20, DocIDs: []uint32{1, 3}},
				{Impact: 5, DocIDs: []uint32{0, 2}},
			},
		},
		{
			Term: "fox",
			Segments: []ImpactSegment{
				{Impact: 9, DocIDs: []uint32{0, 1, 2, 3}},
			},
		},
	}

	w := NewWriter(dir, anyk.NoneCodec{})
	path, err := w.Write("seg0", keys, terms)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Write path = %q, want under %q", path, dir)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	if r.DocCount() != len(keys) {
		t.Errorf("DocCount() = %d, want %d", r.DocCount(), len(keys))
	}
	for i, k := range keys {
		if got := r.PrimaryKey(anyk.DocID(i)); got != k {
			t.Errorf("PrimaryKey(%d) = %q, want %q", i, got, k)
		}
	}

	quick, ok, err := r.Term("quick")
	if err != nil {
		t.Fatalf("Term(quick): %v", err)
	}
	if !ok {
		t.Fatal("Term(quick) not found")
	}
	if quick.DocFrequency != 4 {
		t.Errorf("quick.DocFrequency = %d, want 4", quick.DocFrequency)
	}
	if len(quick.Segments) != 2 {
		t.Fatalf("quick has %d segments, want 2", len(quick.Segments))
	}
	if quick.Segments[0].Impact != 20 || quick.Segments[0].Count != 2 {
		t.Errorf("quick.Segments[0] = %+v, want impact 20 count 2", quick.Segments[0])
	}

	var codec anyk.NoneCodec
	dst := make([]uint32, quick.Segments[0].Count)
	codec.Decode(dst, quick.Segments[0].Count, quick.Segments[0].Data)
	id := uint32(0)
	got := make([]uint32, len(dst))
	for i, d := range dst {
		id += d
		got[i] = id
	}
	want := []uint32{1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("quick high-impact segment docs = %v, want %v", got, want)
		}
	}

	_, ok, err = r.Term("missing")
	if err != nil {
		t.Fatalf("Term(missing): %v", err)
	}
	if ok {
		t.Error("Term(missing) unexpectedly found")
	}
}

func TestWriteThenReadEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, anyk.NoneCodec{})
	path, err := w.Write("empty", nil, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()
	if r.DocCount() != 0 {
		t.Errorf("DocCount() = %d, want 0", r.DocCount())
	}
	if _, ok, _ := r.Term("anything"); ok {
		t.Error("Term lookup in empty index unexpectedly found a match")
	}
}

func TestOpenReaderRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, anyk.NoneCodec{})
	path, err := w.Write("seg0", []string{"a"}, nil)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	corrupted := path + ".bad"
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[0] ^= 0xff
	if err := os.WriteFile(corrupted, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := OpenReader(corrupted); err == nil {
		t.Fatal("expected OpenReader to reject corrupted magic bytes")
	}
}
