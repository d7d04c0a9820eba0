package anyk

import (
	"strings"
	"testing"
)

// TestWriteRunCanonicalOutput reproduces the original run-export
// unittest: a delta-encoded run of six 1s at impact 1 across ten
// documents, and confirms the formatted TREC lines match exactly,
// including the debug "(ID:doc_id->rsv)" suffix.
func TestWriteRunCanonicalOutput(t *testing.T) {
	keys := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	p := NewProcessor(Strategy1DHeap, NoneCodec{})
	if err := p.Init(keys, 10, 10, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var codec NoneCodec
	deltas := []uint32{1, 1, 1, 1, 1, 1}
	buf := make([]byte, len(deltas)*4)
	codec.Encode(buf, deltas)
	p.DecodeAndProcess(1, len(deltas), buf)

	var out strings.Builder
	if err := WriteRun(&out, "qid", p, "unittest", true); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}

	want := "qid Q0 six 1 1 unittest(ID:6->1)\n" +
		"qid Q0 five 2 1 unittest(ID:5->1)\n" +
		"qid Q0 four 3 1 unittest(ID:4->1)\n" +
		"qid Q0 three 4 1 unittest(ID:3->1)\n" +
		"qid Q0 two 5 1 unittest(ID:2->1)\n" +
		"qid Q0 one 6 1 unittest(ID:1->1)\n"

	if out.String() != want {
		t.Errorf("WriteRun output =\n%q\nwant\n%q", out.String(), want)
	}
}

func TestWriteRunWithoutInternalIDs(t *testing.T) {
	keys := []string{"zero", "one"}
	p := NewProcessor(Strategy1DHeap, NoneCodec{})
	if err := p.Init(keys, 2, 2, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	var codec NoneCodec
	buf := make([]byte, 4)
	codec.Encode(buf, []uint32{1})
	p.DecodeAndProcess(7, 1, buf)

	var out strings.Builder
	if err := WriteRun(&out, "q1", p, "myrun", false); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	want := "q1 Q0 one 1 7 myrun\n"
	if out.String() != want {
		t.Errorf("WriteRun output = %q, want %q", out.String(), want)
	}
}
