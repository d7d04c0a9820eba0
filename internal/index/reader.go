package index

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/kestrel-search/anyk/internal/anyk"
)

// Reader opens an index file written by Writer and serves primary-key
// and postings lookups by offset. It is read-only and safe for
// concurrent use by multiple anyk.Processor instances.
type Reader struct {
	path   string
	file   *os.File
	header Header
	keys   []string
	vocab  []vocabEntry
	terms  []string
}

// OpenReader loads an index file's primary keys and vocabulary into
// memory, leaving the postings blob on disk to be read on demand.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}

	headerBytes := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header := unmarshalHeader(headerBytes)
	if header.Magic != MagicBytes {
		f.Close()
		return nil, fmt.Errorf("invalid index file: bad magic bytes %x", header.Magic)
	}
	if header.Version != FormatVersion {
		f.Close()
		return nil, fmt.Errorf("unsupported index format version %d", header.Version)
	}

	keys, err := readPrimaryKeys(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}

	terms, err := readVocabTerms(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}

	vocabBytes := make([]byte, header.VocabSize)
	if _, err := f.ReadAt(vocabBytes, header.VocabOffset); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}
	vocab := make([]vocabEntry, header.TermCount)
	for i := range vocab {
		vocab[i] = unmarshalVocabEntry(vocabBytes[i*vocabEntrySize : (i+1)*vocabEntrySize])
	}

	return &Reader{
		path:   path,
		file:   f,
		header: header,
		keys:   keys,
		vocab:  vocab,
		terms:  terms,
	}, nil
}

// Path returns the filesystem path this segment was opened from, used
// by Engine.ReloadSegments to skip segments it already has open.
func (r *Reader) Path() string {
	return r.path
}

// readPrimaryKeys parses the packed NUL-terminated key blob using the
// trailing D offsets rather than scanning for terminators, so a
// corrupt embedded NUL can't desynchronize the rest of the table.
func readPrimaryKeys(f *os.File, h Header) ([]string, error) {
	blob := make([]byte, h.KeysSize)
	if _, err := f.ReadAt(blob, h.KeysOffset); err != nil {
		return nil, fmt.Errorf("reading primary keys: %w", err)
	}
	d := binary.LittleEndian.Uint64(blob[len(blob)-8:])
	if int64(d) != int64(h.DocCount) {
		return nil, fmt.Errorf("primary key count %d does not match header doc count %d", d, h.DocCount)
	}
	offsetsStart := len(blob) - 8 - int(d)*8
	keys := make([]string, d)
	for i := uint64(0); i < d; i++ {
		start := binary.LittleEndian.Uint64(blob[offsetsStart+int(i)*8:])
		end := int(start)
		for end < offsetsStart && blob[end] != 0 {
			end++
		}
		keys[i] = string(blob[start:end])
	}
	return keys, nil
}

func readVocabTerms(f *os.File, h Header) ([]string, error) {
	blob := make([]byte, h.TermsSize)
	if _, err := f.ReadAt(blob, h.TermsOffset); err != nil {
		return nil, fmt.Errorf("reading vocabulary terms: %w", err)
	}
	terms := make([]string, h.TermCount)
	pos := 0
	for i := range terms {
		start := pos
		for pos < len(blob) && blob[pos] != 0 {
			pos++
		}
		terms[i] = string(blob[start:pos])
		pos++ // skip NUL
	}
	return terms, nil
}

// PrimaryKey returns the external key for internal document id id.
func (r *Reader) PrimaryKey(id anyk.DocID) string {
	return r.keys[id]
}

// DocCount returns the number of documents indexed.
func (r *Reader) DocCount() int {
	return int(r.header.DocCount)
}

// PrimaryKeys returns the full primary-key table, ordered by internal
// document id, ready to hand to anyk.Processor.Init.
func (r *Reader) PrimaryKeys() []string {
	return r.keys
}

// Postings holds one term's raw, still-encoded impact segments read
// from the postings blob, in the descending-impact order the driver
// requires.
type Postings struct {
	DocFrequency int
	Segments     []RawSegment
}

// RawSegment is one impact run as stored on disk: the codec-encoded,
// d1-delta payload plus the metadata needed to decode it. Impact is
// always stored as a uint32 on disk regardless of the in-memory
// anyk.Accumulator width the caller widens it to before scoring.
type RawSegment struct {
	Impact uint32
	Count  int
	Data   []byte
}

// Term looks up a term's postings by exact match via binary search
// over the in-memory vocabulary, returning ok=false if absent.
func (r *Reader) Term(term string) (Postings, bool, error) {
	idx := sort.Search(len(r.terms), func(i int) bool { return r.terms[i] >= term })
	if idx >= len(r.terms) || r.terms[idx] != term {
		return Postings{}, false, nil
	}
	entry := r.vocab[idx]
	base := r.header.PostingsOffset()

	segments := make([]RawSegment, 0)
	pos := int64(entry.PostingsOffset)
	// The vocabulary doesn't record a term's total postings byte
	// length, so segments are read one at a time until the running
	// document count reaches the recorded document frequency.
	var seen uint64
	for seen < entry.DocFrequency {
		prefix := make([]byte, segmentHeaderSize)
		if _, err := r.file.ReadAt(prefix, base+pos); err != nil {
			return Postings{}, false, fmt.Errorf("reading segment header for term %q: %w", term, err)
		}
		impact := binary.LittleEndian.Uint32(prefix[0:4])
		count := binary.LittleEndian.Uint32(prefix[4:8])
		byteLen := binary.LittleEndian.Uint32(prefix[8:12])

		data := make([]byte, byteLen)
		if _, err := r.file.ReadAt(data, base+pos+int64(segmentHeaderSize)); err != nil {
			return Postings{}, false, fmt.Errorf("reading segment payload for term %q: %w", term, err)
		}

		segments = append(segments, RawSegment{Impact: impact, Count: int(count), Data: data})
		seen += uint64(count)
		pos += int64(segmentHeaderSize) + int64(byteLen)
	}

	return Postings{DocFrequency: int(entry.DocFrequency), Segments: segments}, true, nil
}

// DocIDs decodes every segment of a term's postings with codec and
// returns the full set of document ids the term touches, regardless
// of impact. Callers that only need scoring should use Term instead;
// this is for boolean membership tests (AND intersection, NOT
// exclusion) that fall outside the impact-ordered core's contract.
func (r *Reader) DocIDs(term string, codec anyk.Codec) ([]anyk.DocID, bool, error) {
	postings, ok, err := r.Term(term)
	if err != nil || !ok {
		return nil, ok, err
	}
	const decodeSlack = 64 // mirrors the driver's own decoder padding allowance
	ids := make([]anyk.DocID, 0, postings.DocFrequency)
	for _, seg := range postings.Segments {
		dst := make([]uint32, seg.Count+decodeSlack)
		codec.Decode(dst, seg.Count, seg.Data)
		dst = dst[:seg.Count]
		var id uint32
		for _, delta := range dst {
			id += delta
			ids = append(ids, id)
		}
	}
	return ids, true, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
