// Package index implements the bit-exact on-disk index format spec.md
// §6 hands to the anyk core as an opaque, offset-addressed collaborator:
// a primary-key blob, a vocabulary-triples region, a vocabulary-terms
// blob, and a postings blob the core never interprets directly.
//
// This package owns the file layout and loading; scoring and top-k
// selection live entirely in package anyk. A Reader is read-only and
// safe for concurrent use by multiple anyk.Processor instances.
package index

import "encoding/binary"

// MagicBytes identifies a valid impact-ordered index file.
const (
	MagicBytes    uint32 = 0x414e594b // "ANYK"
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 16
)

// Header is the 64-byte fixed header at the start of an index file.
// All multi-byte fields are little-endian. The postings blob's offset
// is not stored: it always begins immediately after the vocabulary
// terms blob (TermsOffset+TermsSize).
type Header struct {
	Magic       uint32
	Version     uint32
	DocCount    uint32
	TermCount   uint32
	KeysOffset  int64
	KeysSize    int64
	VocabOffset int64
	VocabSize   int64
	TermsOffset int64
	TermsSize   int64
}

// PostingsOffset returns where the postings blob begins.
func (h Header) PostingsOffset() int64 { return h.TermsOffset + h.TermsSize }

func (h Header) marshal() []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.Magic)
	binary.LittleEndian.PutUint32(b[4:8], h.Version)
	binary.LittleEndian.PutUint32(b[8:12], h.DocCount)
	binary.LittleEndian.PutUint32(b[12:16], h.TermCount)
	binary.LittleEndian.PutUint64(b[16:24], uint64(h.KeysOffset))
	binary.LittleEndian.PutUint64(b[24:32], uint64(h.KeysSize))
	binary.LittleEndian.PutUint64(b[32:40], uint64(h.VocabOffset))
	binary.LittleEndian.PutUint64(b[40:48], uint64(h.VocabSize))
	binary.LittleEndian.PutUint64(b[48:56], uint64(h.TermsOffset))
	binary.LittleEndian.PutUint64(b[56:64], uint64(h.TermsSize))
	return b
}

func unmarshalHeader(b []byte) Header {
	return Header{
		Magic:       binary.LittleEndian.Uint32(b[0:4]),
		Version:     binary.LittleEndian.Uint32(b[4:8]),
		DocCount:    binary.LittleEndian.Uint32(b[8:12]),
		TermCount:   binary.LittleEndian.Uint32(b[12:16]),
		KeysOffset:  int64(binary.LittleEndian.Uint64(b[16:24])),
		KeysSize:    int64(binary.LittleEndian.Uint64(b[24:32])),
		VocabOffset: int64(binary.LittleEndian.Uint64(b[32:40])),
		VocabSize:   int64(binary.LittleEndian.Uint64(b[40:48])),
		TermsOffset: int64(binary.LittleEndian.Uint64(b[48:56])),
		TermsSize:   int64(binary.LittleEndian.Uint64(b[56:64])),
	}
}

// vocabEntry is one of the T vocabulary-triples records: three 64-bit
// fields (term_string_offset, postings_offset, document_frequency).
type vocabEntry struct {
	TermOffset     uint64
	PostingsOffset uint64
	DocFrequency   uint64
}

const vocabEntrySize = 24

func (v vocabEntry) marshal() []byte {
	b := make([]byte, vocabEntrySize)
	binary.LittleEndian.PutUint64(b[0:8], v.TermOffset)
	binary.LittleEndian.PutUint64(b[8:16], v.PostingsOffset)
	binary.LittleEndian.PutUint64(b[16:24], v.DocFrequency)
	return b
}

func unmarshalVocabEntry(b []byte) vocabEntry {
	return vocabEntry{
		TermOffset:     binary.LittleEndian.Uint64(b[0:8]),
		PostingsOffset: binary.LittleEndian.Uint64(b[8:16]),
		DocFrequency:   binary.LittleEndian.Uint64(b[16:24]),
	}
}

// ImpactSegment is one run of the postings blob: every document in
// DocIDs (strictly ascending) carries exactly Impact in this term.
// Segments for a term are written in descending Impact order, as the
// driver requires (spec.md §4.4).
type ImpactSegment struct {
	Impact uint32
	DocIDs []uint32
}

// TermPostings is one term's complete, impact-ordered posting list,
// ready to be laid out in the postings blob.
type TermPostings struct {
	Term     string
	Segments []ImpactSegment
}

// segmentHeaderSize is the fixed per-segment prefix written before its
// codec-encoded payload: impact (uint32), doc count (uint32), and
// payload byte length (uint32). This internal postings sub-layout is
// opaque to the core (spec.md §6: "Postings blob — opaque to the
// core"); only this package and the codec it picks ever parse it.
const segmentHeaderSize = 12
