package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"

	"github.com/kestrel-search/anyk/internal/anyk"
)

// Writer serializes a collection of TermPostings and primary keys into
// a single bit-exact index file (spec.md §6), writing to a temporary
// file and renaming into place on success (the teacher's segment
// writer does the same for its own format).
type Writer struct {
	dir   string
	codec anyk.Codec
}

// NewWriter creates a Writer that writes index files into dir, encoding
// posting-list segments with codec.
func NewWriter(dir string, codec anyk.Codec) *Writer {
	return &Writer{dir: dir, codec: codec}
}

// Write builds one index file named name.idx under the writer's
// directory. primaryKeys[i] is the external key for internal document
// id i; terms must be sorted by Term ascending so the reader's binary
// search over the vocabulary works.
func (w *Writer) Write(name string, primaryKeys []string, terms []TermPostings) (string, error) {
	sorted := append([]TermPostings(nil), terms...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Term < sorted[j].Term })

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("creating index directory: %w", err)
	}
	finalPath := filepath.Join(w.dir, name+".idx")
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp index file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(make([]byte, HeaderSize)); err != nil {
		return "", fmt.Errorf("reserving header: %w", err)
	}

	keysOffset, keysSize, err := writePrimaryKeys(f, primaryKeys)
	if err != nil {
		return "", err
	}

	termsOffset, termsSize, termOffsets, err := writeVocabTerms(f, sorted)
	if err != nil {
		return "", err
	}

	postingsOffset, _ := f.Seek(0, os.SEEK_CUR)
	vocab := make([]vocabEntry, 0, len(sorted))
	for i, t := range sorted {
		relOffset, docFreq, err := w.writePostings(f, postingsOffset, t.Segments)
		if err != nil {
			return "", fmt.Errorf("writing postings for term %q: %w", t.Term, err)
		}
		vocab = append(vocab, vocabEntry{
			TermOffset:     termOffsets[i],
			PostingsOffset: relOffset,
			DocFrequency:   docFreq,
		})
	}

	vocabOffset, _ := f.Seek(0, os.SEEK_CUR)
	var vocabBuf bytes.Buffer
	for _, v := range vocab {
		vocabBuf.Write(v.marshal())
	}
	if _, err := f.Write(vocabBuf.Bytes()); err != nil {
		return "", fmt.Errorf("writing vocabulary: %w", err)
	}
	vocabSize := int64(vocabBuf.Len())

	checksum := crc32.ChecksumIEEE(vocabBuf.Bytes())
	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], checksum)
	if _, err := f.Write(footer); err != nil {
		return "", fmt.Errorf("writing footer: %w", err)
	}

	header := Header{
		Magic:       MagicBytes,
		Version:     FormatVersion,
		DocCount:    uint32(len(primaryKeys)),
		TermCount:   uint32(len(sorted)),
		KeysOffset:  keysOffset,
		KeysSize:    keysSize,
		VocabOffset: vocabOffset,
		VocabSize:   vocabSize,
		TermsOffset: termsOffset,
		TermsSize:   termsSize,
	}
	if _, err := f.WriteAt(header.marshal(), 0); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing index file: %w", err)
	}
	f.Close()

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("renaming index file: %w", err)
	}
	return finalPath, nil
}

// writePrimaryKeys writes the packed NUL-terminated key strings
// followed by D 64-bit offsets and a trailing 64-bit D (spec.md §6).
func writePrimaryKeys(f *os.File, keys []string) (offset, size int64, err error) {
	offset, _ = f.Seek(0, os.SEEK_CUR)

	stringOffsets := make([]uint64, len(keys))
	var blob bytes.Buffer
	for i, k := range keys {
		stringOffsets[i] = uint64(blob.Len())
		blob.WriteString(k)
		blob.WriteByte(0)
	}
	if _, err = f.Write(blob.Bytes()); err != nil {
		return 0, 0, fmt.Errorf("writing primary key blob: %w", err)
	}

	tail := make([]byte, 8*len(keys)+8)
	for i, o := range stringOffsets {
		binary.LittleEndian.PutUint64(tail[i*8:i*8+8], o)
	}
	binary.LittleEndian.PutUint64(tail[8*len(keys):], uint64(len(keys)))
	if _, err = f.Write(tail); err != nil {
		return 0, 0, fmt.Errorf("writing primary key offsets: %w", err)
	}

	end, _ := f.Seek(0, os.SEEK_CUR)
	return offset, end - offset, nil
}

// writeVocabTerms writes the packed NUL-terminated term strings and
// returns each term's byte offset within that blob (for the
// vocabulary triples region, written separately).
func writeVocabTerms(f *os.File, terms []TermPostings) (offset, size int64, termOffsets []uint64, err error) {
	offset, _ = f.Seek(0, os.SEEK_CUR)

	termOffsets = make([]uint64, len(terms))
	var blob bytes.Buffer
	for i, t := range terms {
		termOffsets[i] = uint64(blob.Len())
		blob.WriteString(t.Term)
		blob.WriteByte(0)
	}
	if _, err = f.Write(blob.Bytes()); err != nil {
		return 0, 0, nil, fmt.Errorf("writing vocabulary terms blob: %w", err)
	}

	end, _ := f.Seek(0, os.SEEK_CUR)
	return offset, end - offset, termOffsets, nil
}

// writePostings appends one term's impact segments, each as a fixed
// 12-byte (impact, count, byte length) prefix followed by the codec's
// d1-encoded payload, in the descending-impact order the driver
// requires. It returns the region's offset relative to postingsBase
// (the postings blob's start) and the term's total document frequency.
func (w *Writer) writePostings(f *os.File, postingsBase int64, segments []ImpactSegment) (relOffset, docFreq uint64, err error) {
	start, _ := f.Seek(0, os.SEEK_CUR)

	for _, seg := range segments {
		deltas := make([]uint32, len(seg.DocIDs))
		prev := uint32(0)
		for i, id := range seg.DocIDs {
			deltas[i] = id - prev
			prev = id
		}
		payload := make([]byte, len(deltas)*5+segmentHeaderSize) // worst case var-byte width
		n := w.codec.Encode(payload[segmentHeaderSize:], deltas)
		if n == 0 {
			return 0, 0, anyk.ErrCodecOverflow
		}
		prefix := payload[:segmentHeaderSize]
		binary.LittleEndian.PutUint32(prefix[0:4], seg.Impact)
		binary.LittleEndian.PutUint32(prefix[4:8], uint32(len(deltas)))
		binary.LittleEndian.PutUint32(prefix[8:12], uint32(n))
		if _, err := f.Write(payload[:segmentHeaderSize+n]); err != nil {
			return 0, 0, fmt.Errorf("writing posting segment: %w", err)
		}
		docFreq += uint64(len(seg.DocIDs))
	}

	return uint64(start - postingsBase), docFreq, nil
}
