package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kestrel-search/anyk/internal/anyk"
	"github.com/kestrel-search/anyk/internal/index"
	memindex "github.com/kestrel-search/anyk/internal/indexer/index"
	"github.com/kestrel-search/anyk/internal/indexer/tokenizer"
	"github.com/kestrel-search/anyk/pkg/config"
)

// Engine accumulates documents in memory and periodically flushes them
// into immutable, self-contained index segments: each flush assigns
// its batch a dense document-id space, quantizes every term's BM25
// contribution into a descending-impact posting list, and hands the
// result to an index.Writer (spec.md §6). Segments are append-only and
// read-only once written; there is no in-place update.
type Engine struct {
	memIndex     *memindex.MemoryIndex
	writer       *index.Writer
	readers      []*index.Reader
	readerMu     sync.RWMutex
	cfg          config.IndexerConfig
	codec        anyk.Codec
	logger       *slog.Logger
	docLengths   map[string]int
	docLengthsMu sync.RWMutex
	totalDocs    int64
	totalTokens  int64
	flushCount   int64
}

// NewEngine creates an Engine backed by cfg.DataDir, loading any
// segments already written there.
func NewEngine(cfg config.IndexerConfig) (*Engine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index data directory: %w", err)
	}
	e := &Engine{
		memIndex:   memindex.NewMemoryIndex(),
		writer:     index.NewWriter(cfg.DataDir, anyk.VarByteCodec{}),
		codec:      anyk.VarByteCodec{},
		cfg:        cfg,
		logger:     slog.Default().With("component", "indexer"),
		docLengths: make(map[string]int),
	}
	if err := e.loadExistingSegments(); err != nil {
		return nil, fmt.Errorf("loading existing segments: %w", err)
	}
	return e, nil
}

// IndexDocument tokenizes and buffers a document in memory, triggering
// a flush once the batch reaches cfg.SegmentMaxSize.
func (e *Engine) IndexDocument(docID string, title string, body string) error {
	fullText := title + " " + body
	tokens := tokenizer.Tokenize(fullText)

	e.docLengthsMu.Lock()
	e.docLengths[docID] = len(tokens)
	e.totalDocs++
	e.totalTokens += int64(len(tokens))
	e.docLengthsMu.Unlock()

	e.memIndex.AddDocument(docID, title, body)
	e.logger.Debug("document buffered in memory",
		"doc_id", docID,
		"token_count", len(tokens),
		"mem_size", e.memIndex.Size(),
	)
	if e.memIndex.Size() >= e.cfg.SegmentMaxSize {
		e.logger.Info("memory index reached max size, flushing to disk",
			"size", e.memIndex.Size(),
			"threshold", e.cfg.SegmentMaxSize,
		)
		if err := e.Flush(); err != nil {
			return fmt.Errorf("flushing memory index: %w", err)
		}
	}
	return nil
}

// Flush quantizes the buffered batch's term impacts and writes it as a
// new segment. It is a no-op if nothing has been buffered.
func (e *Engine) Flush() error {
	snapshot := e.memIndex.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	primaryKeys, denseID := assignDenseIDs(snapshot)
	lengths := make([]int, len(primaryKeys))
	e.docLengthsMu.RLock()
	for i, key := range primaryKeys {
		lengths[i] = e.docLengths[key]
	}
	avgDocLength := e.avgDocLengthLocked()
	totalDocs := e.totalDocs
	e.docLengthsMu.RUnlock()

	terms := quantizeSegment(snapshot, denseID, lengths, impactParams{
		totalDocs:    totalDocs,
		avgDocLength: avgDocLength,
		scale:        e.cfg.ImpactScale,
	})

	e.flushCount++
	segmentName := fmt.Sprintf("seg_%06d", e.flushCount)
	path, err := e.writer.Write(segmentName, primaryKeys, terms)
	if err != nil {
		return fmt.Errorf("writing segment: %w", err)
	}

	reader, err := index.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening new segment for reading: %w", err)
	}
	e.readerMu.Lock()
	e.readers = append(e.readers, reader)
	e.readerMu.Unlock()
	e.memIndex.Reset()
	e.logger.Info("segment flushed",
		"segment", filepath.Base(path),
		"terms", len(terms),
		"docs", len(primaryKeys),
		"active_segments", len(e.readers),
	)
	return nil
}

// assignDenseIDs lays out a flush batch's documents in ascending
// string-id order so repeated flushes of the same corpus produce
// byte-identical segments.
func assignDenseIDs(snapshot []memindex.TermEntry) (primaryKeys []string, denseID map[string]uint32) {
	seen := make(map[string]struct{})
	for _, entry := range snapshot {
		for _, p := range entry.Postings {
			seen[p.DocID] = struct{}{}
		}
	}
	primaryKeys = make([]string, 0, len(seen))
	for docID := range seen {
		primaryKeys = append(primaryKeys, docID)
	}
	sort.Strings(primaryKeys)

	denseID = make(map[string]uint32, len(primaryKeys))
	for i, docID := range primaryKeys {
		denseID[docID] = uint32(i)
	}
	return primaryKeys, denseID
}

// Segments returns a snapshot of the currently open segment readers,
// safe to range over concurrently with further flushes.
func (e *Engine) Segments() []*index.Reader {
	e.readerMu.RLock()
	defer e.readerMu.RUnlock()
	out := make([]*index.Reader, len(e.readers))
	copy(out, e.readers)
	return out
}

// Codec returns the codec segments were (and will be) encoded with.
func (e *Engine) Codec() anyk.Codec {
	return e.codec
}

func (e *Engine) GetDocLength(docID string) int {
	e.docLengthsMu.RLock()
	defer e.docLengthsMu.RUnlock()
	return e.docLengths[docID]
}

func (e *Engine) GetAvgDocLength() float64 {
	e.docLengthsMu.RLock()
	defer e.docLengthsMu.RUnlock()
	return e.avgDocLengthLocked()
}

func (e *Engine) avgDocLengthLocked() float64 {
	if e.totalDocs == 0 {
		return 0
	}
	return float64(e.totalTokens) / float64(e.totalDocs)
}

func (e *Engine) GetTotalDocs() int64 {
	e.docLengthsMu.RLock()
	defer e.docLengthsMu.RUnlock()
	return e.totalDocs
}

// StartFlushLoop flushes on cfg.FlushInterval until ctx is cancelled,
// performing one final flush on shutdown.
func (e *Engine) StartFlushLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.FlushInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.logger.Info("flush loop stopping, performing final flush")
				if err := e.Flush(); err != nil {
					e.logger.Error("final flush failed", "error", err)
				}
				return
			case <-ticker.C:
				if e.memIndex.DocCount() > 0 {
					if err := e.Flush(); err != nil {
						e.logger.Error("periodic flush failed", "error", err)
					}
				}
			}
		}
	}()
}

// ReloadSegments rescans cfg.DataDir for segment files not yet opened
// by this Engine and opens them, returning the number newly loaded.
func (e *Engine) ReloadSegments() int {
	entries, err := os.ReadDir(e.cfg.DataDir)
	if err != nil {
		e.logger.Error("reload: reading data directory", "error", err)
		return 0
	}
	e.readerMu.Lock()
	defer e.readerMu.Unlock()
	known := make(map[string]struct{}, len(e.readers))
	for _, r := range e.readers {
		known[r.Path()] = struct{}{}
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".idx") {
			continue
		}
		path := filepath.Join(e.cfg.DataDir, entry.Name())
		if _, ok := known[path]; ok {
			continue
		}
		reader, err := index.OpenReader(path)
		if err != nil {
			e.logger.Error("reload: opening segment", "segment", entry.Name(), "error", err)
			continue
		}
		e.readers = append(e.readers, reader)
		loaded++
	}
	if loaded > 0 {
		e.logger.Info("reload complete", "segments_loaded", loaded, "active_segments", len(e.readers))
	}
	return loaded
}

func (e *Engine) Close() error {
	if err := e.Flush(); err != nil {
		e.logger.Error("final flush on close failed", "error", err)
	}
	e.readerMu.Lock()
	defer e.readerMu.Unlock()
	for _, reader := range e.readers {
		if err := reader.Close(); err != nil {
			e.logger.Error("closing segment reader", "error", err)
		}
	}
	e.readers = nil
	return nil
}

func (e *Engine) loadExistingSegments() error {
	entries, err := os.ReadDir(e.cfg.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading data directory: %w", err)
	}
	segFiles := make([]string, 0)
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".idx") {
			segFiles = append(segFiles, entry.Name())
		}
	}
	sort.Strings(segFiles)

	for _, name := range segFiles {
		path := filepath.Join(e.cfg.DataDir, name)
		reader, err := index.OpenReader(path)
		if err != nil {
			e.logger.Error("failed to open segment, skipping",
				"segment", name,
				"error", err,
			)
			continue
		}
		e.readers = append(e.readers, reader)
		e.logger.Info("loaded existing segment",
			"segment", name,
			"docs", reader.DocCount(),
		)
	}
	e.logger.Info("segment recovery complete", "segments_loaded", len(e.readers))
	return nil
}
