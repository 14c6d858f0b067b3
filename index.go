package govex

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/arvindp/govex/segment"
)

// flushedSegment is one immutable on-disk segment plus the global DocID its
// local doc_ids are offset by.
type flushedSegment struct {
	reader *segment.Reader
	base   uint64
	count  int
}

// Hit is one (DocID, term frequency) pair returned by Search.
type Hit struct {
	DocID DocID
	Freq  uint64
}

// Index is the embeddable search core: one Schema, one live generation
// (BytePool + per-field FieldCache + WAL), and the immutable segments prior
// Flush calls have produced. Its write path is serialized end to end by mu,
// matching spec.md §5's single-writer discipline; reads take only the short
// locks genMu and each component's own internal locks already require.
type Index struct {
	schema    *Schema
	tokenizer Tokenizer
	config    Config
	store     *segment.Store

	mu     sync.Mutex // serializes Add: WAL append -> doc-offset push -> per-field updates -> commit fence -> doc_id increment
	gen    *generation
	closed atomic.Bool

	genMu     sync.RWMutex // guards gen/segments/baseDocID against a concurrent Flush swap
	segments  []flushedSegment
	baseDocID uint64
}

// Open creates or reopens an Index rooted at path. tokenizer is used to
// split FieldText values into terms; a nil tokenizer defaults to
// WhitespaceTokenizer. Open always starts a fresh live generation — this
// module durably persists data via explicit Flush calls into immutable
// segments (see DESIGN.md), not via WAL crash-replay on Open.
func Open(path string, schema *Schema, tokenizer Tokenizer, opts ...Option) (*Index, error) {
	cfg := defaultConfig(path)
	for _, opt := range opts {
		opt(&cfg)
	}
	if tokenizer == nil {
		tokenizer = WhitespaceTokenizer{}
	}

	if err := os.MkdirAll(cfg.IndexPath, 0o755); err != nil {
		return nil, wrapIO("mkdir "+cfg.IndexPath, err)
	}

	store, err := segment.OpenStore(cfg.IndexPath)
	if err != nil {
		return nil, err
	}

	ids, err := store.IDs()
	if err != nil {
		return nil, err
	}
	segments := make([]flushedSegment, 0, len(ids))
	var base uint64
	for _, id := range ids {
		reader, err := store.OpenSegment(id)
		if err != nil {
			if errors.Is(err, segment.ErrBadMagicNumber) {
				return nil, fmt.Errorf("%w: segment %d", ErrBadMagicNumber, id)
			}
			return nil, wrapIO(fmt.Sprintf("open existing segment %d", id), err)
		}
		count := reader.DocCount()
		segments = append(segments, flushedSegment{reader: reader, base: base, count: count})
		base += uint64(count)
	}

	walPath := filepath.Join(cfg.IndexPath, cfg.WalFileName)
	gen, err := newGeneration(schema, walPath, cfg)
	if err != nil {
		return nil, err
	}

	return &Index{
		schema:    schema,
		tokenizer: tokenizer,
		config:    cfg,
		store:     store,
		gen:       gen,
		segments:  segments,
		baseDocID: base,
	}, nil
}

// termsFor converts one field's Value into the term bytes FieldCache.Add
// expects: tokenization for FieldText, Value.TermBytes for everything else.
func (idx *Index) termsFor(entry FieldEntry, v Value) ([][]byte, error) {
	if entry.Type == FieldText {
		return idx.tokenizer.Tokenize(v.String()), nil
	}
	b, err := v.TermBytes()
	if err != nil {
		return nil, err
	}
	return [][]byte{b}, nil
}

// Add appends doc to the WAL and flushes it, folds each field's terms into
// its FieldCache, commits every field cache (establishing the read fence
// spec.md §5 requires after each add), and returns the document's assigned
// DocID. Flushing the WAL per add makes the doc's bytes durable and readable
// via ReadAt immediately, not just once the WAL's 32KiB write buffer next
// spills.
//
// On WalOverflow the write is rejected whole: neither the doc-offset vector
// nor any field cache is touched, so doc_offset.len() == doc_id_counter
// holds at every mutex-free observation point, per spec.md §7.
func (idx *Index) Add(doc Document) (DocID, error) {
	if idx.closed.Load() {
		return 0, ErrClosed
	}

	var buf bytes.Buffer
	if err := doc.Serialize(&buf); err != nil {
		return 0, wrapSerialization("document", err)
	}
	raw := buf.Bytes()

	idx.mu.Lock()
	defer idx.mu.Unlock()

	gen := idx.gen
	if err := gen.wal.CheckCapacity(len(raw)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWalOverflow, err)
	}

	offset, err := gen.wal.Append(raw)
	if err != nil {
		return 0, wrapIO("wal append", err)
	}
	// Flushed per document, matching the original's w.flush() after every
	// write: Document keeps the WAL's internal buffer from hiding a just-added
	// doc from a concurrent read through gen.document.
	if err := gen.wal.Flush(); err != nil {
		return 0, wrapIO("wal flush", err)
	}

	gen.docMu.Lock()
	local := uint64(len(gen.docOffsets))
	gen.docOffsets = append(gen.docOffsets, uint64(offset))
	gen.docMu.Unlock()

	docID := DocID(idx.baseDocID + local)

	for _, fv := range doc.Fields {
		entry, ok := idx.schema.Field(fv.FieldID)
		if !ok {
			return 0, fmt.Errorf("%w: id %d", ErrUnknownField, fv.FieldID)
		}
		terms, err := idx.termsFor(entry, fv.Value)
		if err != nil {
			return 0, err
		}
		cache := gen.caches[fv.FieldID]
		for _, term := range terms {
			if err := cache.Add(local, term); err != nil {
				return 0, err
			}
		}
	}

	for _, cache := range gen.caches {
		if err := cache.Commit(); err != nil {
			return 0, err
		}
	}

	return docID, nil
}

// Document retrieves a previously added document by its global DocID,
// looking it up in whichever flushed segment or the live generation holds
// it.
func (idx *Index) Document(id DocID) (Document, error) {
	if idx.closed.Load() {
		return Document{}, ErrClosed
	}

	idx.genMu.RLock()
	defer idx.genMu.RUnlock()

	for _, seg := range idx.segments {
		if uint64(id) < seg.base+uint64(seg.count) {
			raw, err := seg.reader.DocumentBytes(uint64(id) - seg.base)
			if err != nil {
				if errors.Is(err, segment.ErrDocumentNotFound) {
					return Document{}, ErrDocumentNotFound
				}
				return Document{}, err
			}
			doc, err := DeserializeDocument(bytes.NewReader(raw))
			if err != nil {
				return Document{}, wrapSerialization("document", err)
			}
			return doc, nil
		}
	}
	if uint64(id) < idx.baseDocID {
		return Document{}, ErrDocumentNotFound
	}
	return idx.gen.document(uint64(id) - idx.baseDocID)
}

// Search looks up term in fieldName's postings across every flushed segment
// and the live generation, returning hits in ascending DocID order (oldest
// segment first, live generation last — each individually ascending by
// construction per spec.md §5's ordering guarantee).
func (idx *Index) Search(fieldName string, term []byte) ([]Hit, error) {
	if idx.closed.Load() {
		return nil, ErrClosed
	}

	fieldID, ok := idx.schema.FieldID(fieldName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, fieldName)
	}

	idx.genMu.RLock()
	defer idx.genMu.RUnlock()

	var hits []Hit
	for _, seg := range idx.segments {
		pr, found, err := seg.reader.Search(fieldID, term)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		for {
			docID, freq, ok, err := pr.Next()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			hits = append(hits, Hit{DocID: DocID(seg.base + docID), Freq: freq})
		}
	}

	if cache, ok := idx.gen.caches[fieldID]; ok {
		pr, found, err := cache.Reader().Posting(string(term))
		if err != nil {
			return nil, err
		}
		if found {
			for {
				docID, freq, ok, err := pr.Next()
				if err != nil {
					return nil, err
				}
				if !ok {
					break
				}
				hits = append(hits, Hit{DocID: DocID(idx.baseDocID + docID), Freq: freq})
			}
		}
	}

	return hits, nil
}

// SearchValue is a convenience wrapper for non-text fields: it derives the
// canonical term bytes from v via Value.TermBytes before searching.
func (idx *Index) SearchValue(fieldName string, v Value) ([]Hit, error) {
	term, err := v.TermBytes()
	if err != nil {
		return nil, err
	}
	return idx.Search(fieldName, term)
}

// Flush freezes the current live generation into a new immutable segment
// file, following the algorithm in spec.md §4.E: the WAL file itself is
// extended in place with postings, FSTs, bloom filters, the doc-offset
// table, and the footer — Document bytes already in the WAL are never
// copied. A fresh generation is opened immediately afterward so Add can
// continue without pausing for the flush's I/O beyond mu's hold time.
func (idx *Index) Flush() error {
	if idx.closed.Load() {
		return ErrClosed
	}

	idx.mu.Lock()
	gen := idx.gen
	if err := gen.wal.Flush(); err != nil {
		idx.mu.Unlock()
		return wrapIO("flush wal before segment flush", err)
	}
	durableLen := gen.wal.Offset()

	gen.docMu.RLock()
	docOffsets := append([]uint64(nil), gen.docOffsets...)
	docCount := len(docOffsets)
	gen.docMu.RUnlock()

	if err := gen.close(); err != nil {
		idx.mu.Unlock()
		return err
	}

	segID, segPath := idx.store.Reserve()
	if err := os.Rename(gen.walPath, segPath); err != nil {
		idx.mu.Unlock()
		return wrapIO(fmt.Sprintf("rename wal to segment %d", segID), err)
	}

	fields := make([]segment.FieldSource, 0, len(gen.caches))
	for fieldID, cache := range gen.caches {
		fields = append(fields, segment.FieldSource{FieldID: fieldID, Reader: cache.Reader()})
	}

	if err := segment.Flush(segPath, durableLen, fields, docOffsets); err != nil {
		idx.mu.Unlock()
		return wrapIO(fmt.Sprintf("flush segment %d", segID), err)
	}

	reader, err := segment.Open(segPath)
	if err != nil {
		idx.mu.Unlock()
		return wrapIO(fmt.Sprintf("open freshly flushed segment %d", segID), err)
	}

	newGen, err := newGeneration(idx.schema, filepath.Join(idx.config.IndexPath, idx.config.WalFileName), idx.config)
	if err != nil {
		idx.mu.Unlock()
		return wrapIO("open next generation wal", err)
	}

	idx.genMu.Lock()
	idx.segments = append(idx.segments, flushedSegment{reader: reader, base: idx.baseDocID, count: docCount})
	idx.baseDocID += uint64(docCount)
	idx.gen = newGen
	idx.genMu.Unlock()

	idx.mu.Unlock()
	return nil
}

// Close releases the live generation's WAL and every flushed segment's mmap.
// Calling Close more than once, or calling Add/Document/Search/Flush after
// it, returns ErrClosed.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return ErrClosed
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.genMu.Lock()
	defer idx.genMu.Unlock()

	var firstErr error
	if err := idx.gen.close(); err != nil && firstErr == nil {
		firstErr = err
	}
	for _, seg := range idx.segments {
		if err := seg.reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
