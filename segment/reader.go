package segment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/blevesearch/vellum"
	"github.com/edsrzf/mmap-go"

	"github.com/arvindp/govex/fieldcache"
)

// Reader is a read-only, mmap-backed view over one flushed segment file.
// Any number of Readers may be open concurrently; nothing in a segment file
// is ever mutated after Flush writes its footer.
type Reader struct {
	f      *os.File
	m      mmap.MMap
	fields map[uint32]FieldHandle
	docs   []uint64
}

// Open mmaps path and validates its footer before reading the field-handle
// and doc-offset tables it names.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() < FooterLen {
		f.Close()
		return nil, fmt.Errorf("segment: %s shorter than footer", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("segment: mmap %s: %w", path, err)
	}

	footer, err := DecodeFooter(m[len(m)-FooterLen:])
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}

	fieldsRaw := m[footer.FieldMeta.Offset:footer.FieldMeta.End()]
	fieldHandles, err := decodeFieldMeta(fieldsRaw)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}

	docsRaw := m[footer.DocMeta.Offset:footer.DocMeta.End()]
	docOffsets, err := decodeDocMeta(docsRaw)
	if err != nil {
		m.Unmap()
		f.Close()
		return nil, err
	}

	fields := make(map[uint32]FieldHandle, len(fieldHandles))
	for _, fh := range fieldHandles {
		fields[fh.FieldID] = fh
	}

	return &Reader{f: f, m: m, fields: fields, docs: docOffsets}, nil
}

func decodeFieldMeta(raw []byte) ([]FieldHandle, error) {
	r := bytes.NewReader(raw)
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]FieldHandle, 0, n)
	for i := uint64(0); i < n; i++ {
		fh, err := DeserializeFieldHandle(r)
		if err != nil {
			return nil, err
		}
		out = append(out, fh)
	}
	return out, nil
}

func decodeDocMeta(raw []byte) ([]uint64, error) {
	r := bytes.NewReader(raw)
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, 0, n)
	for i := uint64(0); i < n; i++ {
		off, err := readUvarint(r)
		if err != nil {
			return nil, err
		}
		out = append(out, off)
	}
	return out, nil
}

// DocCount reports how many documents this segment's doc-offset table
// names, letting a caller opening several segments compute each one's base
// DocID offset without re-parsing the file.
func (r *Reader) DocCount() int { return len(r.docs) }

// Close unmaps and closes the underlying file.
func (r *Reader) Close() error {
	if err := r.m.Unmap(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// DocumentBytes returns a zero-copy view of the doc_id'th document's raw
// serialized bytes, starting at the offset the doc-offset table recorded —
// the same offset the WAL originally wrote it at, before this file became a
// segment. The slice runs to the end of the mmap; the caller's deserializer
// stops after consuming exactly one self-delimiting Document, so segment
// itself never needs to know the root package's wire types to serve reads.
func (r *Reader) DocumentBytes(docID uint64) ([]byte, error) {
	if docID >= uint64(len(r.docs)) {
		return nil, ErrDocumentNotFound
	}
	offset := r.docs[docID]
	return r.m[offset:], nil
}

// fieldFST loads the FST for a field on every call. Construction is cheap
// (vellum.Load just wraps the mmap'd bytes), so no cache is kept.
func (r *Reader) fieldFST(fieldID uint32) (*vellum.FST, FieldHandle, bool, error) {
	fh, ok := r.fields[fieldID]
	if !ok {
		return nil, FieldHandle{}, false, nil
	}
	fst, err := vellum.Load(r.m[fh.FST.Offset:fh.FST.End()])
	if err != nil {
		return nil, FieldHandle{}, false, fmt.Errorf("segment: load fst: %w", err)
	}
	return fst, fh, true, nil
}

// Search looks up term within field, first consulting the field's bloom
// filter so most absent terms skip the FST traversal. A zero-length filter
// block skips the filter check.
func (r *Reader) Search(fieldID uint32, term []byte) (*PostingReader, bool, error) {
	fst, fh, ok, err := r.fieldFST(fieldID)
	if err != nil || !ok {
		return nil, ok, err
	}

	if fh.Filter.Length > 0 {
		filter := &bloom.BloomFilter{}
		if _, err := filter.ReadFrom(bytes.NewReader(r.m[fh.Filter.Offset:fh.Filter.End()])); err != nil {
			return nil, false, fmt.Errorf("segment: load bloom filter: %w", err)
		}
		if !filter.Test(term) {
			return nil, false, nil
		}
	}

	offset, found, err := fst.Get(term)
	if err != nil {
		return nil, false, fmt.Errorf("segment: fst lookup: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	return r.postingAt(offset)
}

func (r *Reader) postingAt(offset uint64) (*PostingReader, bool, error) {
	br := bytes.NewReader(r.m[offset:])
	length, err := readUvarint(br)
	if err != nil {
		return nil, false, err
	}
	start := len(r.m) - br.Len()
	raw := r.m[start : start+int(length)]
	return &PostingReader{r: bytes.NewReader(raw)}, true, nil
}

// PostingReader decodes a flushed posting block back into absolute doc_ids
// and per-document frequencies.
type PostingReader struct {
	r     *bytes.Reader
	docID uint64
}

// Next returns the next (doc_id, freq) pair, or ok=false once the block is
// exhausted.
func (pr *PostingReader) Next() (docID uint64, freq uint64, ok bool, err error) {
	if pr.r.Len() == 0 {
		return 0, 0, false, nil
	}
	df, err := fieldcache.DeserializeDocFreq(pr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	pr.docID += df.Delta
	return pr.docID, df.Freq, true, nil
}
