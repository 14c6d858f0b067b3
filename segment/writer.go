package segment

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/blevesearch/vellum"

	"github.com/arvindp/govex/fieldcache"
)

// bloomFalsePositiveRate bounds the per-field bloom filter's false-positive
// rate; a lookup miss against the filter lets a reader skip an FST probe
// entirely for terms that were never indexed.
const bloomFalsePositiveRate = 0.01

// FieldSource is one field's committed term map, ready to be flushed into a
// segment's posting block, FST, and bloom filter.
type FieldSource struct {
	FieldID uint32
	Reader  *fieldcache.Reader
}

// writer tracks the append cursor of a segment file being built. It always
// starts writing at an existing file's current length — a segment is built
// by extending a frozen WAL file in place, since the WAL already holds every
// Document this segment indexes at stable byte offsets, and no Document
// copy is needed to make them part of the finished segment.
type writer struct {
	f      *os.File
	offset uint64
}

func (w *writer) write(p []byte) error {
	if _, err := w.f.Write(p); err != nil {
		return fmt.Errorf("segment: write: %w", err)
	}
	w.offset += uint64(len(p))
	return nil
}

// writePosting appends a length-prefixed raw posting stream and returns the
// offset it was written at.
func (w *writer) writePosting(raw []byte) (uint64, error) {
	offset := w.offset
	if err := writeUvarint(w.f, uint64(len(raw))); err != nil {
		return 0, err
	}
	w.offset += uvarintLen(uint64(len(raw)))
	if err := w.write(raw); err != nil {
		return 0, err
	}
	return offset, nil
}

func uvarintLen(v uint64) uint64 {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return uint64(n)
}

// writeField flushes one field's terms (already sorted by
// fieldcache.Reader.Terms) into a posting block per term, a vellum FST
// mapping term bytes to posting offset, and a bloom filter over the same
// term set.
func (w *writer) writeField(fs FieldSource) (FieldHandle, error) {
	var fstBuf bytes.Buffer
	builder, err := vellum.New(&fstBuf, nil)
	if err != nil {
		return FieldHandle{}, fmt.Errorf("segment: new fst builder: %w", err)
	}

	termCount := uint(fs.Reader.Len())
	if termCount == 0 {
		termCount = 1
	}
	filter := bloom.NewWithEstimates(termCount, bloomFalsePositiveRate)

	for entry := range fs.Reader.Terms() {
		raw, err := fs.Reader.RawBytes(entry.Start, entry.End)
		if err != nil {
			return FieldHandle{}, err
		}
		offset, err := w.writePosting(raw)
		if err != nil {
			return FieldHandle{}, err
		}
		if err := builder.Insert([]byte(entry.Term), offset); err != nil {
			return FieldHandle{}, fmt.Errorf("segment: fst insert %q: %w", entry.Term, err)
		}
		filter.Add([]byte(entry.Term))
	}
	if err := builder.Close(); err != nil {
		return FieldHandle{}, fmt.Errorf("segment: fst close: %w", err)
	}

	fstBH := BlockHandle{Offset: w.offset, Length: uint64(fstBuf.Len())}
	if err := w.write(fstBuf.Bytes()); err != nil {
		return FieldHandle{}, err
	}

	var filterBuf bytes.Buffer
	if _, err := filter.WriteTo(&filterBuf); err != nil {
		return FieldHandle{}, fmt.Errorf("segment: bloom serialize: %w", err)
	}
	filterBH := BlockHandle{Offset: w.offset, Length: uint64(filterBuf.Len())}
	if err := w.write(filterBuf.Bytes()); err != nil {
		return FieldHandle{}, err
	}

	return FieldHandle{FieldID: fs.FieldID, FST: fstBH, Filter: filterBH}, nil
}

func (w *writer) writeDocMeta(docOffsets []uint64) (BlockHandle, error) {
	start := w.offset
	if err := writeUvarint(w.f, uint64(len(docOffsets))); err != nil {
		return BlockHandle{}, err
	}
	w.offset += uvarintLen(uint64(len(docOffsets)))
	for _, off := range docOffsets {
		if err := writeUvarint(w.f, off); err != nil {
			return BlockHandle{}, err
		}
		w.offset += uvarintLen(off)
	}
	return BlockHandle{Offset: start, Length: w.offset - start}, nil
}

func (w *writer) writeFieldMeta(handles []FieldHandle) (BlockHandle, error) {
	start := w.offset
	var buf bytes.Buffer
	if err := writeUvarint(&buf, uint64(len(handles))); err != nil {
		return BlockHandle{}, err
	}
	for _, fh := range handles {
		if err := fh.Serialize(&buf); err != nil {
			return BlockHandle{}, err
		}
	}
	if err := w.write(buf.Bytes()); err != nil {
		return BlockHandle{}, err
	}
	return BlockHandle{Offset: start, Length: w.offset - start}, nil
}
