package segment

import (
	"fmt"
	"os"
	"sort"
)

// Flush materializes a segment by extending path — the just-frozen WAL file
// — with, in order: each field's posting blocks (in sorted term order)
// followed by its FST and bloom filter, the doc-offset table, the
// field-handle table, and the footer. durableLen is the WAL's durably
// flushed byte length; anything beyond it in the pre-allocated file is
// unwritten padding and is truncated away before appending.
//
// docOffsets are untouched: they already point at each Document's start
// within the same file (the WAL wrote them there), so no Document bytes are
// copied or re-serialized by a flush.
func Flush(path string, durableLen int64, fields []FieldSource, docOffsets []uint64) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("segment: open %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Truncate(durableLen); err != nil {
		return fmt.Errorf("segment: truncate %s: %w", path, err)
	}
	if _, err := f.Seek(durableLen, 0); err != nil {
		return fmt.Errorf("segment: seek %s: %w", path, err)
	}

	ordered := make([]FieldSource, len(fields))
	copy(ordered, fields)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].FieldID < ordered[j].FieldID })

	w := &writer{f: f, offset: uint64(durableLen)}

	handles := make([]FieldHandle, 0, len(ordered))
	for _, fs := range ordered {
		fh, err := w.writeField(fs)
		if err != nil {
			return err
		}
		handles = append(handles, fh)
	}

	docMetaBH, err := w.writeDocMeta(docOffsets)
	if err != nil {
		return err
	}
	fieldMetaBH, err := w.writeFieldMeta(handles)
	if err != nil {
		return err
	}

	footer, err := Footer{DocMeta: docMetaBH, FieldMeta: fieldMetaBH}.Encode()
	if err != nil {
		return err
	}
	if err := w.write(footer[:]); err != nil {
		return err
	}

	return f.Sync()
}
