// Package segment implements the on-disk segment format a flush produces:
// per-field posting blocks in sorted term order, a vellum FST mapping each
// term to its posting block's offset, a bloom filter per field, a doc-offset
// table, a field-handle table, and a fixed 48-byte footer naming the two
// meta blocks and carrying a magic number.
package segment

import (
	"encoding/binary"
	"io"
)

// BlockHandle names a byte range within a segment file.
type BlockHandle struct {
	Offset uint64
	Length uint64
}

func (bh BlockHandle) End() uint64 { return bh.Offset + bh.Length }

func (bh BlockHandle) Serialize(w io.Writer) error {
	var buf [2 * binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], bh.Offset)
	n += binary.PutUvarint(buf[n:], bh.Length)
	_, err := w.Write(buf[:n])
	return err
}

func DeserializeBlockHandle(r io.ByteReader) (BlockHandle, error) {
	offset, err := binary.ReadUvarint(r)
	if err != nil {
		return BlockHandle{}, err
	}
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return BlockHandle{}, err
	}
	return BlockHandle{Offset: offset, Length: length}, nil
}
