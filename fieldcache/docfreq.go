package fieldcache

import (
	"encoding/binary"
	"io"
)

// DocFreq is one entry in a posting stream: the gap (delta) from the
// previous entry's doc_id and the number of occurrences of the term within
// that document.
//
// Wire form: if Freq == 1, a single varint (Delta<<1)|1. Otherwise a varint
// (Delta<<1) followed by a second varint carrying Freq. The low bit of the
// first varint distinguishes the two shapes on read — grounded on
// DocFreq's BinarySerialize implementation in the original source.
type DocFreq struct {
	Delta uint64
	Freq  uint64
}

func (d DocFreq) Serialize(w io.Writer) error {
	if d.Freq == 1 {
		return writeVarUint(w, (d.Delta<<1)|1)
	}
	if err := writeVarUint(w, d.Delta<<1); err != nil {
		return err
	}
	return writeVarUint(w, d.Freq)
}

// DeserializeDocFreq reads a DocFreq previously written by Serialize. r only
// needs to implement io.Reader; byteReader below adapts it for
// binary.ReadUvarint when r is not already an io.ByteReader.
func DeserializeDocFreq(r io.Reader) (DocFreq, error) {
	head, err := readVarUint(r)
	if err != nil {
		return DocFreq{}, err
	}
	if head&1 == 1 {
		return DocFreq{Delta: head >> 1, Freq: 1}, nil
	}
	freq, err := readVarUint(r)
	if err != nil {
		return DocFreq{}, err
	}
	return DocFreq{Delta: head >> 1, Freq: freq}, nil
}

func writeVarUint(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

type byteReader struct{ r io.Reader }

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b.r, buf[:])
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return buf[0], err
}

func readVarUint(r io.Reader) (uint64, error) {
	if br, ok := r.(io.ByteReader); ok {
		return binary.ReadUvarint(br)
	}
	return binary.ReadUvarint(byteReader{r})
}
