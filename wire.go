package govex

import (
	"encoding/binary"
	"io"
)

// writeVarUint encodes v as an unsigned varint — 7-bit groups, little-endian,
// MSB continuation bit, terminator byte has MSB clear. This is exactly the
// format encoding/binary's Uvarint/PutUvarint implement, so the standard
// library is used directly rather than a bespoke codec (see SPEC_FULL.md
// §8 for the justification).
func writeVarUint(w io.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// byteReader adapts an io.Reader into an io.ByteReader one byte at a time,
// which is what binary.ReadUvarint requires.
type byteReader struct {
	r io.Reader
}

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

func writeFixed(w io.Writer, v any) error {
	return binary.Write(w, binary.BigEndian, v)
}

func readFixed(r io.Reader, v any) error {
	err := binary.Read(r, binary.BigEndian, v)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return err
}

func writeString(w io.Writer, s string) error {
	if err := writeVarUint(w, uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readVarUint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return "", err
	}
	return string(buf), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeVarUint(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readVarUint(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, err
	}
	return buf, nil
}
