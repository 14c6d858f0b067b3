package segment

import (
	"bytes"
	"fmt"
)

// FooterLen is the fixed trailing footer size every segment file ends with.
const FooterLen = 48

// Magic is the 8-byte sequence every valid segment file ends with,
// confirming the file was not truncated mid-write.
var Magic = []byte{0xD4, 0x56, 0x3F, 0x35, 0xE0, 0xEF, 0x09, 0x7A}

// Footer names the two top-level meta blocks: the doc-offset table and the
// field-handle table. Everything else in the file is reached by walking
// these two.
type Footer struct {
	DocMeta   BlockHandle
	FieldMeta BlockHandle
}

// Encode writes f into a FooterLen-byte array: the two block handles
// (varint-encoded) at the front, zero padding, and Magic in the last 8
// bytes.
func (f Footer) Encode() ([FooterLen]byte, error) {
	var out [FooterLen]byte
	var buf bytes.Buffer
	if err := f.DocMeta.Serialize(&buf); err != nil {
		return out, err
	}
	if err := f.FieldMeta.Serialize(&buf); err != nil {
		return out, err
	}
	if buf.Len() > FooterLen-len(Magic) {
		return out, fmt.Errorf("segment: footer block handles too large to fit")
	}
	copy(out[:], buf.Bytes())
	copy(out[FooterLen-len(Magic):], Magic)
	return out, nil
}

// DecodeFooter parses a FooterLen-byte footer, validating the trailing
// magic number.
func DecodeFooter(raw []byte) (Footer, error) {
	if len(raw) != FooterLen {
		return Footer{}, fmt.Errorf("segment: footer must be %d bytes, got %d", FooterLen, len(raw))
	}
	if !bytes.Equal(raw[FooterLen-len(Magic):], Magic) {
		return Footer{}, ErrBadMagicNumber
	}
	r := bytes.NewReader(raw)
	docMeta, err := DeserializeBlockHandle(r)
	if err != nil {
		return Footer{}, err
	}
	fieldMeta, err := DeserializeBlockHandle(r)
	if err != nil {
		return Footer{}, err
	}
	return Footer{DocMeta: docMeta, FieldMeta: fieldMeta}, nil
}
