package segment

import "io"

// FieldHandle locates one field's FST term dictionary and bloom filter
// block within a segment file.
type FieldHandle struct {
	FieldID uint32
	FST     BlockHandle
	Filter  BlockHandle
}

func (fh FieldHandle) Serialize(w io.Writer) error {
	if err := writeUint32(w, fh.FieldID); err != nil {
		return err
	}
	if err := fh.FST.Serialize(w); err != nil {
		return err
	}
	return fh.Filter.Serialize(w)
}

func DeserializeFieldHandle(r byteReader) (FieldHandle, error) {
	fieldID, err := readUint32(r)
	if err != nil {
		return FieldHandle{}, err
	}
	fst, err := DeserializeBlockHandle(r)
	if err != nil {
		return FieldHandle{}, err
	}
	filter, err := DeserializeBlockHandle(r)
	if err != nil {
		return FieldHandle{}, err
	}
	return FieldHandle{FieldID: fieldID, FST: fst, Filter: filter}, nil
}
