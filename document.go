package govex

import "io"

// FieldValue pairs a field ID with the Value held for that field in one
// Document.
type FieldValue struct {
	FieldID uint32
	Value   Value
}

// Document is an ordered bag of field values submitted together to
// Index.Add. It carries no doc_id of its own — the Index assigns one at
// commit time.
type Document struct {
	Fields []FieldValue
}

// NewDocument builds a Document from a varargs list of FieldValues.
func NewDocument(fields ...FieldValue) Document {
	return Document{Fields: fields}
}

// Serialize writes the wire form: a varint field count followed by each
// FieldValue as (4-byte big-endian field_id, tagged Value).
func (d Document) Serialize(w io.Writer) error {
	if err := writeVarUint(w, uint64(len(d.Fields))); err != nil {
		return err
	}
	for _, fv := range d.Fields {
		if err := writeFixed(w, fv.FieldID); err != nil {
			return err
		}
		if err := fv.Value.Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

// DeserializeDocument reads a Document previously written by Serialize.
func DeserializeDocument(r io.Reader) (Document, error) {
	n, err := readVarUint(r)
	if err != nil {
		return Document{}, err
	}
	doc := Document{Fields: make([]FieldValue, 0, n)}
	for i := uint64(0); i < n; i++ {
		var fieldID uint32
		if err := readFixed(r, &fieldID); err != nil {
			return Document{}, err
		}
		val, err := DeserializeValue(r)
		if err != nil {
			return Document{}, err
		}
		doc.Fields = append(doc.Fields, FieldValue{FieldID: fieldID, Value: val})
	}
	return doc, nil
}
