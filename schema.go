package govex

import "fmt"

// FieldType declares how a field's values are expected to be interpreted
// when building terms: Text fields are tokenized into zero or more terms by
// the caller-supplied Tokenizer; every other type collapses to exactly one
// term via Value.TermBytes.
type FieldType byte

const (
	FieldText FieldType = iota
	FieldI64
	FieldU64
	FieldI32
	FieldU32
	FieldF32
	FieldF64
	FieldDate
	FieldBytes
)

// FieldEntry describes one named, typed field in a Schema. Document always
// retains every field's raw Value for retrieval (the whole Document is
// stored verbatim in the WAL/segment) — there is no partial-indexing mode to
// opt out of.
type FieldEntry struct {
	Name string
	ID   uint32
	Type FieldType
}

// Schema maps field names to their FieldEntry and back, giving every field a
// stable numeric ID used throughout the wire formats.
type Schema struct {
	fields   []FieldEntry
	byName   map[string]uint32
	byID     map[uint32]FieldEntry
}

// NewSchema builds a Schema from an ordered list of fields. Field IDs are
// assigned 0..n-1 in the order given.
func NewSchema(fields ...FieldEntry) *Schema {
	s := &Schema{
		byName: make(map[string]uint32, len(fields)),
		byID:   make(map[uint32]FieldEntry, len(fields)),
	}
	for i, f := range fields {
		f.ID = uint32(i)
		s.fields = append(s.fields, f)
		s.byName[f.Name] = f.ID
		s.byID[f.ID] = f
	}
	return s
}

func (s *Schema) FieldID(name string) (uint32, bool) {
	id, ok := s.byName[name]
	return id, ok
}

func (s *Schema) Field(id uint32) (FieldEntry, bool) {
	f, ok := s.byID[id]
	return f, ok
}

func (s *Schema) Fields() []FieldEntry { return s.fields }

func (s *Schema) MustFieldID(name string) uint32 {
	id, ok := s.FieldID(name)
	if !ok {
		panic(fmt.Sprintf("govex: unknown field %q", name))
	}
	return id
}
