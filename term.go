package govex

// DocID identifies a document's position in the index's doc-offset vector.
type DocID uint64

// Term identifies one postable unit: a field plus the term bytes produced
// either by tokenizing a text Value or by Value.TermBytes for every other
// kind. The posting wire format itself (DocFreq) lives in the fieldcache
// package, which owns writing and reading posting streams. Term is a plain
// (field, bytes) pair: Index.Search and segment.Reader.Search take the field
// and the term bytes as separate arguments rather than a Term.
type Term struct {
	FieldID uint32
	Bytes   []byte
}
