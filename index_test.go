package govex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func bodyTitleSchema() *Schema {
	return NewSchema(
		FieldEntry{Name: "body", Type: FieldText},
		FieldEntry{Name: "title", Type: FieldI32},
	)
}

func TestAddAndSearchByValue(t *testing.T) {
	dir := t.TempDir()
	idx, err := Open(dir, bodyTitleSchema(), nil)
	require.NoError(t, err)
	defer idx.Close()

	titleID := idx.schema.MustFieldID("title")

	id0, err := idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(2)}))
	require.NoError(t, err)
	id1, err := idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(2)}))
	require.NoError(t, err)

	hits, err := idx.SearchValue("title", I32Value(2))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, Hit{DocID: id0, Freq: 1}, hits[0])
	require.Equal(t, Hit{DocID: id1, Freq: 1}, hits[1])
}

func TestFlushThenReopenPreservesSearchAndDocument(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	titleID := schema.MustFieldID("title")

	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)

	_, err = idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(2)}))
	require.NoError(t, err)

	require.NoError(t, idx.Flush())
	require.NoError(t, idx.Close())

	reopened, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.SearchValue("title", I32Value(2))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.EqualValues(t, 0, hits[0].DocID)

	doc, err := reopened.Document(hits[0].DocID)
	require.NoError(t, err)
	require.Len(t, doc.Fields, 1)
	require.EqualValues(t, 2, doc.Fields[0].Value.I32())
}

func TestAddAfterReopenContinuesGlobalDocIDs(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	titleID := schema.MustFieldID("title")

	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)
	_, err = idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(1)}))
	require.NoError(t, err)
	require.NoError(t, idx.Flush())
	require.NoError(t, idx.Close())

	reopened, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer reopened.Close()

	id, err := reopened.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(9)}))
	require.NoError(t, err)
	require.EqualValues(t, 1, id)

	hits, err := reopened.SearchValue("title", I32Value(9))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.EqualValues(t, 1, hits[0].DocID)
}

func TestTextFieldTokenizedByWhitespaceTokenizer(t *testing.T) {
	dir := t.TempDir()
	schema := NewSchema(FieldEntry{Name: "body", Type: FieldText})
	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer idx.Close()

	bodyID := schema.MustFieldID("body")
	id, err := idx.Add(NewDocument(FieldValue{FieldID: bodyID, Value: StringValue("Quick Brown Fox")}))
	require.NoError(t, err)

	for _, term := range []string{"quick", "brown", "fox"} {
		hits, err := idx.Search("body", []byte(term))
		require.NoError(t, err)
		require.Len(t, hits, 1, "term %q", term)
		require.Equal(t, id, hits[0].DocID)
	}

	hits, err := idx.Search("body", []byte("Quick"))
	require.NoError(t, err)
	require.Empty(t, hits, "lookup term must already be lower-cased by the caller")
}

func TestSearchAcrossMultipleFlushedSegmentsAndLiveGeneration(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	titleID := schema.MustFieldID("title")

	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer idx.Close()

	var ids []DocID
	for i := 0; i < 3; i++ {
		id, err := idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(5)}))
		require.NoError(t, err)
		ids = append(ids, id)
		require.NoError(t, idx.Flush())
	}
	// one more, left live (unflushed)
	liveID, err := idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(5)}))
	require.NoError(t, err)
	ids = append(ids, liveID)

	hits, err := idx.SearchValue("title", I32Value(5))
	require.NoError(t, err)
	require.Len(t, hits, 4)
	for i, h := range hits {
		require.Equal(t, ids[i], h.DocID)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Add(NewDocument(FieldValue{FieldID: 99, Value: I32Value(1)}))
	require.ErrorIs(t, err, ErrUnknownField)

	_, err = idx.Search("missing", []byte("x"))
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestDocumentNotFoundForOutOfRangeID(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Document(DocID(42))
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentReadableBeforeAnyFlush(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	titleID := schema.MustFieldID("title")
	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)
	defer idx.Close()

	id, err := idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(7)}))
	require.NoError(t, err)

	doc, err := idx.Document(id)
	require.NoError(t, err)
	require.Len(t, doc.Fields, 1)
	require.EqualValues(t, 7, doc.Fields[0].Value.I32())
}

func TestClosedIndexRejectsFurtherUse(t *testing.T) {
	dir := t.TempDir()
	schema := bodyTitleSchema()
	titleID := schema.MustFieldID("title")
	idx, err := Open(dir, schema, nil)
	require.NoError(t, err)

	_, err = idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(1)}))
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	require.ErrorIs(t, idx.Close(), ErrClosed)

	_, err = idx.Add(NewDocument(FieldValue{FieldID: titleID, Value: I32Value(2)}))
	require.ErrorIs(t, err, ErrClosed)

	_, err = idx.Document(DocID(0))
	require.ErrorIs(t, err, ErrClosed)

	_, err = idx.SearchValue("title", I32Value(1))
	require.ErrorIs(t, err, ErrClosed)

	require.ErrorIs(t, idx.Flush(), ErrClosed)
}
