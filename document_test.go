package govex

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDocumentSerializeRoundTrip(t *testing.T) {
	doc := NewDocument(
		FieldValue{FieldID: 0, Value: StringValue("title")},
		FieldValue{FieldID: 1, Value: I64Value(-99)},
		FieldValue{FieldID: 2, Value: BytesValue([]byte{1, 2, 3})},
	)

	var buf bytes.Buffer
	require.NoError(t, doc.Serialize(&buf))

	got, err := DeserializeDocument(&buf)
	require.NoError(t, err)
	require.Len(t, got.Fields, 3)
	require.Equal(t, "title", got.Fields[0].Value.String())
	require.Equal(t, int64(-99), got.Fields[1].Value.I64())
	require.Equal(t, []byte{1, 2, 3}, got.Fields[2].Value.Bytes())
}

func TestDocumentSerializeEmpty(t *testing.T) {
	doc := NewDocument()
	var buf bytes.Buffer
	require.NoError(t, doc.Serialize(&buf))

	got, err := DeserializeDocument(&buf)
	require.NoError(t, err)
	require.Empty(t, got.Fields)
}

// TestDocumentSerializeStructuralEquality guards against a round trip that
// preserves what require.Equal's field-by-field assertions happen to check
// but drifts on a field nobody remembered to assert on individually.
func TestDocumentSerializeStructuralEquality(t *testing.T) {
	doc := NewDocument(
		FieldValue{FieldID: 0, Value: U32Value(7)},
		FieldValue{FieldID: 1, Value: F64Value(3.5)},
		FieldValue{FieldID: 2, Value: DateValue(time.Unix(0, 1_700_000_000_000).UTC())},
	)

	var buf bytes.Buffer
	require.NoError(t, doc.Serialize(&buf))

	got, err := DeserializeDocument(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(doc, got, cmp.AllowUnexported(Value{})); diff != "" {
		t.Fatalf("round trip changed the document (-want +got):\n%s", diff)
	}
}
