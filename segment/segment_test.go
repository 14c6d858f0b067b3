package segment_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvindp/govex"
	"github.com/arvindp/govex/bytepool"
	"github.com/arvindp/govex/fieldcache"
	"github.com/arvindp/govex/segment"
)

// buildFrozenWAL writes raw documents one after another into a file and
// returns the file path plus each document's byte offset, mimicking what a
// frozen WAL file looks like right before Flush extends it.
func buildFrozenWAL(t *testing.T, docs []govex.Document) (string, []uint64) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "frozen.gvx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var offsets []uint64
	var cursor uint64
	for _, doc := range docs {
		offsets = append(offsets, cursor)
		var buf countingWriter
		buf.w = f
		require.NoError(t, doc.Serialize(&buf))
		cursor += buf.n
	}
	return path, offsets
}

type countingWriter struct {
	w *os.File
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

func TestFlushAndSearchRoundTrip(t *testing.T) {
	docs := []govex.Document{
		govex.NewDocument(govex.FieldValue{FieldID: 0, Value: govex.StringValue("title one")}),
		govex.NewDocument(govex.FieldValue{FieldID: 0, Value: govex.StringValue("title two")}),
	}
	path, offsets := buildFrozenWAL(t, docs)

	pool := bytepool.New()
	fc := fieldcache.New(pool)
	require.NoError(t, fc.Add(0, []byte("aa")))
	require.NoError(t, fc.Add(1, []byte("bb")))
	require.NoError(t, fc.Add(1, []byte("aa")))
	require.NoError(t, fc.Commit())

	info, err := os.Stat(path)
	require.NoError(t, err)

	err = segment.Flush(path, info.Size(), []segment.FieldSource{{FieldID: 0, Reader: fc.Reader()}}, offsets)
	require.NoError(t, err)

	r, err := segment.Open(path)
	require.NoError(t, err)
	defer r.Close()

	pr, ok, err := r.Search(0, []byte("aa"))
	require.NoError(t, err)
	require.True(t, ok)

	var got []uint64
	for {
		docID, _, ok, err := pr.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, docID)
	}
	require.Equal(t, []uint64{0, 1}, got)

	_, ok, err = r.Search(0, []byte("cc"))
	require.NoError(t, err)
	require.False(t, ok)

	raw, err := r.DocumentBytes(0)
	require.NoError(t, err)
	doc, err := govex.DeserializeDocument(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, "title one", doc.Fields[0].Value.String())
}

func TestStoreReservesSequentialNumberedPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := segment.OpenStore(dir)
	require.NoError(t, err)

	id1, path1 := store.Reserve()
	require.Equal(t, 1, id1)
	require.Contains(t, path1, "segment-0001.gvx")

	id2, path2 := store.Reserve()
	require.Equal(t, 2, id2)
	require.Contains(t, path2, "segment-0002.gvx")
}

func TestStoreDiscoversExistingSegmentsOnReopen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "segment-0001.gvx"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "segment-0002.gvx"), nil, 0o644))

	store, err := segment.OpenStore(dir)
	require.NoError(t, err)

	id, _ := store.Reserve()
	require.Equal(t, 3, id)

	ids, err := store.IDs()
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, ids)
}
