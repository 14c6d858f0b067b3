package wal

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openFileWAL(t *testing.T, fsize int64) (*WAL, string) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")
	sel, err := NewFileIOSelector(path, fsize)
	require.NoError(t, err)
	return Open(sel, fsize), path
}

func TestAppendAndReplayRoundTrip(t *testing.T) {
	w, _ := openFileWAL(t, DefaultFileSize)

	records := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	var offsets []int64
	for _, r := range records {
		off, err := w.Append(r)
		require.NoError(t, err)
		offsets = append(offsets, off)
	}
	require.NoError(t, w.Flush())

	sel, ok := w.io.(*FileIOSelector)
	require.True(t, ok)
	r := NewReplayReader(sel, w.Offset())

	for _, want := range records {
		got := make([]byte, len(want))
		_, err := io.ReadFull(r, got)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := r.Read(make([]byte, 1))
	require.ErrorIs(t, err, io.EOF)

	_ = offsets
}

func TestAppendRejectsOverflowWithoutPartialWrite(t *testing.T) {
	w, _ := openFileWAL(t, 8)

	_, err := w.Append([]byte("1234"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	before := w.Offset()
	_, err = w.Append([]byte("12345")) // would cross the 8-byte bound
	require.ErrorIs(t, err, ErrOverflow)
	require.Equal(t, before, w.Offset())
}

func TestFlushCrossesBlockBoundary(t *testing.T) {
	w, _ := openFileWAL(t, DefaultFileSize)

	big := make([]byte, blockSize+100)
	for i := range big {
		big[i] = byte(i)
	}
	_, err := w.Append(big)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	sel := w.io.(*FileIOSelector)
	r := NewReplayReader(sel, w.Offset())
	got := make([]byte, len(big))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, big, got)
}

func TestMmapSelectorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wal.log")
	sel, err := NewMmapSelector(path, DefaultFileSize)
	require.NoError(t, err)
	w := Open(sel, DefaultFileSize)

	_, err = w.Append([]byte("mmap backed"))
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	r := NewReplayReader(sel, w.Offset())
	got := make([]byte, len("mmap backed"))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, "mmap backed", string(got))
	require.NoError(t, w.Close())
}
