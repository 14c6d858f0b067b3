package bytepool

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocBytesMarksSentinel(t *testing.T) {
	p := New()
	addr, err := p.AllocBytes(BaseLevel, nil)
	require.NoError(t, err)
	require.EqualValues(t, 0, addr)

	page, local, err := p.pageAt(addr)
	require.NoError(t, err)
	sentinel := page[local+sizeClass[BaseLevel]-pointerLen]
	require.Equal(t, byte(0x10|BaseLevel), sentinel)
}

func TestWriteWithinSingleBlock(t *testing.T) {
	p := New()
	addr, err := p.AllocBytes(BaseLevel, nil)
	require.NoError(t, err)

	data := []byte("abcde") // 5 bytes fits in the 9-byte level-0 block (9-4=5 usable)
	next, err := p.Write(addr, data)
	require.NoError(t, err)

	got, err := p.ReadSlice(addr, len(data))
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.EqualValues(t, int(addr)+len(data), next)
}

func TestWriteOverflowsToNextLevel(t *testing.T) {
	p := New()
	addr, err := p.AllocBytes(BaseLevel, nil)
	require.NoError(t, err)

	// 5 usable bytes in level 0; write 8 bytes to force one overflow.
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	end, err := p.Write(addr, data)
	require.NoError(t, err)

	r, err := NewReader(p, addr, end)
	require.NoError(t, err)
	got := make([]byte, len(data))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestWriteSpansManyPages(t *testing.T) {
	// Force a tiny page size so a single posting stream must span several
	// pages — spec §8 scenario 4 (documents of size >= one page).
	p := NewSize(32)
	addr, err := p.AllocBytes(BaseLevel, nil)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 100) // 300 bytes
	end, err := p.Write(addr, data)
	require.NoError(t, err)
	require.Greater(t, len(p.pages), 2)

	r, err := NewReader(p, addr, end)
	require.NoError(t, err)
	got := make([]byte, len(data))
	_, err = io.ReadFull(r, got)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestWriteVarUintRoundTrip(t *testing.T) {
	p := New()
	vals := []uint64{0, 1, 127, 128, 16383, 16384, 1<<32 - 1, 1<<63 - 1}

	addr, err := p.AllocBytes(BaseLevel, nil)
	require.NoError(t, err)

	start := addr
	cur := addr
	for _, v := range vals {
		next, err := p.WriteVarUint(cur, v)
		require.NoError(t, err)
		cur = next
	}

	r, err := NewReader(p, start, cur)
	require.NoError(t, err)
	br := &byteReaderAdapter{r: r}
	for _, want := range vals {
		got, err := binary.ReadUvarint(br)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

// byteReaderAdapter adapts an io.Reader one byte at a time for
// binary.ReadUvarint, matching how the segment/fieldcache packages decode
// varints out of a Reader-backed stream.
type byteReaderAdapter struct {
	r io.Reader
}

func (b *byteReaderAdapter) ReadByte() (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(b.r, buf[:])
	return buf[0], err
}

func TestNextBlockAddrDecodesForwardPointer(t *testing.T) {
	p := New()
	first, err := p.AllocBytes(BaseLevel, nil)
	require.NoError(t, err)

	tail := first + Addr(sizeClass[BaseLevel]-pointerLen)
	second, err := p.AllocBytes(levelNext[BaseLevel], &tail)
	require.NoError(t, err)

	got, err := p.NextBlockAddr(tail)
	require.NoError(t, err)
	require.Equal(t, second, got)
}
