package bytepool

import "io"

// BlockIter walks the linked blocks of a byte stream between [start, end),
// yielding one slice per block. The first block is always assumed to be
// allocated at BaseLevel — true for every posting stream, since its first
// block is always requested via AllocBytes(BaseLevel, nil). After the first
// block, the next block's size class follows the same deterministic level
// progression (levelNext) that allocation used, so no out-of-band level
// bookkeeping is needed beyond the level reached so far.
type BlockIter struct {
	pool  *Pool
	start Addr
	end   Addr
	level int
	limit Addr // usable byte count of the current block
	first bool
	done  bool
}

// NewBlockIter constructs an iterator over the byte range [start, end).
func NewBlockIter(pool *Pool, start, end Addr) *BlockIter {
	return &BlockIter{pool: pool, start: start, end: end, level: BaseLevel, first: true}
}

// Next returns the next block's slice, or (nil, io.EOF) once the range is
// exhausted.
func (it *BlockIter) Next() ([]byte, error) {
	if it.done {
		return nil, io.EOF
	}

	if it.first {
		it.first = false
	} else {
		tail := it.start + it.limit
		next, err := it.pool.NextBlockAddr(tail)
		if err != nil {
			return nil, err
		}
		it.start = next
		it.level = levelNext[it.level]
	}

	usable := Addr(sizeClass[it.level] - pointerLen)
	if it.start+usable >= it.end {
		it.limit = it.end - it.start
	} else {
		it.limit = usable
	}

	b, err := it.pool.ReadSlice(it.start, int(it.limit))
	if err != nil {
		return nil, err
	}
	if it.start+it.limit >= it.end {
		it.done = true
	}
	return b, nil
}

// Reader adapts a BlockIter into a byte-oriented io.Reader, used by posting
// iteration and by the raw posting copy a segment flush makes.
type Reader struct {
	it      *BlockIter
	cur     []byte
	offset  int
	started bool
}

// NewReader builds a pull reader over the byte range [start, end).
func NewReader(pool *Pool, start, end Addr) (*Reader, error) {
	it := NewBlockIter(pool, start, end)
	first, err := it.Next()
	if err != nil {
		return nil, err
	}
	return &Reader{it: it, cur: first}, nil
}

// Read implements io.Reader, pulling across block boundaries transparently.
// It returns io.EOF (or io.ErrUnexpectedEOF wrapped by callers mid-record)
// once the underlying range is exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.offset == len(r.cur) {
			next, err := r.it.Next()
			if err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
			r.cur = next
			r.offset = 0
		}
		c := copy(p[n:], r.cur[r.offset:])
		n += c
		r.offset += c
	}
	return n, nil
}
