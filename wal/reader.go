package wal

import (
	"errors"
	"io"
)

// selReader adapts an IOSelector's random-access ReadAt into a sequential
// io.Reader, advancing its own cursor — used to decode one self-delimiting
// Document at a time during replay.
type selReader struct {
	io     IOSelector
	offset int64
	limit  int64
}

func (r *selReader) Read(p []byte) (int, error) {
	if r.offset >= r.limit {
		return 0, io.EOF
	}
	if max := r.limit - r.offset; int64(len(p)) > max {
		p = p[:max]
	}
	n, err := r.io.ReadAt(p, r.offset)
	r.offset += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// NewReplayReader returns an io.Reader bounded to [0, limit) over sel's
// durably written region — bytes beyond limit are unwritten (zeroed)
// pre-allocated file space, not valid records. A caller decodes one
// self-delimiting record at a time from it until it returns io.EOF; the
// Index itself does not replay the WAL.
func NewReplayReader(sel IOSelector, limit int64) io.Reader {
	return &selReader{io: sel, limit: limit}
}

// NewOffsetReader returns an io.Reader starting at offset, for decoding a
// single self-delimiting record (e.g. one Document) whose start offset a
// caller already knows — from the doc-offset vector — without replaying
// from the beginning of the file.
func NewOffsetReader(sel IOSelector, offset int64) io.Reader {
	return &selReader{io: sel, offset: offset, limit: 1<<62}
}
