package wal

import (
	"errors"
	"fmt"
)

const (
	// DefaultFileSize bounds a single WAL file. The Index's write mutex
	// makes this a hard ceiling: once appending the next document would
	// cross it, Append returns ErrOverflow and nothing is written.
	DefaultFileSize = 1 << 20

	// blockSize is the internal write-buffer size: writes accumulate here
	// and are pushed to the IOSelector (and fsynced) once full or on an
	// explicit Flush, trading syscalls for a fixed amount of unflushed
	// data lost on crash.
	blockSize = 1 << 15
)

// ErrOverflow is returned by Append when the write would exceed the WAL's
// fixed capacity.
var ErrOverflow = errors.New("wal: file size exceeded")

// WAL is a single bounded append-only file. Every Document the Index
// accepts is appended here, raw and self-delimiting (a varint field count
// followed by each field), before it is applied to the in-memory field
// caches. The log records no durable-length watermark, and the Index does
// not replay it on Open: a new generation writes its WAL from offset 0.
type WAL struct {
	io     IOSelector
	offset int64 // durable offset: bytes actually flushed to io
	fsize  int64
	buf    [blockSize]byte
	buflen int
}

// Open creates or reopens a WAL file of fsize bytes using sel as its
// storage backend. The caller picks FileIOSelector or MmapSelector
// depending on whether it wants buffered syscalls or a memory mapping.
func Open(sel IOSelector, fsize int64) *WAL {
	return &WAL{io: sel, fsize: fsize}
}

// Offset returns the byte offset the next Append will start at, counting
// bytes still held in the write buffer as well as those already flushed.
func (w *WAL) Offset() int64 { return w.offset + int64(w.buflen) }

// CheckCapacity reports ErrOverflow if appending size more bytes would
// exceed the WAL's fixed file size, without writing anything.
func (w *WAL) CheckCapacity(size int) error {
	if w.Offset()+int64(size) > w.fsize {
		return ErrOverflow
	}
	return nil
}

// Append writes content to the log, buffering internally and spilling to
// the IOSelector a block at a time. It returns the offset content was
// written at, for later random-access reads. Append runs CheckCapacity
// itself and returns ErrOverflow without writing anything when content would
// not fit. If a block Flush fails partway through, the bytes copied before
// the failure stay in the buffer.
func (w *WAL) Append(content []byte) (int64, error) {
	if err := w.CheckCapacity(len(content)); err != nil {
		return 0, err
	}
	start := w.Offset()
	rest := content
	for len(rest) > 0 {
		if w.buflen >= blockSize {
			if err := w.Flush(); err != nil {
				return 0, err
			}
		}
		n := copy(w.buf[w.buflen:], rest)
		w.buflen += n
		rest = rest[n:]
	}
	return start, nil
}

// Flush pushes any buffered bytes to the IOSelector and fsyncs.
func (w *WAL) Flush() error {
	if w.buflen == 0 {
		return nil
	}
	if _, err := w.io.WriteAt(w.buf[:w.buflen], w.offset); err != nil {
		return fmt.Errorf("wal: flush: %w", err)
	}
	if err := w.io.Sync(); err != nil {
		return fmt.Errorf("wal: sync: %w", err)
	}
	w.offset += int64(w.buflen)
	w.buflen = 0
	return nil
}

// Close flushes any buffered bytes and closes the underlying IOSelector.
func (w *WAL) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.io.Close()
}
