// Package wal implements the single bounded write-ahead-log file the Index
// appends every incoming Document to before applying it to the in-memory
// field caches. Unlike the teacher repo's segmentmanager, which rotates into
// a fresh numbered file once the active one fills up, this WAL is a single
// fixed-size file: once an append would exceed its capacity, the write is
// rejected with ErrOverflow rather than rotated, matching the core's
// invariant that crossing the WAL's bound must not advance the Index's
// doc_id or its doc-offset vector.
package wal

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// IOSelector abstracts the WAL's backing storage so the same write/flush
// logic works whether the file is accessed through ordinary buffered I/O or
// through a memory mapping.
type IOSelector interface {
	ReadAt(buf []byte, offset int64) (int, error)
	WriteAt(buf []byte, offset int64) (int, error)
	Sync() error
	Close() error
}

// FileIOSelector backs a WAL with plain os.File reads/writes.
type FileIOSelector struct {
	f *os.File
}

// NewFileIOSelector opens (creating if necessary) fname and pre-extends it
// to fsize bytes so later WriteAt calls never implicitly grow the file.
func NewFileIOSelector(fname string, fsize int64) (*FileIOSelector, error) {
	f, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", fname, err)
	}
	if err := f.Truncate(fsize); err != nil {
		f.Close()
		return nil, fmt.Errorf("wal: truncate %s: %w", fname, err)
	}
	return &FileIOSelector{f: f}, nil
}

func (s *FileIOSelector) ReadAt(buf []byte, offset int64) (int, error) {
	return s.f.ReadAt(buf, offset)
}

func (s *FileIOSelector) WriteAt(buf []byte, offset int64) (int, error) {
	return s.f.WriteAt(buf, offset)
}

func (s *FileIOSelector) Sync() error { return s.f.Sync() }
func (s *FileIOSelector) Close() error { return s.f.Close() }

// MmapSelector backs a WAL with a memory-mapped file, trading syscall-per-
// flush for page faults and an explicit msync on Sync.
type MmapSelector struct {
	f *os.File
	m mmap.MMap
}

// NewMmapSelector opens (creating if necessary) fname, extends it to fsize
// bytes, and maps it read-write.
func NewMmapSelector(fname string, fsize int64) (*MmapSelector, error) {
	f, err := os.OpenFile(fname, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", fname, err)
	}
	if err := f.Truncate(fsize); err != nil {
		f.Close()
		return nil, fmt.Errorf("wal: truncate %s: %w", fname, err)
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("wal: mmap %s: %w", fname, err)
	}
	return &MmapSelector{f: f, m: m}, nil
}

func (s *MmapSelector) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 || int(offset) > len(s.m) {
		return 0, fmt.Errorf("wal: mmap read offset %d out of range", offset)
	}
	n := copy(buf, s.m[offset:])
	return n, nil
}

func (s *MmapSelector) WriteAt(buf []byte, offset int64) (int, error) {
	if offset < 0 || int(offset)+len(buf) > len(s.m) {
		return 0, fmt.Errorf("wal: mmap write out of range at offset %d", offset)
	}
	n := copy(s.m[offset:], buf)
	return n, nil
}

func (s *MmapSelector) Sync() error { return s.m.Flush() }

func (s *MmapSelector) Close() error {
	if err := s.m.Unmap(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
