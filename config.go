package govex

import "github.com/arvindp/govex/wal"

// IOType selects the WAL's backing storage.
type IOType int

const (
	// FileIOType backs the WAL with buffered os.File reads/writes, flushed
	// and fsynced a block at a time.
	FileIOType IOType = iota
	// MmapIOType backs the WAL with a memory-mapped, pre-sized region
	// written in place.
	MmapIOType
)

// Config enumerates the knobs spec.md §6 lists for an Index.
type Config struct {
	IndexName   string
	IndexPath   string
	WalFileName string
	Fsize       int64
	IOType      IOType
}

// Option mutates a Config at Open time, following FlashLogGo's
// segmentmanager.DiskSegmentManagerOption functional-option pattern.
type Option func(*Config)

// WithIndexName sets the index's logical label.
func WithIndexName(name string) Option {
	return func(c *Config) { c.IndexName = name }
}

// WithFsize overrides the WAL's fixed maximum size. Default is
// wal.DefaultFileSize (1 MiB), suitable for tests; production callers
// should raise this (spec.md suggests 512 MiB).
func WithFsize(fsize int64) Option {
	return func(c *Config) { c.Fsize = fsize }
}

// WithIOType selects the WAL's I/O backend.
func WithIOType(t IOType) Option {
	return func(c *Config) { c.IOType = t }
}

// WithWalFileName overrides the WAL file's name within IndexPath.
func WithWalFileName(name string) Option {
	return func(c *Config) { c.WalFileName = name }
}

func defaultConfig(path string) Config {
	return Config{
		IndexName:   "govex",
		IndexPath:   path,
		WalFileName: "wal.gvx",
		Fsize:       wal.DefaultFileSize,
		IOType:      FileIOType,
	}
}
