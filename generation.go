package govex

import (
	"fmt"
	"sync"

	"github.com/arvindp/govex/bytepool"
	"github.com/arvindp/govex/fieldcache"
	"github.com/arvindp/govex/wal"
)

// generation is the Index's live, pre-flush write state: one WAL file, one
// BytePool, and one FieldCache per schema field. Document IDs within a
// generation are local, starting at 0 — Index adds its baseDocID to expose
// a stable global DocID to callers. Flush freezes a generation into an
// immutable segment file and replaces it with a fresh one.
type generation struct {
	walSel  wal.IOSelector
	wal     *wal.WAL
	walPath string

	pool   *bytepool.Pool
	caches map[uint32]*fieldcache.FieldCache

	docMu      sync.RWMutex
	docOffsets []uint64
}

func newGeneration(schema *Schema, walPath string, cfg Config) (*generation, error) {
	sel, err := openWALSelector(walPath, cfg)
	if err != nil {
		return nil, err
	}

	pool := bytepool.New()
	caches := make(map[uint32]*fieldcache.FieldCache, len(schema.Fields()))
	for _, f := range schema.Fields() {
		caches[f.ID] = fieldcache.New(pool)
	}

	return &generation{
		walSel:  sel,
		wal:     wal.Open(sel, cfg.Fsize),
		walPath: walPath,
		pool:    pool,
		caches:  caches,
	}, nil
}

func openWALSelector(path string, cfg Config) (wal.IOSelector, error) {
	switch cfg.IOType {
	case MmapIOType:
		return wal.NewMmapSelector(path, cfg.Fsize)
	default:
		return wal.NewFileIOSelector(path, cfg.Fsize)
	}
}

// docCount reports how many documents this generation currently holds.
func (g *generation) docCount() int {
	g.docMu.RLock()
	defer g.docMu.RUnlock()
	return len(g.docOffsets)
}

// document decodes the local-th document directly out of the live WAL file.
func (g *generation) document(local uint64) (Document, error) {
	g.docMu.RLock()
	if local >= uint64(len(g.docOffsets)) {
		g.docMu.RUnlock()
		return Document{}, ErrDocumentNotFound
	}
	offset := g.docOffsets[local]
	g.docMu.RUnlock()

	r := wal.NewOffsetReader(g.walSel, int64(offset))
	doc, err := DeserializeDocument(r)
	if err != nil {
		return Document{}, wrapSerialization("document", err)
	}
	return doc, nil
}

func (g *generation) close() error {
	if err := g.wal.Close(); err != nil {
		return fmt.Errorf("govex: close generation wal %s: %w", g.walPath, err)
	}
	return nil
}
