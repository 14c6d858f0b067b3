package fieldcache

import (
	"sync"

	"github.com/arvindp/govex/bytepool"
	"github.com/arvindp/govex/memtable"
)

// FieldCache is the ordered term map for a single field: term bytes map to
// a posting stream allocated in a shared bytepool.Pool. One FieldCache is
// created per field in the schema; the Index holds one map of these keyed
// by field ID.
type FieldCache struct {
	mu      sync.RWMutex
	terms   *memtable.SkipList[string, *posting]
	pool    *bytepool.Pool
	pending []*posting
}

// New builds an empty FieldCache backed by pool. Postings for every term
// added to this cache are allocated out of pool.
func New(pool *bytepool.Pool) *FieldCache {
	return &FieldCache{
		terms: memtable.NewSkipListMemtable[string, *posting](),
		pool:  pool,
	}
}

// Add folds one occurrence of term into docID's posting, allocating a fresh
// posting stream on first sight of the term. It must be called under the
// Index's single write mutex — FieldCache does not serialize concurrent
// writers itself, only readers against the writer.
func (fc *FieldCache) Add(docID uint64, term []byte) error {
	key := string(term)

	fc.mu.Lock()
	p, ok := fc.terms.Get(key)
	if !ok {
		addr, err := fc.pool.AllocBytes(bytepool.BaseLevel, nil)
		if err != nil {
			fc.mu.Unlock()
			return err
		}
		p = newPosting(addr)
		fc.terms.Put(key, p)
	}
	fc.mu.Unlock()

	if err := p.addDoc(docID, fc.pool); err != nil {
		return err
	}
	if !p.pending {
		fc.mu.Lock()
		fc.pending = append(fc.pending, p)
		fc.mu.Unlock()
		p.pending = true
	}
	return nil
}

// Commit flushes every posting touched since the last Commit, fencing the
// current batch so its last (delta, freq) pair becomes durable and visible
// to readers that observe the posting's updated docFreqAddr.
func (fc *FieldCache) Commit() error {
	fc.mu.Lock()
	pending := fc.pending
	fc.pending = nil
	fc.mu.Unlock()

	for _, p := range pending {
		if err := p.flush(fc.pool); err != nil {
			return err
		}
		p.pending = false
		p.freq = 0
	}
	return nil
}

// Len returns the number of distinct terms currently held.
func (fc *FieldCache) Len() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.terms.Len()
}

// Reader returns a read-only view for iterating terms in sorted order, used
// by segment flush and by term lookups.
func (fc *FieldCache) Reader() *Reader {
	return &Reader{fc: fc}
}
