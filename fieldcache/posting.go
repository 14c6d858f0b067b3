// Package fieldcache holds one ordered term map per indexed field, backing
// every term with a posting byte stream allocated out of a shared bytepool.
// It implements the posting state machine described by the core: a term's
// posting starts Fresh, accumulates Dirty updates for repeated doc_ids
// within the current uncommitted batch, flushes mid-batch when a new doc_id
// arrives while a previous one is still pending, and finally flushes once
// more at Commit to fence the batch.
package fieldcache

import (
	"github.com/arvindp/govex/bytepool"
)

// posting tracks one term's mutable write state. byteAddr is the immutable
// start of the term's posting stream (used by readers); docFreqAddr is the
// writer's current cursor, advanced every time a DocFreq entry is flushed.
type posting struct {
	byteAddr    bytepool.Addr
	docFreqAddr bytepool.Addr
	lastDocID   uint64
	docDelta    uint64
	freq        uint64
	docNum      int
	pending     bool
}

func newPosting(addr bytepool.Addr) *posting {
	return &posting{byteAddr: addr, docFreqAddr: addr}
}

// addDoc folds one occurrence of a term in docID into the posting's pending
// state, flushing the previous doc_id's accumulated (delta, freq) to the
// byte pool when docID moves on to a new document before a Commit fences
// the batch.
func (p *posting) addDoc(docID uint64, pool *bytepool.Pool) error {
	switch {
	case !p.pending:
		p.docNum++
		p.docDelta = docID - p.lastDocID
		p.freq++
		p.lastDocID = docID
	case p.lastDocID == docID:
		p.freq++
	default:
		if err := p.flush(pool); err != nil {
			return err
		}
		p.docDelta = docID - p.lastDocID
		p.lastDocID = docID
		p.docNum++
		p.freq = 1
	}
	return nil
}

// flush writes the posting's current (docDelta, freq) pair to the byte pool
// and advances docFreqAddr past it.
func (p *posting) flush(pool *bytepool.Pool) error {
	next, err := writeDocFreq(pool, p.docFreqAddr, DocFreq{Delta: p.docDelta, Freq: p.freq})
	if err != nil {
		return err
	}
	p.docFreqAddr = next
	return nil
}

// addrWriter adapts a bytepool.Pool + cursor into an io.Writer, so the
// DocFreq wire codec (which only knows about io.Writer) can write directly
// into pool-backed storage.
type addrWriter struct {
	pool *bytepool.Pool
	addr bytepool.Addr
}

func (w *addrWriter) Write(p []byte) (int, error) {
	next, err := w.pool.Write(w.addr, p)
	if err != nil {
		return 0, err
	}
	w.addr = next
	return len(p), nil
}

func writeDocFreq(pool *bytepool.Pool, addr bytepool.Addr, df DocFreq) (bytepool.Addr, error) {
	w := &addrWriter{pool: pool, addr: addr}
	if err := df.Serialize(w); err != nil {
		return 0, err
	}
	return w.addr, nil
}
