package fieldcache

import (
	"io"
	"iter"

	"github.com/arvindp/govex/bytepool"
)

// Reader is a read-only view over a FieldCache's committed term map. Terms
// iterates in sorted byte order, which is the order a segment flush needs
// to build a field's FST and concatenated posting block.
type Reader struct {
	fc *FieldCache
}

// TermEntry is one term's committed posting extent, ready for a
// PostingReader or for direct copy into a segment's posting block.
type TermEntry struct {
	Term   string
	Start  bytepool.Addr
	End    bytepool.Addr
	DocNum int
}

// Len reports the number of distinct terms currently held, letting a
// segment flush size its bloom filter to the field's actual term count
// instead of a guess.
func (r *Reader) Len() int { return r.fc.Len() }

// Terms yields every term currently in the cache, in sorted order.
func (r *Reader) Terms() iter.Seq[TermEntry] {
	return func(yield func(TermEntry) bool) {
		for rec := range r.fc.terms.Iterator() {
			entry := TermEntry{
				Term:   rec.Key,
				Start:  rec.Value.byteAddr,
				End:    rec.Value.docFreqAddr,
				DocNum: rec.Value.docNum,
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Posting opens a PostingReader over term's committed byte range, or
// reports ok=false if the term is absent.
func (r *Reader) Posting(term string) (*PostingReader, bool, error) {
	p, ok := r.fc.terms.Get(term)
	if !ok {
		return nil, false, nil
	}
	pr, err := NewPostingReader(r.fc.pool, p.byteAddr, p.docFreqAddr, p.docNum)
	if err != nil {
		return nil, false, err
	}
	return pr, true, nil
}

// RawBytes copies a term's entire committed posting stream out of the byte
// pool as one contiguous slice, spanning however many blocks it lives in.
// A segment flush uses this to copy the raw serialized (delta, freq) pairs
// straight into its posting block without re-decoding and re-encoding them.
func (r *Reader) RawBytes(start, end bytepool.Addr) ([]byte, error) {
	br, err := bytepool.NewReader(r.fc.pool, start, end)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(br)
}

// PostingReader decodes a committed posting stream back into absolute
// doc_ids and per-document frequencies.
type PostingReader struct {
	r       *bytepool.Reader
	docID   uint64
	remain  int
}

// NewPostingReader opens a pull reader over [start, end) expecting exactly
// docNum DocFreq entries.
func NewPostingReader(pool *bytepool.Pool, start, end bytepool.Addr, docNum int) (*PostingReader, error) {
	if docNum == 0 {
		return &PostingReader{remain: 0}, nil
	}
	r, err := bytepool.NewReader(pool, start, end)
	if err != nil {
		return nil, err
	}
	return &PostingReader{r: r, remain: docNum}, nil
}

// Next returns the next (doc_id, freq) pair, or ok=false once the stream is
// exhausted.
func (pr *PostingReader) Next() (docID uint64, freq uint64, ok bool, err error) {
	if pr.remain == 0 {
		return 0, 0, false, nil
	}
	df, err := DeserializeDocFreq(pr.r)
	if err != nil {
		return 0, 0, false, err
	}
	pr.docID += df.Delta
	pr.remain--
	return pr.docID, df.Freq, true, nil
}
