package govex

import "strings"

// Tokenizer splits a FieldText value's string into the individual term byte
// sequences FieldCache.Add indexes. Every other FieldType needs no
// Tokenizer: Value.TermBytes already collapses it to exactly one term.
//
// Tokenization itself is an external collaborator (spec.md Non-goals) —
// this package only defines the seam callers plug one into.
type Tokenizer interface {
	Tokenize(text string) [][]byte
}

// WhitespaceTokenizer splits on whitespace and lower-cases each term. It is
// the default an Index falls back to when no Tokenizer is supplied, enough
// for tests and simple callers; anything requiring stemming, stop-words, or
// Unicode segmentation should supply its own Tokenizer.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Tokenize(text string) [][]byte {
	fields := strings.Fields(text)
	terms := make([][]byte, len(fields))
	for i, f := range fields {
		terms[i] = []byte(strings.ToLower(f))
	}
	return terms
}
