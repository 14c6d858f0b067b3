package segment

import "errors"

// ErrBadMagicNumber is returned when a segment file's trailing 8 bytes do
// not match Magic, indicating truncation or corruption.
var ErrBadMagicNumber = errors.New("segment: bad magic number")

// ErrDocumentNotFound is returned when a local doc_id has no entry in the
// segment's doc-offset table.
var ErrDocumentNotFound = errors.New("segment: document not found")
