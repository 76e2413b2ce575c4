// Package wire implements the two atom interchange codecs and the
// version-map wire form used by the replicated sequence's external
// interfaces. It is deliberately a thin serializer: framing, retries and
// the actual transport are the caller's problem.
package wire

import "errors"

// ErrShortBuffer is returned when a buffer is too small to contain a
// complete encoded value.
var ErrShortBuffer = errors.New("wire: short buffer")

// ErrVarintOverflow is returned when a LEB128 integer would require more
// than 10 bytes to decode (the maximum for a 64-bit value).
var ErrVarintOverflow = errors.New("wire: varint overflow")
