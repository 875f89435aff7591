// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package streambuffer offers B, an appendable byte buffer with reader-style
// consumption.
//
// B accumulates bytes through Feed as they arrive from some external source,
// and hands them out in order through Fill and Next. Consumed bytes are
// dropped lazily; the buffer periodically compacts itself so memory use stays
// proportional to the unconsumed span, not the total stream length.
//
// B is not safe for concurrent use.
package streambuffer

import (
	"io"
)

// B is an appendable byte buffer that tracks a read position.
//
// The zero value is an empty, open buffer ready for use.
type B struct {
	buf    []byte
	pos    int
	closed bool
}

// Feed appends a copy of p to the buffer.
//
// Feed panics if called after CloseFeed.
func (b *B) Feed(p []byte) {
	if b.closed {
		panic("streambuffer: Feed after CloseFeed")
	}

	// Reclaim the consumed prefix once it dominates the buffer.
	if b.pos > len(b.buf)/2 {
		b.Compact()
	}
	b.buf = append(b.buf, p...)
}

// CloseFeed marks the end of the byte stream. No further Feed calls are
// permitted.
func (b *B) CloseFeed() { b.closed = true }

// Closed returns whether CloseFeed has been called.
func (b *B) Closed() bool { return b.closed }

// Len returns the number of unconsumed bytes.
func (b *B) Len() int { return len(b.buf) - b.pos }

// Peek returns the next n unconsumed bytes without advancing the buffer.
//
// The returned slice references the underlying buffer and is only valid until
// the next Feed or Compact. If fewer than n bytes are available, ok is false
// and the available bytes are returned.
func (b *B) Peek(n int) (v []byte, ok bool) {
	v = b.buf[b.pos:]
	if n <= len(v) {
		return v[:n], true
	}
	return v, false
}

// Next returns the next n unconsumed bytes, advancing the buffer.
//
// Validity and short-count semantics match Peek.
func (b *B) Next(n int) (v []byte, ok bool) {
	v, ok = b.Peek(n)
	b.pos += len(v)
	return
}

// Skip discards up to n unconsumed bytes, returning the number discarded.
func (b *B) Skip(n int) int {
	if avail := b.Len(); n > avail {
		n = avail
	}
	b.pos += n
	return n
}

// Compact drops the consumed prefix, reusing the buffer's backing array.
//
// Any slices previously returned by Peek or Next become invalid.
func (b *B) Compact() {
	if b.pos == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.pos:])
	b.buf = b.buf[:n]
	b.pos = 0
}

// Read implements io.Reader over the unconsumed bytes.
//
// Read returns io.EOF only once the buffer is exhausted and CloseFeed has
// been called. An open, empty buffer reads zero bytes with a nil error.
func (b *B) Read(p []byte) (int, error) {
	v, _ := b.Next(len(p))
	amt := copy(p, v)
	if amt == 0 && len(p) > 0 && b.closed {
		return 0, io.EOF
	}
	return amt, nil
}
