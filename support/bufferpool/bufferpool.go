// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bufferpool maintains reusable byte buffers for scratch space whose
// size is only known at runtime, such as tag payloads.
package bufferpool

import (
	"sync"
)

// Pool maintains a pool of buffers, allocating new ones when none are
// available.
//
// Pool is safe for concurrent use.
type Pool struct {
	base sync.Pool
}

// Get returns a Buffer whose Bytes slice has length n.
//
// The slice contents are unspecified; callers that need zeroed memory must
// clear it themselves. The caller should return the buffer to the pool by
// calling its Release method when done with it.
func (p *Pool) Get(n int) *Buffer {
	b, ok := p.base.Get().(*Buffer)
	if !ok {
		b = &Buffer{}
	}
	b.pool = p

	if cap(b.bytes) < n {
		b.bytes = make([]byte, n)
	} else {
		b.bytes = b.bytes[:n]
	}
	return b
}

// Buffer is a byte buffer that can be released into a Pool for reuse.
//
// Failure to release a Buffer will not cause a memory leak, but will prevent
// its reuse.
type Buffer struct {
	bytes []byte
	pool  *Pool
}

// Bytes returns the buffer's current byte slice.
//
// The slice is invalidated by Release.
func (b *Buffer) Bytes() []byte { return b.bytes }

// Release returns the buffer to its pool. Release is a no-op on a buffer that
// has already been released.
func (b *Buffer) Release() {
	if b.pool == nil {
		return
	}
	p := b.pool
	b.pool = nil
	p.base.Put(b)
}
