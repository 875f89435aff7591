// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"io"

	"github.com/gengteng/flv/support/streambuffer"

	"github.com/pkg/errors"
)

// ErrNeedMoreData is returned by a suspend-capable Source, and propagated by
// Decoder, when the bytes on hand cannot complete the current structure but
// the stream has not ended. The caller supplies more bytes and retries; no
// state is lost.
var ErrNeedMoreData = errors.New("need more data")

// Source supplies bytes to a Decoder.
//
// A Source is a sequential cursor: bytes handed out are consumed and never
// re-read.
type Source interface {
	// Fill copies up to len(p) bytes into p, advancing the source past the
	// bytes copied, and returns the number copied.
	//
	// A nil error means p was filled completely. ErrNeedMoreData means the
	// source is currently exhausted but the stream has not ended; a later
	// call may yield more. io.EOF means the stream ended with no bytes
	// copied by this call, io.ErrUnexpectedEOF that it ended after copying
	// some. Any other error is fatal.
	Fill(p []byte) (int, error)
}

// ReaderSource is a blocking Source over an io.Reader.
//
// Fill blocks until the requested bytes arrive or the reader fails; it never
// returns ErrNeedMoreData.
type ReaderSource struct {
	r io.Reader
}

// NewReaderSource returns a Source reading from r.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r}
}

// Reset redirects the source to a new reader.
func (s *ReaderSource) Reset(r io.Reader) { s.r = r }

// Fill implements Source.
func (s *ReaderSource) Fill(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		amt, err := s.r.Read(p[total:])
		total += amt
		if err != nil {
			if err == io.EOF && total > 0 && total < len(p) {
				err = io.ErrUnexpectedEOF
			}
			if total == len(p) {
				err = nil
			}
			return total, err
		}
	}
	return total, nil
}

// ChunkSource is a suspend-capable Source fed by the caller.
//
// Bytes arrive through Feed in whatever chunking the transport produces.
// When the buffered bytes cannot satisfy a Fill, it returns ErrNeedMoreData
// rather than blocking. Once the transport ends, CloseFeed converts
// exhaustion into end-of-stream.
//
// ChunkSource is not safe for concurrent use; Feed and the decode calls must
// come from one goroutine or be externally serialized.
type ChunkSource struct {
	buf streambuffer.B
}

// Feed appends a copy of p to the pending bytes.
func (s *ChunkSource) Feed(p []byte) { s.buf.Feed(p) }

// CloseFeed marks the end of the byte stream.
func (s *ChunkSource) CloseFeed() { s.buf.CloseFeed() }

// Buffered returns the number of fed bytes not yet consumed.
func (s *ChunkSource) Buffered() int { return s.buf.Len() }

// Fill implements Source.
func (s *ChunkSource) Fill(p []byte) (int, error) {
	v, ok := s.buf.Next(len(p))
	amt := copy(p, v)
	if ok {
		return amt, nil
	}

	if !s.buf.Closed() {
		return amt, ErrNeedMoreData
	}
	if amt == 0 {
		return 0, io.EOF
	}
	return amt, io.ErrUnexpectedEOF
}
