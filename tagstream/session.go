// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"bufio"
	"io"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/seekindex"
	"github.com/gengteng/flv/support/logging"

	"github.com/pkg/errors"
)

// defaultBufferSize is the buffered reader/writer size used by sessions.
const defaultBufferSize = 256 * 1024

// SessionConfig configures a read Session.
type SessionConfig struct {
	// Index, if not nil, observes every decoded tag and resolves Seek calls.
	// Leaving it nil makes the session a plain sequential cursor with no
	// indexing overhead.
	Index *seekindex.Index

	// Logger, if not nil, receives recoverable stream warnings.
	Logger logging.L

	// ReusePayloads is passed through to the Decoder; see its documentation.
	ReusePayloads bool

	// BufferSize is the read buffer size. If <= 0, a default is used.
	BufferSize int
}

// Session is a stateful sequential cursor over one FLV stream.
//
// A Session is a single-reader cursor: it is not safe for concurrent use
// without external synchronization. Its attached Index, if any, may be shared
// with other readers; the index serializes internally.
type Session struct {
	cfg SessionConfig
	hdr flv.FileHeader

	base io.ReadSeeker
	br   *bufio.Reader
	src  *ReaderSource
	dec  Decoder
}

// OpenSession parses the stream's file header from r and returns a Session
// positioned at the start of tag data.
func (cfg *SessionConfig) OpenSession(r io.ReadSeeker) (*Session, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "seeking to stream start")
	}

	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	br := bufio.NewReaderSize(r, size)

	hdr, err := flv.ReadFileHeader(br)
	if err != nil {
		return nil, err
	}

	// Versions beyond 1 may carry a larger header; the gap is skipped, not
	// interpreted.
	if gap := int64(hdr.DataOffset) - flv.FileHeaderSize; gap > 0 {
		if _, err := io.CopyN(io.Discard, br, gap); err != nil {
			return nil, errors.Wrap(err, "skipping to data offset")
		}
	}

	s := Session{
		cfg:  *cfg,
		hdr:  hdr,
		base: r,
		br:   br,
		src:  NewReaderSource(br),
	}
	s.dec.Logger = cfg.Logger
	s.dec.ReusePayloads = cfg.ReusePayloads
	s.dec.Reset(s.src, int64(hdr.DataOffset), 0)
	return &s, nil
}

// Header returns the stream's file header.
func (s *Session) Header() flv.FileHeader { return s.hdr }

// NextTag decodes the next tag into tag, reporting it to the session's index.
//
// NextTag returns io.EOF at a clean end of stream.
func (s *Session) NextTag(tag *flv.Tag) error {
	if err := s.dec.Next(tag); err != nil {
		return err
	}
	if s.cfg.Index != nil {
		s.cfg.Index.Observe(tag, s.dec.LastRecordOffset(), s.dec.LastPrevTagSize())
	}
	return nil
}

// Position returns the absolute stream offset of the next unconsumed byte.
func (s *Session) Position() int64 { return s.dec.Offset() }

// PrevSizeMismatches returns the decoder's recoverable warning count since
// the session last repositioned.
func (s *Session) PrevSizeMismatches() int64 { return s.dec.PrevSizeMismatches() }

// Seek repositions the session at the nearest indexed boundary with
// timestamp <= target, falling back to the start of tag data when the index
// has no preceding entry (or the session has no index).
//
// It returns the entry actually seeked to. Decoding resumes there; the
// caller reaches the exact target by scanning forward with NextTag.
func (s *Session) Seek(target int32) (seekindex.Entry, error) {
	entry, ok := seekindex.Entry{}, false
	if s.cfg.Index != nil {
		entry, ok = s.cfg.Index.Lookup(target)
	}
	if !ok {
		entry = seekindex.Entry{
			Timestamp:   0,
			Offset:      int64(s.hdr.DataOffset),
			PrevTagSize: 0,
		}
	}

	if _, err := s.base.Seek(entry.Offset, io.SeekStart); err != nil {
		return entry, errors.Wrapf(err, "seeking to offset %d", entry.Offset)
	}
	s.br.Reset(s.base)
	s.src.Reset(s.br)
	s.dec.Reset(s.src, entry.Offset, entry.PrevTagSize)
	return entry, nil
}

// WriterConfig configures a Writer.
type WriterConfig struct {
	// Logger, if not nil, receives write-path diagnostics.
	Logger logging.L

	// BufferSize is the write buffer size. If <= 0, a default is used.
	BufferSize int
}

// Writer is a stateful encode session: it owns the running previous-tag-size
// chain and finalizes the stream's trailing size field.
//
// Writer is a single-writer cursor and is not safe for concurrent use.
type Writer struct {
	logger logging.L

	bw     *bufio.Writer
	closer io.Closer

	enc         Encoder
	prevTagSize uint32
	finished    bool

	tags  int64
	bytes int64
}

// NewWriter writes hdr to w and returns a Writer positioned for the first
// tag.
//
// If w is an io.Closer, the Writer takes ownership of it on success and
// Close will release it.
func (cfg *WriterConfig) NewWriter(w io.Writer, hdr flv.FileHeader) (*Writer, error) {
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	bw := bufio.NewWriterSize(w, size)

	if _, err := hdr.WriteTo(bw); err != nil {
		return nil, err
	}

	sw := Writer{
		logger: logging.Must(cfg.Logger),
		bw:     bw,
		bytes:  flv.FileHeaderSize,
	}
	if c, ok := w.(io.Closer); ok {
		sw.closer = c
	}
	return &sw, nil
}

// WriteTag appends tag to the stream, returning the number of bytes written.
func (sw *Writer) WriteTag(tag *flv.Tag) (int, error) {
	if sw.finished {
		return 0, errors.New("writer is finished")
	}

	amt, err := sw.enc.EncodeTag(sw.bw, tag, sw.prevTagSize)
	sw.bytes += int64(amt)
	if err != nil {
		return amt, err
	}

	// EncodeTag derives the declared size from the payload; chain the same
	// value, not whatever DataSize the caller left in the header.
	sw.prevTagSize = flv.TagHeaderSize + uint32(len(tag.Payload))
	sw.tags++
	return amt, nil
}

// Finish writes the stream's trailing previous-tag-size field and flushes
// all buffered bytes to the sink. The sink stays open; use Close to release
// it.
func (sw *Writer) Finish() error {
	if sw.finished {
		return nil
	}
	sw.finished = true

	amt, err := sw.enc.EncodePrevTagSize(sw.bw, sw.prevTagSize)
	sw.bytes += int64(amt)
	if err != nil {
		return err
	}
	if err := sw.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing stream")
	}

	sw.logger.Debugf("finished stream: %d tags, %d bytes", sw.tags, sw.bytes)
	return nil
}

// Close finalizes the stream if Finish has not run, then releases the sink.
//
// The sink is closed on all exit paths: a finalization failure still closes
// it, and the first error encountered is returned.
func (sw *Writer) Close() (err error) {
	if sw.closer != nil {
		defer func() {
			closeErr := sw.closer.Close()
			if err == nil {
				err = closeErr
			}
			sw.closer = nil
		}()
	}

	err = sw.Finish()
	return
}

// NumTags returns the number of tags written so far.
func (sw *Writer) NumTags() int64 { return sw.tags }

// NumBytes returns the number of bytes written so far, including the file
// header.
func (sw *Writer) NumBytes() int64 { return sw.bytes }
