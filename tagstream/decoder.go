// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"io"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/seekindex"
	"github.com/gengteng/flv/support/bufferpool"
	"github.com/gengteng/flv/support/dataio"
	"github.com/gengteng/flv/support/logging"

	"github.com/pkg/errors"
)

// decodeState identifies the structure the Decoder is waiting on.
type decodeState int

const (
	stateAwaitPrevSize decodeState = iota
	stateAwaitTagHeader
	stateAwaitPayload
	stateEndOfStream
)

// Decoder decodes the repeating FLV tag record sequence from a Source.
//
// Decoder is a resumable state machine: a call that returns ErrNeedMoreData
// has consumed whatever bytes were available, retains them, and a later call
// continues from the same point. The decode logic is identical for blocking
// and suspend-capable sources.
//
// Decoder must be positioned at a previous-tag-size field, which is where a
// stream's tag data begins and where every seek index entry points.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	// Logger, if not nil, receives recoverable stream warnings.
	Logger logging.L

	// ReusePayloads, if true, backs emitted payloads with an internal
	// reusable buffer; an emitted Tag's payload is then only valid until the
	// next Next call. When false (the default), every emitted payload is
	// freshly allocated and owned by the caller.
	ReusePayloads bool

	src   Source
	state decodeState

	// field buffers the fixed-size structure currently being read.
	field [flv.TagHeaderSize]byte
	fill  int

	hdr         flv.TagHeader
	declared    uint32
	payload     []byte
	payloadFill int

	// expectPrev is the encoded size of the previously decoded tag, or
	// seekindex.PrevSizeUnknown when decoding resumed at an unverified
	// boundary.
	expectPrev uint32

	// offset is the absolute stream offset of the next unconsumed byte.
	offset int64
	// recordStart is the offset of the current record's previous-tag-size
	// field.
	recordStart int64

	tags       int64
	mismatches int64

	pool    bufferpool.Pool
	scratch *bufferpool.Buffer
}

// NewDecoder returns a Decoder consuming src, positioned at stream offset 0
// with an expected previous tag size of zero.
//
// Most callers are positioned elsewhere; see Reset.
func NewDecoder(src Source) *Decoder {
	d := &Decoder{}
	d.Reset(src, 0, 0)
	return d
}

// Reset repositions the decoder.
//
// src yields bytes starting at absolute stream offset, which must be a
// previous-tag-size boundary. prevSize is the encoded size of the tag
// preceding that boundary, used to validate the field about to be read; pass
// 0 at the start of tag data, or seekindex.PrevSizeUnknown to skip the check.
//
// Any partially decoded structure is discarded.
func (d *Decoder) Reset(src Source, offset int64, prevSize uint32) {
	d.src = src
	d.state = stateAwaitPrevSize
	d.fill = 0
	d.payload = nil
	d.payloadFill = 0
	d.expectPrev = prevSize
	d.offset = offset
	d.recordStart = offset
	d.tags = 0
	d.mismatches = 0
}

// Next decodes the next tag into tag.
//
// Next returns io.EOF at a clean end of stream: source exhaustion exactly at
// a record boundary, with no bytes of the pending structure consumed. An end
// of stream anywhere else fails with a *flv.TruncatedError. ErrNeedMoreData
// is returned when a suspend-capable source runs dry mid-decode; the call can
// be repeated once more bytes are fed.
//
// On success the emitted tag is owned by the caller (but see ReusePayloads).
func (d *Decoder) Next(tag *flv.Tag) error {
	for {
		switch d.state {
		case stateEndOfStream:
			return io.EOF

		case stateAwaitPrevSize:
			if d.fill == 0 {
				d.recordStart = d.offset
			}
			switch err := d.fillField(flv.PrevTagSizeLen, "previous tag size", true); err {
			case nil:
			case io.EOF:
				d.state = stateEndOfStream
				return io.EOF
			default:
				return err
			}
			d.declared = dataio.GetUint32(d.field[:flv.PrevTagSizeLen])
			d.checkPrevSize()
			d.state, d.fill = stateAwaitTagHeader, 0

		case stateAwaitTagHeader:
			// Exhaustion here is still a clean end: the previous-tag-size
			// field just consumed was the stream's closing trailer.
			switch err := d.fillField(flv.TagHeaderSize, "tag header", true); err {
			case nil:
			case io.EOF:
				d.state = stateEndOfStream
				return io.EOF
			default:
				return err
			}
			if err := d.hdr.UnmarshalBinary(d.field[:flv.TagHeaderSize]); err != nil {
				return errors.Wrapf(err, "parsing tag header at offset %d", d.offset-flv.TagHeaderSize)
			}
			d.beginPayload()
			d.state = stateAwaitPayload

		case stateAwaitPayload:
			if err := d.fillPayload(); err != nil {
				return err
			}
			d.emit(tag)
			return nil
		}
	}
}

// fillField tops up the fixed-size structure buffer to n bytes.
func (d *Decoder) fillField(n int, what string, allowCleanEOF bool) error {
	for d.fill < n {
		amt, err := d.src.Fill(d.field[d.fill:n])
		d.fill += amt
		d.offset += int64(amt)
		decoderBytes.Add(float64(amt))

		switch err {
		case nil:
		case ErrNeedMoreData:
			return ErrNeedMoreData
		case io.EOF, io.ErrUnexpectedEOF:
			if d.fill == 0 && allowCleanEOF {
				return io.EOF
			}
			return &flv.TruncatedError{
				Offset: d.offset,
				What:   what,
				Needed: n,
				Got:    d.fill,
			}
		default:
			return errors.Wrapf(err, "reading %s at offset %d", what, d.offset)
		}
	}
	return nil
}

func (d *Decoder) beginPayload() {
	size := int(d.hdr.DataSize)
	if d.ReusePayloads {
		if d.scratch != nil {
			d.scratch.Release()
		}
		d.scratch = d.pool.Get(size)
		d.payload = d.scratch.Bytes()
	} else {
		d.payload = make([]byte, size)
	}
	d.payloadFill = 0
}

func (d *Decoder) fillPayload() error {
	n := int(d.hdr.DataSize)
	for d.payloadFill < n {
		amt, err := d.src.Fill(d.payload[d.payloadFill:n])
		d.payloadFill += amt
		d.offset += int64(amt)
		decoderBytes.Add(float64(amt))

		switch err {
		case nil:
		case ErrNeedMoreData:
			return ErrNeedMoreData
		case io.EOF, io.ErrUnexpectedEOF:
			// A truncated payload is never a clean end, even at zero bytes:
			// the tag header already promised DataSize more.
			return &flv.TruncatedError{
				Offset: d.offset,
				What:   "tag payload",
				Needed: n,
				Got:    d.payloadFill,
			}
		default:
			return errors.Wrapf(err, "reading tag payload at offset %d", d.offset)
		}
	}
	return nil
}

func (d *Decoder) emit(tag *flv.Tag) {
	tag.Header = d.hdr
	tag.Payload = d.payload
	d.payload = nil

	d.expectPrev = d.hdr.EncodedSize()
	d.state, d.fill = stateAwaitPrevSize, 0
	d.tags++
	decoderTags.Inc()
}

// checkPrevSize compares the declared previous-tag-size against the size of
// the tag actually decoded before it. Some encoders populate the field
// incorrectly, so a mismatch is a recoverable warning, not a failure.
func (d *Decoder) checkPrevSize() {
	if d.expectPrev == seekindex.PrevSizeUnknown || d.declared == d.expectPrev {
		return
	}
	d.mismatches++
	decoderPrevSizeMismatches.Inc()
	logging.Must(d.Logger).Warnf(
		"previous tag size mismatch at offset %d: stream declares %d, prior tag encoded %d",
		d.recordStart, d.declared, d.expectPrev)
}

// Offset returns the absolute stream offset of the next unconsumed byte.
func (d *Decoder) Offset() int64 { return d.offset }

// LastRecordOffset returns the offset of the previous-tag-size field that
// opened the most recently decoded record. Together with LastPrevTagSize it
// forms a seek index entry for the emitted tag.
func (d *Decoder) LastRecordOffset() int64 { return d.recordStart }

// LastPrevTagSize returns the previous-tag-size value the stream declared at
// LastRecordOffset.
func (d *Decoder) LastPrevTagSize() uint32 { return d.declared }

// NumTags returns the number of tags decoded since the last Reset.
func (d *Decoder) NumTags() int64 { return d.tags }

// PrevSizeMismatches returns the number of previous-tag-size mismatches
// observed.
func (d *Decoder) PrevSizeMismatches() int64 { return d.mismatches }
