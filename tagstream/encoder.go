// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"io"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/support/dataio"

	"github.com/pkg/errors"
)

// Encoder serializes tag records to a sink.
//
// Encoder is a reusable object; re-using one across writes avoids
// re-allocating its scratch space. It holds no stream state: the caller
// tracks the running previous-tag-size chain (or uses Writer, which does).
//
// Encoder is not safe for concurrent use.
type Encoder struct {
	scratch [flv.PrevTagSizeLen + flv.TagHeaderSize]byte
}

// EncodeTag writes one record: the previous-tag-size trailer of the prior
// tag, then tag's header, then its payload. It returns the number of bytes
// written.
//
// The header's DataSize is derived from the payload length, keeping the
// declared and actual sizes consistent by construction. A sink rejection is
// fatal and propagated immediately; no partial-write retry is attempted.
func (e *Encoder) EncodeTag(w io.Writer, tag *flv.Tag, prevTagSize uint32) (int, error) {
	hdr := tag.Header
	if len(tag.Payload) > flv.MaxDataSize {
		return 0, errors.Errorf("tag payload %d bytes exceeds maximum %d", len(tag.Payload), flv.MaxDataSize)
	}
	hdr.DataSize = uint32(len(tag.Payload))

	dataio.PutUint32(e.scratch[:flv.PrevTagSizeLen], prevTagSize)
	if err := hdr.PutBinary(e.scratch[flv.PrevTagSizeLen:]); err != nil {
		return 0, err
	}

	total, err := w.Write(e.scratch[:])
	if err != nil {
		return total, errors.Wrap(err, "writing tag header")
	}

	amt, err := w.Write(tag.Payload)
	total += amt
	if err != nil {
		return total, errors.Wrap(err, "writing tag payload")
	}

	encoderTags.Inc()
	encoderBytes.Add(float64(total))
	return total, nil
}

// EncodePrevTagSize writes a bare previous-tag-size field. This is the
// stream's closing trailer after the final tag.
func (e *Encoder) EncodePrevTagSize(w io.Writer, prevTagSize uint32) (int, error) {
	dataio.PutUint32(e.scratch[:flv.PrevTagSizeLen], prevTagSize)
	amt, err := w.Write(e.scratch[:flv.PrevTagSizeLen])
	if err != nil {
		return amt, errors.Wrap(err, "writing trailing tag size")
	}
	encoderBytes.Add(float64(amt))
	return amt, nil
}
