// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	"github.com/gengteng/flv/support/dataio"

	"github.com/pkg/errors"
)

const (
	// TagHeaderSize is the fixed encoded size of a TagHeader.
	TagHeaderSize = 11

	// PrevTagSizeLen is the encoded size of a previous-tag-size field.
	PrevTagSizeLen = 4

	// MaxDataSize is the largest payload size a tag can declare (UI24).
	MaxDataSize = 0xFFFFFF
)

// TagHeader is the fixed 11-byte header that precedes every tag payload.
//
// The encoded layout is a type byte, a 24-bit big-endian data size, a 24-bit
// big-endian timestamp plus an extension byte carrying its upper 8 bits, and
// a 24-bit stream ID.
type TagHeader struct {
	// Type is the tag's payload type.
	Type TagType
	// DataSize is the payload length in bytes.
	DataSize uint32
	// Timestamp is the tag's time in milliseconds, relative to the first tag
	// in the stream. The split UI24+UI8 encoding forms a signed 32-bit value,
	// preserved exactly on round-trip.
	Timestamp int32
	// StreamID is reserved and always zero in practice.
	StreamID uint32
}

// EncodedSize returns the number of bytes this tag occupies on the wire,
// excluding its previous-tag-size trailer. This is the value the trailer of
// the following record must carry.
func (h *TagHeader) EncodedSize() uint32 { return TagHeaderSize + h.DataSize }

// UnmarshalBinary decodes a TagHeader from the first TagHeaderSize bytes of
// data.
func (h *TagHeader) UnmarshalBinary(data []byte) error {
	if len(data) < TagHeaderSize {
		return errors.Errorf("tag header requires %d bytes, have %d", TagHeaderSize, len(data))
	}

	h.Type = TagType(data[0])
	h.DataSize = dataio.GetUint24(data[1:4])
	h.Timestamp = int32(uint32(data[7])<<24 | dataio.GetUint24(data[4:7]))
	h.StreamID = dataio.GetUint24(data[8:11])
	return nil
}

// PutBinary encodes h into buf, which must be at least TagHeaderSize bytes.
func (h *TagHeader) PutBinary(buf []byte) error {
	if h.DataSize > MaxDataSize {
		return errors.Errorf("tag data size %d exceeds maximum %d", h.DataSize, MaxDataSize)
	}
	if h.StreamID > MaxDataSize {
		return errors.Errorf("tag stream ID %d exceeds maximum %d", h.StreamID, MaxDataSize)
	}
	if len(buf) < TagHeaderSize {
		return errors.Errorf("tag header requires %d bytes, have %d", TagHeaderSize, len(buf))
	}

	buf[0] = byte(h.Type)
	dataio.PutUint24(buf[1:4], h.DataSize)
	ts := uint32(h.Timestamp)
	dataio.PutUint24(buf[4:7], ts)
	buf[7] = byte(ts >> 24)
	dataio.PutUint24(buf[8:11], h.StreamID)
	return nil
}

// MarshalBinary encodes h in its fixed byte layout.
func (h *TagHeader) MarshalBinary() ([]byte, error) {
	buf := make([]byte, TagHeaderSize)
	if err := h.PutBinary(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Tag is one discrete record of the stream: a TagHeader plus its payload.
//
// A Tag has a single owner at any time: the decoder transfers ownership to
// the caller on emit, and the encoder borrows the payload for the duration of
// a write.
type Tag struct {
	Header  TagHeader
	Payload []byte
}

// IsKeyframe reports whether t is a video tag whose payload prefix marks a
// keyframe. Keyframes are the default seek targets.
func (t *Tag) IsKeyframe() bool {
	if t.Header.Type != TagTypeVideo || len(t.Payload) == 0 {
		return false
	}
	vh, err := ParseVideoDataHeader(t.Payload[0])
	if err != nil {
		return false
	}
	return vh.FrameType == FrameTypeKey
}

// AudioHeader parses the one-byte audio payload prefix of an audio tag.
func (t *Tag) AudioHeader() (AudioDataHeader, error) {
	if t.Header.Type != TagTypeAudio {
		return AudioDataHeader{}, errors.Errorf("not an audio tag: %s", t.Header.Type)
	}
	if len(t.Payload) == 0 {
		return AudioDataHeader{}, errors.New("empty audio payload")
	}
	return ParseAudioDataHeader(t.Payload[0])
}

// VideoHeader parses the one-byte video payload prefix of a video tag.
func (t *Tag) VideoHeader() (VideoDataHeader, error) {
	if t.Header.Type != TagTypeVideo {
		return VideoDataHeader{}, errors.Errorf("not a video tag: %s", t.Header.Type)
	}
	if len(t.Payload) == 0 {
		return VideoDataHeader{}, errors.New("empty video payload")
	}
	return ParseVideoDataHeader(t.Payload[0])
}
