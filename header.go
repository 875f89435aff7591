// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	"bytes"
	"io"

	"github.com/gengteng/flv/support/dataio"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Signature is the magic byte sequence that opens every FLV stream.
var Signature = [3]byte{'F', 'L', 'V'}

const (
	// Version1 is the file version emitted by this package.
	Version1 = 0x01

	// FileHeaderSize is the fixed encoded size of a FileHeader.
	FileHeaderSize = 9
)

// FileHeader flag bits.
const (
	flagHasAudio = 0x04
	flagHasVideo = 0x01
)

// FileHeader is the fixed header at the start of every FLV stream.
//
// The encoded layout is the signature, a version byte, a flags byte, and a
// 4-byte big-endian data offset. A FileHeader is created once per stream and
// is immutable after parse.
type FileHeader struct {
	Signature [3]byte
	Version   uint8
	Flags     uint8
	// DataOffset is the absolute byte offset at which the tag record sequence
	// begins. Version 1 streams use FileHeaderSize; larger values leave a gap
	// that decoders must skip.
	DataOffset uint32
}

// NewFileHeader returns a version 1 FileHeader with the standard data offset
// and the supplied stream presence flags.
func NewFileHeader(hasAudio, hasVideo bool) FileHeader {
	h := FileHeader{
		Signature:  Signature,
		Version:    Version1,
		DataOffset: FileHeaderSize,
	}
	h.SetHasAudio(hasAudio)
	h.SetHasVideo(hasVideo)
	return h
}

// HasAudio returns whether the header declares audio tags present.
func (h *FileHeader) HasAudio() bool { return h.Flags&flagHasAudio != 0 }

// HasVideo returns whether the header declares video tags present.
func (h *FileHeader) HasVideo() bool { return h.Flags&flagHasVideo != 0 }

// SetHasAudio sets the audio presence flag.
func (h *FileHeader) SetHasAudio(v bool) { h.setFlag(flagHasAudio, v) }

// SetHasVideo sets the video presence flag.
func (h *FileHeader) SetHasVideo(v bool) { h.setFlag(flagHasVideo, v) }

func (h *FileHeader) setFlag(mask uint8, v bool) {
	if v {
		h.Flags |= mask
	} else {
		h.Flags &^= mask
	}
}

// UnmarshalBinary decodes and validates a FileHeader from data.
//
// Reserved flag bits are preserved but not validated, for compatibility with
// future format revisions.
func (h *FileHeader) UnmarshalBinary(data []byte) error {
	if len(data) < FileHeaderSize {
		return errors.Errorf("file header requires %d bytes, have %d", FileHeaderSize, len(data))
	}
	data = data[:FileHeaderSize]

	if err := struc.Unpack(bytes.NewReader(data), h); err != nil {
		return errors.Wrap(err, "unpacking file header")
	}

	if h.Signature != Signature {
		return &MalformedHeaderError{
			Reason: "bad signature",
			Bytes:  append([]byte(nil), data...),
		}
	}
	if h.DataOffset < FileHeaderSize {
		return &MalformedHeaderError{
			Reason: "data offset inside header",
			Bytes:  append([]byte(nil), data...),
		}
	}
	return nil
}

// MarshalBinary encodes h in its fixed byte layout.
func (h *FileHeader) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(FileHeaderSize)
	if err := struc.Pack(&buf, h); err != nil {
		return nil, errors.Wrap(err, "packing file header")
	}
	return buf.Bytes(), nil
}

// ReadFileHeader consumes exactly FileHeaderSize bytes from r and parses
// them.
//
// If fewer bytes are available, a TruncatedError at offset 0 is returned.
func ReadFileHeader(r io.Reader) (FileHeader, error) {
	var h FileHeader
	var buf [FileHeaderSize]byte

	switch amt, err := dataio.ReadFull(r, buf[:]); err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		return h, &TruncatedError{
			Offset: 0,
			What:   "file header",
			Needed: FileHeaderSize,
			Got:    amt,
		}
	default:
		return h, errors.Wrap(err, "reading file header")
	}

	err := h.UnmarshalBinary(buf[:])
	return h, err
}

// WriteTo serializes h to w, implementing io.WriterTo.
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	if err := struc.Pack(w, h); err != nil {
		return 0, errors.Wrap(err, "writing file header")
	}
	return FileHeaderSize, nil
}
