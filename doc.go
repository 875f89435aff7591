// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package flv defines the wire types of the FLV container format and their
// field-level codecs.
//
// An FLV byte stream consists of:
//
//   - A fixed 9-byte FileHeader: the "FLV" signature, a version byte, stream
//     presence flags, and the offset at which tag data begins.
//   - A repeating record sequence. Each record is a 4-byte big-endian
//     previous-tag-size field (zero before the first tag), an 11-byte
//     TagHeader, and the tag payload.
//
// Tag payloads are treated as opaque byte blocks. The only payload knowledge
// in this package is the optional one-byte prefix convention of audio and
// video tags (AudioDataHeader, VideoDataHeader), and the AMF0-encoded
// "onMetaData" script payload (ParseMetaData), both inherited from the format
// specification.
//
// Streaming decode/encode over these types, including incremental input,
// seeking, and index persistence, lives in the tagstream package. The bounded
// timestamp index itself lives in the seekindex package.
package flv
