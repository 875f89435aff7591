// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package tagstream decodes and encodes FLV tag streams.
//
// The centerpiece is Decoder, a three-state machine over the repeating
// (previous-tag-size, tag header, payload) record sequence. Decoder reads
// from a Source, the package's byte supply capability. Two Sources are
// provided with identical decode semantics layered on top:
//
//   - ReaderSource wraps any io.Reader and blocks until bytes arrive; a
//     stream that ends mid-structure fails that call with a TruncatedError.
//   - ChunkSource is fed byte chunks as they become available; a decode call
//     that cannot make progress returns ErrNeedMoreData and a later call
//     resumes from the exact same state with no bytes re-read.
//
// Session and Writer orchestrate the codec into stateful stream cursors:
// Session parses the file header, emits tags, feeds an optional
// seekindex.Index, and repositions through it on Seek; Writer maintains the
// running previous-tag-size chain and finalizes the trailing size field.
//
// A decoded seek index can be persisted to a compact sidecar file
// (WriteSidecar/LoadSidecar), optionally compressed, so later sessions can
// seek without a prior full scan.
package tagstream
