// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	"fmt"

	"github.com/gengteng/flv/support/fmtutil"
)

// MalformedHeaderError indicates that file header bytes failed structural
// validation. The stream is unusable.
type MalformedHeaderError struct {
	// Reason describes the failed check.
	Reason string
	// Bytes holds the offending encoded header bytes, when available.
	Bytes []byte
}

func (e *MalformedHeaderError) Error() string {
	if len(e.Bytes) == 0 {
		return fmt.Sprintf("malformed file header: %s", e.Reason)
	}
	return fmt.Sprintf("malformed file header: %s: %s", e.Reason, fmtutil.HexSlice(e.Bytes))
}

// TruncatedError indicates that the byte stream ended in the middle of a
// required structure.
//
// The error is fatal for the call that produced it, but the stream may be
// reopened at another offset.
type TruncatedError struct {
	// Offset is the absolute stream offset at which more bytes were required.
	Offset int64
	// What names the structure being read.
	What string
	// Needed is the structure's total size in bytes.
	Needed int
	// Got is the number of those bytes that were available.
	Got int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated stream at offset %d: %s needed %d bytes, got %d",
		e.Offset, e.What, e.Needed, e.Got)
}

// FieldError indicates that a payload prefix subfield held a value outside
// its enumeration.
type FieldError struct {
	// Field names the subfield.
	Field string
	// Value is the raw decoded value.
	Value uint8
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: 0x%02X", e.Field, e.Value)
}
