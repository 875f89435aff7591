// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"
)

// Hex is a byte slice that renders as a hex-dumped string.
//
// It can be used for easy lazy hex dumping.
type Hex []byte

func (h Hex) String() string { return hex.Dump([]byte(h)) }

// HexSlice is a byte slice that renders as a sequence of hex bytes, instead
// of the default decimal bytes.
//
// Output as: "[4]byte{0x10, 0x20, 0x30, 0x40}"
type HexSlice []byte

func (hs HexSlice) String() string {
	var sb bytes.Buffer
	sb.Grow((6 * len(hs)) + 16) // 16 is more than we need for static content.
	fmt.Fprintf(&sb, "[%d]byte{", len(hs))
	for i, b := range hs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "0x%02X", b)
	}
	sb.WriteString("}")
	return sb.String()
}

// Milliseconds renders a millisecond timestamp as "h:mm:ss.mmm".
//
// Negative timestamps render with a leading minus sign.
func Milliseconds(ms int32) string {
	neg := ""
	v := int64(ms)
	if v < 0 {
		neg, v = "-", -v
	}

	d := time.Duration(v) * time.Millisecond
	h := int(d / time.Hour)
	m := int(d / time.Minute % 60)
	s := int(d / time.Second % 60)
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", neg, h, m, s, v%1000)
}
