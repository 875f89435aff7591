// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dataio exposes byte-granular reader and writer capabilities, plus
// the big-endian field helpers used by the FLV wire codecs.
package dataio

import (
	"io"
)

// Reader is a Reader that can read both individual bytes and sequences of
// bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// MakeReader returns a Reader for the specified io.Reader.
func MakeReader(r io.Reader) Reader {
	if dr, ok := r.(Reader); ok {
		return dr
	}
	return &simulatedReader{r}
}

type simulatedReader struct {
	io.Reader
}

func (r *simulatedReader) ReadByte() (v byte, err error) {
	var d [1]byte
	var amt int

	amt, err = r.Read(d[:])
	if amt == 1 {
		v = d[0]
	}
	return
}

// Writer is a Writer that can write both individual bytes and sequences of
// bytes.
type Writer interface {
	io.Writer
	io.ByteWriter
}

// MakeWriter returns a Writer for the specified io.Writer.
func MakeWriter(w io.Writer) Writer {
	if dw, ok := w.(Writer); ok {
		return dw
	}
	return &simulatedWriter{w}
}

type simulatedWriter struct {
	io.Writer
}

func (w *simulatedWriter) WriteByte(c byte) error {
	d := [1]byte{c}
	switch amt, err := w.Write(d[:]); {
	case err != nil:
		return err
	case amt != 1:
		panic("invalid Writer implementation")
	default:
		return nil
	}
}

// ReadFull reads from r until buf is full, or until an error is encountered.
// It returns the number of bytes read.
//
// This accommodates the fact that io.Reader is allowed to return less than
// the full buffer size without erroring. Unlike io.ReadFull, a clean end of
// stream with zero bytes read is reported as io.EOF and a partial fill as
// io.ErrUnexpectedEOF.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		amt, err := r.Read(buf[total:])
		total += amt
		if err != nil {
			if err == io.EOF {
				if total == len(buf) {
					return total, nil
				}
				if total > 0 {
					return total, io.ErrUnexpectedEOF
				}
			}
			return total, err
		}
	}
	return total, nil
}
