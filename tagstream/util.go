// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"bufio"
	"compress/gzip"
	"io"

	"github.com/gengteng/flv/support/dataio"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Compression enumerates sidecar payload compression schemes.
type Compression uint8

const (
	// CompressionNone stores sidecar records uncompressed.
	CompressionNone Compression = iota
	// CompressionSnappy compresses sidecar records with snappy framing.
	CompressionSnappy
	// CompressionGzip compresses sidecar records with gzip.
	CompressionGzip
)

var compressionNames = map[Compression]string{
	CompressionNone:   "NONE",
	CompressionSnappy: "SNAPPY",
	CompressionGzip:   "GZIP",
}

func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseCompression maps a name produced by String back to its value.
func ParseCompression(v string) (Compression, error) {
	for c, name := range compressionNames {
		if name == v {
			return c, nil
		}
	}
	return 0, errors.Errorf("unknown compression type: %q", v)
}

const sidecarBufferSize = 1024 * 64

type sidecarReader struct {
	// Currently connected to the source reader.
	dataio.Reader

	br      *bufio.Reader
	snappyR *snappy.Reader
	gzipR   *gzip.Reader
}

func (r *sidecarReader) reset(base io.Reader, comp Compression) error {
	if r.br == nil {
		r.br = bufio.NewReaderSize(base, sidecarBufferSize)
	} else {
		r.br.Reset(base)
	}
	return r.restack(comp)
}

// restack switches the decompression layer without disturbing the buffered
// base reader.
func (r *sidecarReader) restack(comp Compression) error {
	switch comp {
	case CompressionSnappy:
		if r.snappyR == nil {
			r.snappyR = snappy.NewReader(r.br)
		} else {
			r.snappyR.Reset(r.br)
		}
		r.Reader = dataio.MakeReader(r.snappyR)

	case CompressionGzip:
		if r.gzipR == nil {
			gz, err := gzip.NewReader(r.br)
			if err != nil {
				return errors.Wrap(err, "creating gzip reader")
			}
			r.gzipR = gz
		} else {
			if err := r.gzipR.Reset(r.br); err != nil {
				return errors.Wrap(err, "resetting gzip reader")
			}
		}
		r.Reader = dataio.MakeReader(r.gzipR)

	case CompressionNone:
		r.Reader = r.br

	default:
		return errors.Errorf("unknown compression: %s", comp)
	}
	return nil
}

type sidecarWriter struct {
	dataio.Writer

	bw      *bufio.Writer
	snappyW *snappy.Writer
	gzipW   *gzip.Writer
}

func newSidecarWriter(base io.Writer) *sidecarWriter {
	w := sidecarWriter{
		bw: bufio.NewWriterSize(base, sidecarBufferSize),
	}
	w.Writer = w.bw
	return &w
}

func (w *sidecarWriter) beginCompression(comp Compression) error {
	switch comp {
	case CompressionSnappy:
		w.snappyW = snappy.NewBufferedWriter(w.bw)
		w.Writer = dataio.MakeWriter(w.snappyW)

	case CompressionGzip:
		w.gzipW = gzip.NewWriter(w.bw)
		w.Writer = dataio.MakeWriter(w.gzipW)

	case CompressionNone:
		w.Writer = w.bw

	default:
		return errors.Errorf("unknown compression: %s", comp)
	}
	return nil
}

func (w *sidecarWriter) finish() (err error) {
	if w.snappyW != nil {
		if err = w.snappyW.Close(); err != nil {
			return
		}
	}
	if w.gzipW != nil {
		if err = w.gzipW.Close(); err != nil {
			return
		}
	}
	return w.bw.Flush()
}
