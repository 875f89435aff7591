// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"io"
	"os"

	"github.com/gengteng/flv/seekindex"
	"github.com/gengteng/flv/support/stagingfile"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Sidecar files persist a stream's seek index next to it on disk, so a
// reopened stream can seek without a full rescan.
//
// The layout is a fixed uncompressed header followed by Count fixed-size
// records in the header's declared compression.

// sidecarMagic begins every sidecar file.
var sidecarMagic = [4]byte{'F', 'L', 'V', 'X'}

// sidecarVersion is the current sidecar layout version.
const sidecarVersion = 1

type sidecarHeader struct {
	Magic       [4]byte
	Version     uint8
	Compression uint8
	Reserved    uint16
	Count       uint32
}

type sidecarRecord struct {
	Timestamp   int32
	PrevTagSize uint32
	Offset      int64
}

// WriteSidecar atomically writes idx's entries to path.
//
// The file is staged alongside its destination and committed with a rename,
// so a failure partway leaves any previous sidecar at path intact.
func WriteSidecar(path string, idx *seekindex.Index, comp Compression) (err error) {
	entries := idx.Entries()

	sf, err := stagingfile.New(path)
	if err != nil {
		return err
	}
	defer func() {
		destroyErr := sf.Destroy()
		if err == nil {
			err = destroyErr
		}
	}()

	sw := newSidecarWriter(sf.File())
	hdr := sidecarHeader{
		Magic:       sidecarMagic,
		Version:     sidecarVersion,
		Compression: uint8(comp),
		Count:       uint32(len(entries)),
	}
	if err := struc.Pack(sw, &hdr); err != nil {
		return errors.Wrap(err, "writing sidecar header")
	}

	if err := sw.beginCompression(comp); err != nil {
		return err
	}
	for i := range entries {
		rec := sidecarRecord{
			Timestamp:   entries[i].Timestamp,
			PrevTagSize: entries[i].PrevTagSize,
			Offset:      entries[i].Offset,
		}
		if err := struc.Pack(sw, &rec); err != nil {
			return errors.Wrapf(err, "writing sidecar record %d", i)
		}
	}
	if err := sw.finish(); err != nil {
		return errors.Wrap(err, "finishing sidecar")
	}

	return sf.Commit()
}

// LoadSidecar reads the sidecar file at path and returns its entries, sorted
// by timestamp, suitable for Index.Load.
func LoadSidecar(path string) ([]seekindex.Entry, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = fd.Close()
	}()
	return readSidecar(fd)
}

func readSidecar(r io.Reader) ([]seekindex.Entry, error) {
	var sr sidecarReader
	if err := sr.reset(r, CompressionNone); err != nil {
		return nil, err
	}

	var hdr sidecarHeader
	if err := struc.Unpack(sr, &hdr); err != nil {
		return nil, errors.Wrap(err, "reading sidecar header")
	}
	if hdr.Magic != sidecarMagic {
		return nil, errors.Errorf("bad sidecar magic: %q", hdr.Magic[:])
	}
	if hdr.Version != sidecarVersion {
		return nil, errors.Errorf("unsupported sidecar version: %d", hdr.Version)
	}

	// The header itself is always uncompressed; records follow in the
	// header's declared compression.
	if err := sr.restack(Compression(hdr.Compression)); err != nil {
		return nil, err
	}

	entries := make([]seekindex.Entry, hdr.Count)
	for i := range entries {
		var rec sidecarRecord
		if err := struc.Unpack(sr, &rec); err != nil {
			return nil, errors.Wrapf(err, "reading sidecar record %d", i)
		}
		entries[i] = seekindex.Entry{
			Timestamp:   rec.Timestamp,
			PrevTagSize: rec.PrevTagSize,
			Offset:      rec.Offset,
		}
	}
	return entries, nil
}
