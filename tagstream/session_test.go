// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"bytes"
	"io"

	"github.com/gengteng/flv"
	"github.com/gengteng/flv/seekindex"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// buildStream writes a short two-second clip: a keyframe every second with
// interleaved audio and inter frames.
func buildStream() []byte {
	var buf bytes.Buffer
	w, err := (&WriterConfig{}).NewWriter(&buf, flv.NewFileHeader(true, true))
	Expect(err).ToNot(HaveOccurred())

	for ts := int32(0); ts <= 2000; ts += 250 {
		prefix := byte(0x27) // inter frame
		if ts%1000 == 0 {
			prefix = 0x17
		}
		_, err := w.WriteTag(&flv.Tag{
			Header:  flv.TagHeader{Type: flv.TagTypeVideo, Timestamp: ts},
			Payload: []byte{prefix, 0x01},
		})
		Expect(err).ToNot(HaveOccurred())

		_, err = w.WriteTag(&flv.Tag{
			Header:  flv.TagHeader{Type: flv.TagTypeAudio, Timestamp: ts + 10},
			Payload: []byte{0xAF, 0x01, 0x02},
		})
		Expect(err).ToNot(HaveOccurred())
	}

	Expect(w.Finish()).To(Succeed())
	Expect(int(w.NumBytes())).To(Equal(buf.Len()))
	return buf.Bytes()
}

var _ = Describe("Session", func() {
	var stream []byte
	var idx *seekindex.Index
	var session *Session

	BeforeEach(func() {
		stream = buildStream()
		idx = (&seekindex.Config{}).NewIndex()

		var err error
		cfg := SessionConfig{Index: idx}
		session, err = cfg.OpenSession(bytes.NewReader(stream))
		Expect(err).ToNot(HaveOccurred())
	})

	It("parses the file header", func() {
		hdr := session.Header()
		Expect(hdr.HasAudio()).To(BeTrue())
		Expect(hdr.HasVideo()).To(BeTrue())
		Expect(hdr.DataOffset).To(Equal(uint32(flv.FileHeaderSize)))
	})

	It("reads every tag in order and indexes the keyframes", func() {
		var tag flv.Tag
		count := 0
		last := int32(-1)
		for {
			err := session.NextTag(&tag)
			if err == io.EOF {
				break
			}
			Expect(err).ToNot(HaveOccurred())
			Expect(tag.Header.Timestamp >= last).To(BeTrue())
			last = tag.Header.Timestamp
			count++
		}

		Expect(count).To(Equal(18))
		Expect(session.Position()).To(Equal(int64(len(stream))))
		Expect(session.PrevSizeMismatches()).To(BeZero())

		// Keyframes at 0, 1000 and 2000.
		Expect(idx.Len()).To(Equal(3))
		ts, seen := idx.LastTimestamp()
		Expect(seen).To(BeTrue())
		Expect(ts).To(Equal(int32(2010)))
	})

	Context("Seek", func() {
		drain := func() {
			var tag flv.Tag
			for {
				if err := session.NextTag(&tag); err == io.EOF {
					return
				} else {
					Expect(err).ToNot(HaveOccurred())
				}
			}
		}

		It("resumes at the nearest preceding keyframe", func() {
			drain()

			entry, err := session.Seek(1600)
			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Timestamp).To(Equal(int32(1000)))

			var tag flv.Tag
			Expect(session.NextTag(&tag)).To(Succeed())
			Expect(tag.Header.Timestamp).To(Equal(int32(1000)))
			Expect(tag.IsKeyframe()).To(BeTrue())

			// The remainder of the stream follows without mismatches.
			drain()
			Expect(session.PrevSizeMismatches()).To(BeZero())
		})

		It("falls back to the start of tag data on an unindexed target", func() {
			entry, err := session.Seek(1600)
			Expect(err).ToNot(HaveOccurred())
			Expect(entry.Offset).To(Equal(int64(flv.FileHeaderSize)))

			var tag flv.Tag
			Expect(session.NextTag(&tag)).To(Succeed())
			Expect(tag.Header.Timestamp).To(Equal(int32(0)))
		})

		It("supports repeated seeks", func() {
			drain()

			for _, target := range []int32{2500, 100, 1000, 0} {
				_, err := session.Seek(target)
				Expect(err).ToNot(HaveOccurred())

				var tag flv.Tag
				Expect(session.NextTag(&tag)).To(Succeed())
				Expect(tag.IsKeyframe()).To(BeTrue())
				Expect(tag.Header.Timestamp <= target).To(BeTrue())
			}
		})
	})

	Context("with an oversized data offset", func() {
		It("skips the gap before the first record", func() {
			hdr := flv.NewFileHeader(false, true)
			hdr.DataOffset = flv.FileHeaderSize + 4

			var buf bytes.Buffer
			_, err := hdr.WriteTo(&buf)
			Expect(err).ToNot(HaveOccurred())
			buf.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF}) // gap, not records

			var enc Encoder
			_, err = enc.EncodeTag(&buf, &flv.Tag{
				Header:  flv.TagHeader{Type: flv.TagTypeVideo},
				Payload: []byte{0x17},
			}, 0)
			Expect(err).ToNot(HaveOccurred())

			cfg := SessionConfig{}
			s, err := cfg.OpenSession(bytes.NewReader(buf.Bytes()))
			Expect(err).ToNot(HaveOccurred())

			var tag flv.Tag
			Expect(s.NextTag(&tag)).To(Succeed())
			Expect(tag.Header.Type).To(Equal(flv.TagTypeVideo))
			Expect(s.NextTag(&tag)).To(Equal(io.EOF))
		})
	})

	It("rejects a stream that is not FLV", func() {
		cfg := SessionConfig{}
		_, err := cfg.OpenSession(bytes.NewReader([]byte("MKV\x01\x05\x00\x00\x00\x09")))
		Expect(err).To(BeAssignableToTypeOf(&flv.MalformedHeaderError{}))
	})
})

var _ = Describe("Writer", func() {
	It("tracks tag and byte counts", func() {
		var buf bytes.Buffer
		w, err := (&WriterConfig{}).NewWriter(&buf, flv.NewFileHeader(true, false))
		Expect(err).ToNot(HaveOccurred())

		_, err = w.WriteTag(&flv.Tag{
			Header:  flv.TagHeader{Type: flv.TagTypeAudio},
			Payload: []byte{0xAF},
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(w.Finish()).To(Succeed())
		Expect(w.NumTags()).To(Equal(int64(1)))

		// Header, one record, trailing size field.
		expected := flv.FileHeaderSize + (flv.PrevTagSizeLen + flv.TagHeaderSize + 1) + flv.PrevTagSizeLen
		Expect(w.NumBytes()).To(Equal(int64(expected)))
		Expect(buf.Len()).To(Equal(expected))
	})

	It("refuses writes after Finish", func() {
		var buf bytes.Buffer
		w, err := (&WriterConfig{}).NewWriter(&buf, flv.NewFileHeader(true, false))
		Expect(err).ToNot(HaveOccurred())
		Expect(w.Finish()).To(Succeed())

		_, err = w.WriteTag(&flv.Tag{
			Header:  flv.TagHeader{Type: flv.TagTypeAudio},
			Payload: []byte{0xAF},
		})
		Expect(err).To(HaveOccurred())
	})

	It("is idempotent across Finish and Close", func() {
		var buf bytes.Buffer
		w, err := (&WriterConfig{}).NewWriter(&buf, flv.NewFileHeader(true, false))
		Expect(err).ToNot(HaveOccurred())

		Expect(w.Finish()).To(Succeed())
		before := buf.Len()
		Expect(w.Close()).To(Succeed())
		Expect(buf.Len()).To(Equal(before))
	})
})
