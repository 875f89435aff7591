// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("TagHeader", func() {
	Context("UnmarshalBinary", func() {
		It("decodes a script data tag header", func() {
			data := []byte{
				0x12,             // script data
				0x00, 0x00, 0x02, // data size 2
				0x00, 0x00, 0x00, 0x00, // timestamp 0, extension 0
				0x00, 0x00, 0x00, // stream ID 0
			}

			var h TagHeader
			Expect(h.UnmarshalBinary(data)).To(Succeed())
			Expect(h.Type).To(Equal(TagTypeScriptData))
			Expect(h.DataSize).To(Equal(uint32(2)))
			Expect(h.Timestamp).To(Equal(int32(0)))
			Expect(h.StreamID).To(Equal(uint32(0)))
		})

		It("assembles the timestamp extension as the sign-carrying byte", func() {
			data := []byte{
				0x09,
				0x00, 0x00, 0x00,
				0xFF, 0xFF, 0xFF, 0xFF, // lower 24 bits, then extension
				0x00, 0x00, 0x00,
			}

			var h TagHeader
			Expect(h.UnmarshalBinary(data)).To(Succeed())
			Expect(h.Timestamp).To(Equal(int32(-1)))
		})

		It("preserves unknown tag types", func() {
			data := make([]byte, TagHeaderSize)
			data[0] = 0xFF

			var h TagHeader
			Expect(h.UnmarshalBinary(data)).To(Succeed())
			Expect(h.Type).To(Equal(TagType(0xFF)))
			Expect(h.Type.Known()).To(BeFalse())
		})
	})

	Context("round trip", func() {
		headers := []TagHeader{
			{Type: TagTypeAudio, DataSize: 1, Timestamp: 40},
			{Type: TagTypeVideo, DataSize: MaxDataSize, Timestamp: 1<<31 - 1},
			{Type: TagTypeScriptData, DataSize: 0, Timestamp: -120},
			{Type: TagType(0xFF), DataSize: 7, Timestamp: 0x01FFFFFF},
		}

		It("reproduces every header exactly", func() {
			for _, h := range headers {
				data, err := h.MarshalBinary()
				Expect(err).ToNot(HaveOccurred())
				Expect(data).To(HaveLen(TagHeaderSize))

				var decoded TagHeader
				Expect(decoded.UnmarshalBinary(data)).To(Succeed())
				Expect(decoded).To(Equal(h))
			}
		})
	})

	Context("PutBinary", func() {
		It("rejects an oversized payload declaration", func() {
			h := TagHeader{Type: TagTypeVideo, DataSize: MaxDataSize + 1}

			var buf [TagHeaderSize]byte
			Expect(h.PutBinary(buf[:])).ToNot(Succeed())
		})
	})

	Context("EncodedSize", func() {
		It("includes the header itself", func() {
			h := TagHeader{Type: TagTypeScriptData, DataSize: 2}
			Expect(h.EncodedSize()).To(Equal(uint32(13)))
		})
	})
})

var _ = Describe("AudioDataHeader", func() {
	It("decodes a typical AAC prefix", func() {
		// AAC, 44kHz, 16-bit, stereo.
		h, err := ParseAudioDataHeader(0xAF)
		Expect(err).ToNot(HaveOccurred())

		Expect(h.Format).To(Equal(SoundFormatAAC))
		Expect(h.Rate).To(Equal(SoundRate44kHz))
		Expect(h.Size).To(Equal(SoundSize16Bit))
		Expect(h.Type).To(Equal(SoundTypeStereo))
		Expect(h.Byte()).To(Equal(uint8(0xAF)))
	})

	It("rejects an undefined sound format", func() {
		_, err := ParseAudioDataHeader(0xCF)
		Expect(err).To(BeAssignableToTypeOf(&FieldError{}))
	})
})

var _ = Describe("VideoDataHeader", func() {
	It("decodes a typical AVC keyframe prefix", func() {
		h, err := ParseVideoDataHeader(0x17)
		Expect(err).ToNot(HaveOccurred())

		Expect(h.FrameType).To(Equal(FrameTypeKey))
		Expect(h.Codec).To(Equal(VideoCodecAVC))
		Expect(h.Byte()).To(Equal(uint8(0x17)))
	})

	It("rejects an out-of-range frame type", func() {
		_, err := ParseVideoDataHeader(0x07)
		Expect(err).To(BeAssignableToTypeOf(&FieldError{}))
	})
})

var _ = Describe("Tag", func() {
	Context("IsKeyframe", func() {
		It("is true only for video keyframes", func() {
			video := Tag{
				Header:  TagHeader{Type: TagTypeVideo, DataSize: 1},
				Payload: []byte{0x17},
			}
			Expect(video.IsKeyframe()).To(BeTrue())

			video.Payload[0] = 0x27 // inter frame
			Expect(video.IsKeyframe()).To(BeFalse())

			audio := Tag{
				Header:  TagHeader{Type: TagTypeAudio, DataSize: 1},
				Payload: []byte{0xAF},
			}
			Expect(audio.IsKeyframe()).To(BeFalse())
		})

		It("is false for an empty video payload", func() {
			video := Tag{Header: TagHeader{Type: TagTypeVideo}}
			Expect(video.IsKeyframe()).To(BeFalse())
		})
	})
})
