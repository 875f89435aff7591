// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package flv

import (
	"math"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// amfBuilder assembles AMF0 payloads for tests.
type amfBuilder struct {
	buf []byte
}

func (b *amfBuilder) bytes(v ...byte) *amfBuilder {
	b.buf = append(b.buf, v...)
	return b
}

func (b *amfBuilder) key(s string) *amfBuilder {
	b.buf = append(b.buf, byte(len(s)>>8), byte(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

func (b *amfBuilder) str(s string) *amfBuilder {
	b.buf = append(b.buf, 0x02)
	return b.key(s)
}

func (b *amfBuilder) number(v float64) *amfBuilder {
	b.buf = append(b.buf, 0x00)
	return b.rawNumber(v)
}

func (b *amfBuilder) rawNumber(v float64) *amfBuilder {
	bits := math.Float64bits(v)
	for shift := 56; shift >= 0; shift -= 8 {
		b.buf = append(b.buf, byte(bits>>uint(shift)))
	}
	return b
}

func (b *amfBuilder) boolean(v bool) *amfBuilder {
	e := byte(0)
	if v {
		e = 1
	}
	return b.bytes(0x01, e)
}

func (b *amfBuilder) end() *amfBuilder {
	return b.bytes(0x00, 0x00, 0x09)
}

var _ = Describe("ParseMetaData", func() {
	It("decodes a typical onMetaData payload", func() {
		var b amfBuilder
		b.str("onMetaData")
		b.bytes(0x08, 0x00, 0x00, 0x00, 0x05) // ECMA array, 5 properties
		b.key("duration").number(12.5)
		b.key("width").number(1280)
		b.key("height").number(720)
		b.key("videocodecid").number(7)
		b.key("stereo").boolean(true)
		b.end()

		md, err := ParseMetaData(b.buf)
		Expect(err).ToNot(HaveOccurred())

		Expect(md.Duration).To(Equal(12.5))
		Expect(md.Width).To(Equal(1280.0))
		Expect(md.Height).To(Equal(720.0))
		Expect(md.VideoCodecID).To(Equal(7.0))
		Expect(md.Stereo).To(BeTrue())
		Expect(md.Keyframes).To(BeEmpty())
	})

	It("decodes an embedded keyframe table", func() {
		var b amfBuilder
		b.str("onMetaData")
		b.bytes(0x08, 0x00, 0x00, 0x00, 0x01)
		b.key("keyframes")
		b.bytes(0x03) // object
		b.key("times")
		b.bytes(0x0A, 0x00, 0x00, 0x00, 0x03) // strict array, 3 values
		b.rawNumber(0).rawNumber(2).rawNumber(4)
		b.key("filepositions")
		b.bytes(0x0A, 0x00, 0x00, 0x00, 0x03)
		b.rawNumber(13).rawNumber(1041).rawNumber(2069)
		b.end() // keyframes object
		b.end() // ECMA array

		md, err := ParseMetaData(b.buf)
		Expect(err).ToNot(HaveOccurred())

		Expect(md.Keyframes).To(Equal([]MetaKeyframe{
			{Time: 0, Position: 13},
			{Time: 2, Position: 1041},
			{Time: 4, Position: 2069},
		}))
	})

	It("drops a keyframe table with mismatched arrays", func() {
		var b amfBuilder
		b.str("onMetaData")
		b.bytes(0x08, 0x00, 0x00, 0x00, 0x01)
		b.key("keyframes")
		b.bytes(0x03)
		b.key("times")
		b.bytes(0x0A, 0x00, 0x00, 0x00, 0x02)
		b.rawNumber(0).rawNumber(2)
		b.key("filepositions")
		b.bytes(0x0A, 0x00, 0x00, 0x00, 0x01)
		b.rawNumber(13)
		b.end()
		b.end()

		md, err := ParseMetaData(b.buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(md.Keyframes).To(BeEmpty())
	})

	It("skips properties it does not recognize", func() {
		var b amfBuilder
		b.str("onMetaData")
		b.bytes(0x08, 0x00, 0x00, 0x00, 0x03)
		b.key("creator").str("flvtool")
		b.key("somedate").bytes(0x0B)
		b.rawNumber(1.6e12).bytes(0x00, 0x00) // date + timezone
		b.key("duration").number(3)
		b.end()

		md, err := ParseMetaData(b.buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(md.Duration).To(Equal(3.0))
	})

	It("rejects a payload naming a different event", func() {
		var b amfBuilder
		b.str("onCuePoint")
		b.bytes(0x08, 0x00, 0x00, 0x00, 0x00)
		b.end()

		_, err := ParseMetaData(b.buf)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a truncated payload", func() {
		var b amfBuilder
		b.str("onMetaData")
		b.bytes(0x08, 0x00, 0x00, 0x00, 0x01)
		b.key("duration").bytes(0x00, 0x3F) // number cut short

		_, err := ParseMetaData(b.buf)
		Expect(err).To(HaveOccurred())
	})
})
