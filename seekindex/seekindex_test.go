// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package seekindex

import (
	"testing"

	"github.com/gengteng/flv"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func videoTag(ts int32, frameType flv.FrameType) *flv.Tag {
	return &flv.Tag{
		Header: flv.TagHeader{
			Type:      flv.TagTypeVideo,
			DataSize:  1,
			Timestamp: ts,
		},
		Payload: []byte{uint8(frameType)<<4 | uint8(flv.VideoCodecAVC)},
	}
}

func audioTag(ts int32) *flv.Tag {
	return &flv.Tag{
		Header: flv.TagHeader{
			Type:      flv.TagTypeAudio,
			DataSize:  1,
			Timestamp: ts,
		},
		Payload: []byte{0xAF},
	}
}

var _ = Describe("Index", func() {
	var idx *Index

	BeforeEach(func() {
		idx = (&Config{}).NewIndex()
	})

	Context("with the default keyframe policy", func() {
		It("indexes only video keyframes", func() {
			idx.Observe(videoTag(0, flv.FrameTypeKey), 9, 0)
			idx.Observe(audioTag(20), 50, PrevSizeUnknown)
			idx.Observe(videoTag(40, flv.FrameTypeInter), 100, PrevSizeUnknown)
			idx.Observe(videoTag(2000, flv.FrameTypeKey), 400, PrevSizeUnknown)

			Expect(idx.Len()).To(Equal(2))
		})

		It("still tracks the last timestamp of unindexed tags", func() {
			_, seen := idx.LastTimestamp()
			Expect(seen).To(BeFalse())

			idx.Observe(audioTag(120), 50, PrevSizeUnknown)

			ts, seen := idx.LastTimestamp()
			Expect(seen).To(BeTrue())
			Expect(ts).To(Equal(int32(120)))
		})
	})

	Context("Lookup", func() {
		BeforeEach(func() {
			idx.Observe(videoTag(0, flv.FrameTypeKey), 9, 0)
			idx.Observe(videoTag(2000, flv.FrameTypeKey), 500, 325)
			idx.Observe(videoTag(4000, flv.FrameTypeKey), 1200, 325)
		})

		It("returns the entry at an exact timestamp", func() {
			e, ok := idx.Lookup(2000)
			Expect(ok).To(BeTrue())
			Expect(e).To(Equal(Entry{Timestamp: 2000, Offset: 500, PrevTagSize: 325}))
		})

		It("returns the nearest preceding entry", func() {
			e, ok := idx.Lookup(3999)
			Expect(ok).To(BeTrue())
			Expect(e.Timestamp).To(Equal(int32(2000)))
		})

		It("returns the last entry past the end", func() {
			e, ok := idx.Lookup(1 << 30)
			Expect(ok).To(BeTrue())
			Expect(e.Timestamp).To(Equal(int32(4000)))
		})

		It("misses before the first entry", func() {
			_, ok := idx.Lookup(-1)
			Expect(ok).To(BeFalse())
		})
	})

	Context("with a bounded capacity", func() {
		BeforeEach(func() {
			idx = (&Config{Capacity: 3, Policy: AllTags}).NewIndex()
			for i := int32(0); i < 3; i++ {
				idx.Observe(audioTag(i*1000), int64(9+i*100), PrevSizeUnknown)
			}
		})

		It("evicts the least recently looked up entry", func() {
			// Touch 0 and 2000; 1000 becomes the eviction candidate.
			_, ok := idx.Lookup(0)
			Expect(ok).To(BeTrue())
			_, ok = idx.Lookup(2000)
			Expect(ok).To(BeTrue())

			idx.Observe(audioTag(3000), 500, PrevSizeUnknown)

			Expect(idx.Len()).To(Equal(3))
			timestamps := make([]int32, 0, 3)
			for _, e := range idx.Entries() {
				timestamps = append(timestamps, e.Timestamp)
			}
			Expect(timestamps).To(Equal([]int32{0, 2000, 3000}))
		})

		It("keeps lookups working across evictions", func() {
			for i := int32(3); i < 100; i++ {
				idx.Observe(audioTag(i*1000), int64(9+i*100), PrevSizeUnknown)
			}
			Expect(idx.Len()).To(Equal(3))

			e, ok := idx.Lookup(1 << 30)
			Expect(ok).To(BeTrue())
			Expect(e.Timestamp).To(Equal(int32(99000)))
		})
	})

	Context("Load", func() {
		It("accepts out-of-order entries and duplicate timestamps", func() {
			idx.Load([]Entry{
				{Timestamp: 4000, Offset: 1200, PrevTagSize: PrevSizeUnknown},
				{Timestamp: 0, Offset: 9, PrevTagSize: 0},
				{Timestamp: 2000, Offset: 500, PrevTagSize: PrevSizeUnknown},
				{Timestamp: 2000, Offset: 999, PrevTagSize: PrevSizeUnknown},
			})

			Expect(idx.Len()).To(Equal(3))
			Expect(idx.Entries()).To(Equal([]Entry{
				{Timestamp: 0, Offset: 9, PrevTagSize: 0},
				{Timestamp: 2000, Offset: 500, PrevTagSize: PrevSizeUnknown},
				{Timestamp: 4000, Offset: 1200, PrevTagSize: PrevSizeUnknown},
			}))
		})
	})

	Context("FromMetaData", func() {
		It("converts keyframe tables to loadable entries", func() {
			entries := FromMetaData([]flv.MetaKeyframe{
				{Time: 0, Position: 13},
				{Time: 2.5, Position: 1041},
				{Time: 5, Position: 2}, // cannot precede a size field
			})

			Expect(entries).To(Equal([]Entry{
				{Timestamp: 0, Offset: 9, PrevTagSize: PrevSizeUnknown},
				{Timestamp: 2500, Offset: 1037, PrevTagSize: PrevSizeUnknown},
			}))

			idx.Load(entries)
			e, ok := idx.Lookup(3000)
			Expect(ok).To(BeTrue())
			Expect(e.Offset).To(Equal(int64(1037)))
		})
	})

	Context("unbounded", func() {
		It("never evicts", func() {
			idx = (&Config{Policy: AllTags}).NewIndex()
			for i := int32(0); i < 10000; i++ {
				idx.Observe(audioTag(i), int64(i), PrevSizeUnknown)
			}
			Expect(idx.Len()).To(Equal(10000))
		})
	})
})

func TestSeekIndex(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Testing the seek index")
}
