// Copyright 2021 gengteng. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package tagstream

import (
	"os"
	"path/filepath"

	"github.com/gengteng/flv/seekindex"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Sidecar", func() {
	var dir string
	var entries []seekindex.Entry

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "sidecar_test")
		Expect(err).ToNot(HaveOccurred())

		entries = []seekindex.Entry{
			{Timestamp: 0, Offset: 9, PrevTagSize: 0},
			{Timestamp: 2000, Offset: 1325, PrevTagSize: 457},
			{Timestamp: 4000, Offset: 2693, PrevTagSize: seekindex.PrevSizeUnknown},
		}
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	load := func() *seekindex.Index {
		idx := (&seekindex.Config{}).NewIndex()
		idx.Load(entries)
		return idx
	}

	DescribeTable("round-trips the index",
		func(comp Compression) {
			path := filepath.Join(dir, "stream.flvx")
			Expect(WriteSidecar(path, load(), comp)).To(Succeed())

			loaded, err := LoadSidecar(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(loaded).To(Equal(entries))
		},
		Entry("uncompressed", CompressionNone),
		Entry("snappy", CompressionSnappy),
		Entry("gzip", CompressionGzip),
	)

	It("round-trips an empty index", func() {
		path := filepath.Join(dir, "empty.flvx")
		idx := (&seekindex.Config{}).NewIndex()

		Expect(WriteSidecar(path, idx, CompressionSnappy)).To(Succeed())

		loaded, err := LoadSidecar(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(BeEmpty())
	})

	It("replaces an existing sidecar atomically", func() {
		path := filepath.Join(dir, "stream.flvx")
		Expect(WriteSidecar(path, load(), CompressionNone)).To(Succeed())

		entries = entries[:1]
		Expect(WriteSidecar(path, load(), CompressionGzip)).To(Succeed())

		loaded, err := LoadSidecar(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(HaveLen(1))

		// No stray staging files left behind.
		matches, err := filepath.Glob(filepath.Join(dir, "*"))
		Expect(err).ToNot(HaveOccurred())
		Expect(matches).To(HaveLen(1))
	})

	It("rejects a file with a foreign magic", func() {
		path := filepath.Join(dir, "bogus.flvx")
		Expect(os.WriteFile(path, []byte("not a sidecar at all"), 0o644)).To(Succeed())

		_, err := LoadSidecar(path)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a missing file", func() {
		_, err := LoadSidecar(filepath.Join(dir, "absent.flvx"))
		Expect(err).To(HaveOccurred())
	})
})
