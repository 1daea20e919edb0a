package romfs_test

import (
	"bytes"

	"github.com/bsm/romfs"
	"github.com/klauspost/compress/zlib"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Compression", func() {
	var testdata = bytes.Repeat([]byte("local M = {} return M\n"), 64)

	It("should round-trip", func() {
		compressed, err := romfs.Compress(testdata, zlib.DefaultCompression)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(compressed)).To(BeNumerically("<", len(testdata)/4))

		plain, err := romfs.Decompress(compressed)
		Expect(err).NotTo(HaveOccurred())
		Expect(plain).To(Equal(testdata))
	})

	It("should round-trip empty input", func() {
		compressed, err := romfs.Compress(nil, zlib.BestSpeed)
		Expect(err).NotTo(HaveOccurred())

		plain, err := romfs.Decompress(compressed)
		Expect(err).NotTo(HaveOccurred())
		Expect(plain).To(BeEmpty())
	})

	It("should grow beyond a single chunk", func() {
		large := bytes.Repeat(testdata, 3*(1<<20)/len(testdata)+1)
		compressed, err := romfs.Compress(large, zlib.BestCompression)
		Expect(err).NotTo(HaveOccurred())

		plain, err := romfs.Decompress(compressed)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(plain)).To(Equal(len(large)))
		Expect(cap(plain)).To(Equal(len(large)))
		Expect(plain).To(Equal(large))
	})

	It("should be readable by other zlib implementations", func() {
		compressed, err := romfs.Compress(testdata, zlib.DefaultCompression)
		Expect(err).NotTo(HaveOccurred())

		zr, err := zlib.NewReader(bytes.NewReader(compressed))
		Expect(err).NotTo(HaveOccurred())
		defer zr.Close()

		var plain bytes.Buffer
		_, err = plain.ReadFrom(zr)
		Expect(err).NotTo(HaveOccurred())
		Expect(plain.Bytes()).To(Equal(testdata))
	})

	It("should reject corrupt streams", func() {
		_, err := romfs.Decompress([]byte("not a zlib stream"))
		Expect(err).To(MatchError(romfs.ErrCorruptStream))

		compressed, err := romfs.Compress(testdata, zlib.DefaultCompression)
		Expect(err).NotTo(HaveOccurred())
		compressed[len(compressed)-1] ^= 0xff // adler32 checksum
		_, err = romfs.Decompress(compressed)
		Expect(err).To(MatchError(romfs.ErrCorruptStream))
	})

	It("should reject trailing bytes", func() {
		compressed, err := romfs.Compress(testdata, zlib.DefaultCompression)
		Expect(err).NotTo(HaveOccurred())

		_, err = romfs.Decompress(append(compressed, 0))
		Expect(err).To(MatchError(romfs.ErrCorruptStream))
		_, err = romfs.Decompress(append(compressed, compressed...))
		Expect(err).To(MatchError(romfs.ErrCorruptStream))
	})

	It("should reject truncated streams", func() {
		compressed, err := romfs.Compress(testdata, zlib.DefaultCompression)
		Expect(err).NotTo(HaveOccurred())

		_, err = romfs.Decompress(compressed[:len(compressed)/2])
		Expect(err).To(MatchError(romfs.ErrTruncated))
		_, err = romfs.Decompress(compressed[:len(compressed)-2])
		Expect(err).To(MatchError(romfs.ErrTruncated))
		_, err = romfs.Decompress(nil)
		Expect(err).To(MatchError(romfs.ErrTruncated))
	})
})
