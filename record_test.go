package romfs_test

import (
	"strings"

	"github.com/bsm/romfs"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Record", func() {
	It("should encode", func() {
		Expect(romfs.EncodeRecord("a.lua", []byte("hi"))).To(Equal([]byte{
			0, 0, 0, 3, 5, 'a', '.', 'l', 'u', 'a', 'h', 'i', 0,
		}))
		Expect(romfs.EncodeRecord("x", nil)).To(Equal([]byte{0, 0, 0, 1, 1, 'x', 0}))
	})

	It("should append", func() {
		buf, err := romfs.AppendRecord([]byte("ASC"), "a", []byte("b"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf)).To(Equal("ASC\x00\x00\x00\x02\x01ab\x00"))
	})

	It("should reject long paths", func() {
		_, err := romfs.EncodeRecord(strings.Repeat("x", 255), nil)
		Expect(err).NotTo(HaveOccurred())

		_, err = romfs.EncodeRecord(strings.Repeat("x", 256), nil)
		Expect(err).To(MatchError(romfs.ErrPathTooLong))
		Expect(err).To(MatchError(romfs.ErrInvalidInput))
	})

	It("should decode", func() {
		stream, err := romfs.EncodeRecord("a.lua", []byte("hi"))
		Expect(err).NotTo(HaveOccurred())
		stream, err = romfs.AppendRecord(stream, "b", nil)
		Expect(err).NotTo(HaveOccurred())
		stream = append(stream, 0, 0, 0, 0, 0)

		rec, next, err := romfs.DecodeRecord(stream, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(rec.Path)).To(Equal("a.lua"))
		Expect(string(rec.Content)).To(Equal("hi"))
		Expect(cap(rec.Content)).To(Equal(2))
		Expect(next).To(Equal(13))

		rec, next, err = romfs.DecodeRecord(stream, next)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(rec.Path)).To(Equal("b"))
		Expect(rec.Content).To(BeEmpty())
		Expect(next).To(Equal(20))

		_, next, err = romfs.DecodeRecord(stream, next)
		Expect(err).To(MatchError(romfs.ErrEndOfStream))
		Expect(next).To(Equal(len(stream)))
	})

	It("should reject NUL-terminated paths", func() {
		_, err := romfs.EncodeRecord("a\x00", nil)
		Expect(err).To(MatchError(romfs.ErrInvalidPath))

		buf, err := romfs.AppendRecord([]byte("ASC"), "a\x00b", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(HaveLen(3 + 5 + 3 + 1))
	})

	It("should not copy content", func() {
		stream, err := romfs.EncodeRecord("a", []byte("x"))
		Expect(err).NotTo(HaveOccurred())

		rec, _, err := romfs.DecodeRecord(stream, 0)
		Expect(err).NotTo(HaveOccurred())
		stream[6] = 'y'
		Expect(string(rec.Content)).To(Equal("y"))
	})

	It("should detect truncation", func() {
		stream, err := romfs.EncodeRecord("a.lua", []byte("hi"))
		Expect(err).NotTo(HaveOccurred())

		for _, n := range []int{0, 4, 5, 9, len(stream) - 1} {
			_, _, err := romfs.DecodeRecord(stream[:n], 0)
			Expect(err).To(MatchError(romfs.ErrTruncated), "for %d", n)
		}
		_, _, err = romfs.DecodeRecord(stream, -1)
		Expect(err).To(MatchError(romfs.ErrTruncated))
	})
})
