package romfs_test

import (
	"github.com/bsm/romfs"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Container", func() {
	It("should select tags", func() {
		Expect(romfs.TagFor(false, false)).To(Equal(romfs.TagASCII))
		Expect(romfs.TagFor(true, false)).To(Equal(romfs.TagBinary))
		Expect(romfs.TagFor(true, true)).To(Equal(romfs.TagEncrypted))
		Expect(romfs.TagFor(false, true)).To(Equal(romfs.TagEncrypted))
	})

	It("should wrap/unwrap", func() {
		artifact := romfs.Wrap(romfs.TagBinary, []byte("payload"))
		Expect(string(artifact)).To(Equal("BINpayload"))

		tag, payload, err := romfs.Unwrap(artifact)
		Expect(err).NotTo(HaveOccurred())
		Expect(tag).To(Equal(romfs.TagBinary))
		Expect(string(payload)).To(Equal("payload"))
	})

	It("should reject short artifacts", func() {
		_, _, err := romfs.Unwrap([]byte("ASC"))
		Expect(err).To(MatchError(romfs.ErrTruncated))
		_, _, err = romfs.Unwrap(nil)
		Expect(err).To(MatchError(romfs.ErrTruncated))
	})

	It("should reject unknown tags", func() {
		_, _, err := romfs.Unwrap([]byte("ROM\x00\x00"))
		Expect(err).To(MatchError(romfs.ErrUnknownTag))
		Expect(err).To(MatchError(`romfs: unknown tag "ROM"`))

		_, _, err = romfs.Unwrap([]byte("asc\x00\x00"))
		Expect(err).To(MatchError(romfs.ErrUnknownTag))
	})

	It("should know which tags need a passphrase", func() {
		Expect(romfs.TagASCII.NeedsPassphrase()).To(BeFalse())
		Expect(romfs.TagBinary.NeedsPassphrase()).To(BeFalse())
		Expect(romfs.TagEncrypted.NeedsPassphrase()).To(BeTrue())
		Expect(romfs.TagSealed.NeedsPassphrase()).To(BeTrue())
	})
})
