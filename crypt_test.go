package romfs_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"

	"github.com/bsm/romfs"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Encryption", func() {
	var testdata = []byte("compressed payload")

	// decryptRaw decrypts without removing filler or padding.
	decryptRaw := func(ciphertext []byte, passphrase string) []byte {
		key := romfs.DeriveKey(passphrase)
		block, err := aes.NewCipher(key[:])
		Expect(err).NotTo(HaveOccurred())

		iv := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
		plain := make([]byte, len(ciphertext))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
		return plain
	}

	It("should derive keys", func() {
		key := romfs.DeriveKey("")
		Expect(hex.EncodeToString(key[:])).To(Equal("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"))

		key = romfs.DeriveKey("abc")
		Expect(hex.EncodeToString(key[:])).To(Equal("ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"))
	})

	It("should round-trip", func() {
		ciphertext, err := romfs.Encrypt(testdata, "secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(ciphertext).To(HaveLen(48))

		plain, err := romfs.Decrypt(ciphertext, "secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(plain).To(Equal(testdata))
	})

	It("should pad", func() {
		for n, exp := range map[int]int{0: 32, 1: 32, 5: 32, 15: 32, 16: 48, 17: 48, 32: 64} {
			ciphertext, err := romfs.Encrypt(bytes.Repeat([]byte{'x'}, n), "secret")
			Expect(err).NotTo(HaveOccurred())
			Expect(ciphertext).To(HaveLen(exp), "for %d", n)

			pad := byte(exp - 16 - n)
			raw := decryptRaw(ciphertext, "secret")
			Expect(raw[:16]).To(Equal(bytes.Repeat([]byte{pad}, 16)), "for %d", n)
			Expect(raw[len(raw)-int(pad):]).To(Equal(bytes.Repeat([]byte{pad}, int(pad))), "for %d", n)
		}
	})

	It("should add a full block when aligned", func() {
		ciphertext, err := romfs.Encrypt(make([]byte, 16), "secret")
		Expect(err).NotTo(HaveOccurred())

		raw := decryptRaw(ciphertext, "secret")
		Expect(raw[len(raw)-1]).To(Equal(byte(16)))
	})

	It("should be deterministic", func() {
		c1, err := romfs.Encrypt(testdata, "secret")
		Expect(err).NotTo(HaveOccurred())
		c2, err := romfs.Encrypt(testdata, "secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(c1).To(Equal(c2))
	})

	It("should not modify the input", func() {
		ciphertext, err := romfs.Encrypt(testdata, "secret")
		Expect(err).NotTo(HaveOccurred())
		orig := append([]byte(nil), ciphertext...)

		_, err = romfs.Decrypt(ciphertext, "secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(ciphertext).To(Equal(orig))
	})

	It("should reject invalid ciphertexts", func() {
		_, err := romfs.Decrypt(make([]byte, 15), "secret")
		Expect(err).To(MatchError(romfs.ErrInvalidCiphertext))
		_, err = romfs.Decrypt(make([]byte, 33), "secret")
		Expect(err).To(MatchError(romfs.ErrInvalidCiphertext))
	})

	It("should reject wrong passphrases", func() {
		ciphertext, err := romfs.Encrypt(testdata, "secret")
		Expect(err).NotTo(HaveOccurred())

		_, err = romfs.Decrypt(ciphertext, "Secret")
		Expect(err).To(MatchError(romfs.ErrInvalidPadding))
		_, err = romfs.Decrypt(ciphertext, "")
		Expect(err).To(MatchError(romfs.ErrInvalidPadding))
	})

	It("should reject a lone block", func() {
		ciphertext, err := romfs.Encrypt(nil, "secret")
		Expect(err).NotTo(HaveOccurred())

		_, err = romfs.Decrypt(ciphertext[16:], "secret")
		Expect(err).To(MatchError(romfs.ErrInvalidPadding))
	})
})

var _ = Describe("Sealing", func() {
	var testdata = []byte("compressed payload")

	It("should round-trip", func() {
		sealed, err := romfs.Seal(testdata, "secret", testWorkFactor)
		Expect(err).NotTo(HaveOccurred())

		plain, err := romfs.Open(sealed, "secret")
		Expect(err).NotTo(HaveOccurred())
		Expect(plain).To(Equal(testdata))
	})

	It("should be randomised", func() {
		s1, err := romfs.Seal(testdata, "secret", testWorkFactor)
		Expect(err).NotTo(HaveOccurred())
		s2, err := romfs.Seal(testdata, "secret", testWorkFactor)
		Expect(err).NotTo(HaveOccurred())
		Expect(s1).NotTo(Equal(s2))
	})

	It("should reject wrong passphrases", func() {
		sealed, err := romfs.Seal(testdata, "secret", testWorkFactor)
		Expect(err).NotTo(HaveOccurred())

		_, err = romfs.Open(sealed, "Secret")
		Expect(err).To(MatchError(romfs.ErrWrongPassphrase))
	})

	It("should reject tampering", func() {
		sealed, err := romfs.Seal(testdata, "secret", testWorkFactor)
		Expect(err).NotTo(HaveOccurred())
		sealed[len(sealed)-1] ^= 0xff

		_, err = romfs.Open(sealed, "secret")
		Expect(err).To(MatchError(romfs.ErrCorruptStream))
	})

	It("should require a passphrase", func() {
		_, err := romfs.Seal(testdata, "", testWorkFactor)
		Expect(err).To(MatchError(romfs.ErrInvalidInput))
	})

	It("should reject excessive work factors", func() {
		_, err := romfs.Seal(testdata, "secret", romfs.MaxScryptWorkFactor+1)
		Expect(err).To(MatchError(romfs.ErrInvalidInput))
		Expect(err.Error()).To(ContainSubstring("work factor 23 exceeds 22"))
	})
})
