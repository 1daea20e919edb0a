package romfs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
)

// KeySize is the size of the key derived from a passphrase.
const KeySize = sha256.Size

// fillerLen bytes of filler precede the plaintext, making the plaintext
// independent of the IV.
const fillerLen = aes.BlockSize

// fixedIV is the CBC initialisation vector used for every ENC artifact.
// It is part of the wire format and cannot change without breaking existing
// artifacts. A fixed IV means identical plaintext prefixes encrypted under
// the same passphrase produce identical ciphertext prefixes; use the
// hardened AGE mode where this matters.
var fixedIV = [aes.BlockSize]byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
}

// DeriveKey returns the SHA-256 digest of passphrase.
func DeriveKey(passphrase string) [KeySize]byte {
	return sha256.Sum256([]byte(passphrase))
}

// Encrypt encrypts plain with AES-256-CBC under a key derived from
// passphrase, using the fixed IV. The plaintext is prefixed with filler and
// padded to the block size; the pad value is always between 1 and 16.
func Encrypt(plain []byte, passphrase string) ([]byte, error) {
	block, err := newBlockCipher(passphrase)
	if err != nil {
		return nil, err
	}

	n := fillerLen + len(plain)
	pad := aes.BlockSize - n%aes.BlockSize

	buf := make([]byte, n+pad)
	for i := range buf {
		buf[i] = byte(pad)
	}
	copy(buf[fillerLen:], plain)

	cipher.NewCBCEncrypter(block, fixedIV[:]).CryptBlocks(buf, buf)
	return buf, nil
}

// Decrypt reverses Encrypt. The input is not modified.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	if len(ciphertext) < aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}

	block, err := newBlockCipher(passphrase)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, fixedIV[:]).CryptBlocks(buf, ciphertext)

	if !validPadding(buf) {
		clear(buf)
		return nil, ErrInvalidPadding
	}

	pad := int(buf[len(buf)-1])
	return buf[fillerLen : len(buf)-pad : len(buf)-pad], nil
}

// validPadding checks the trailing pad run and the leading filler, both of
// which carry the pad value.
func validPadding(buf []byte) bool {
	pad := int(buf[len(buf)-1])
	if pad == 0 || pad > aes.BlockSize || len(buf)-pad < fillerLen {
		return false
	}

	c := byte(pad)
	for _, b := range buf[len(buf)-pad:] {
		if b != c {
			return false
		}
	}
	for _, b := range buf[:fillerLen] {
		if b != c {
			return false
		}
	}
	return true
}

func newBlockCipher(passphrase string) (cipher.Block, error) {
	key := DeriveKey(passphrase)
	defer clear(key[:])

	return aes.NewCipher(key[:])
}
