package romfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

const (
	// DefaultScryptWorkFactor is the default scrypt work factor (log2 N)
	// for hardened artifacts.
	DefaultScryptWorkFactor = 18

	// MaxScryptWorkFactor is the highest work factor accepted, both when
	// sealing and when opening.
	MaxScryptWorkFactor = 22
)

// Seal encrypts plain with an age scrypt recipient. Unlike Encrypt, every
// call uses a fresh random salt and nonce and the result is authenticated.
// A workFactor < 1 selects DefaultScryptWorkFactor, one above
// MaxScryptWorkFactor is rejected.
func Seal(plain []byte, passphrase string, workFactor int) ([]byte, error) {
	rcpt, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	switch {
	case workFactor < 1:
		workFactor = DefaultScryptWorkFactor
	case workFactor > MaxScryptWorkFactor:
		return nil, fmt.Errorf("%w: scrypt work factor %d exceeds %d", ErrInvalidInput, workFactor, MaxScryptWorkFactor)
	}
	rcpt.SetWorkFactor(workFactor)

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, rcpt)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Open reverses Seal.
func Open(sealed []byte, passphrase string) ([]byte, error) {
	id, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	id.SetMaxWorkFactor(MaxScryptWorkFactor)

	r, err := age.Decrypt(bytes.NewReader(sealed), id)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, fmt.Errorf("%w: %w", ErrWrongPassphrase, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptStream, err)
	}
	return plain, nil
}
