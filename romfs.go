package romfs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by lookups when a path is not present.
var ErrNotFound = errors.New("romfs: not found")

// ErrInvalidInput is matched by all build-time input validation errors.
var ErrInvalidInput = errors.New("romfs: invalid input")

// Input validation errors, all matching ErrInvalidInput.
var (
	ErrPathTooLong     error = inputError("romfs: path exceeds 255 bytes")
	ErrContentTooLarge error = inputError("romfs: content too large")
	ErrInvalidPath     error = inputError("romfs: invalid path")
)

// Build-time errors.
var (
	ErrEmptyArchive      = errors.New("romfs: archive contains no files")
	ErrCompressionFailed = errors.New("romfs: compression failed")
	ErrClosed            = errors.New("romfs: builder is closed")
)

// Stream errors.
var (
	ErrCorruptStream = errors.New("romfs: corrupt stream")
	ErrTruncated     = errors.New("romfs: truncated data")

	// ErrEndOfStream is returned by DecodeRecord when it reaches the
	// terminator record.
	ErrEndOfStream = errors.New("romfs: end of stream")
)

// Encryption errors.
var (
	ErrInvalidCiphertext  = errors.New("romfs: invalid ciphertext")
	ErrInvalidPadding     = errors.New("romfs: invalid padding")
	ErrPassphraseRequired = errors.New("romfs: passphrase required")
	ErrWrongPassphrase    = errors.New("romfs: wrong passphrase or corrupt artifact")
)

// Container and handle errors.
var (
	ErrUnknownTag      = errors.New("romfs: unknown tag")
	ErrInvalidArtifact = errors.New("romfs: invalid artifact")
	ErrInvalidHandle   = errors.New("romfs: invalid or released handle")
)

type inputError string

func (e inputError) Error() string        { return string(e) }
func (e inputError) Is(target error) bool { return target == ErrInvalidInput }

// --------------------------------------------------------------------

// Compression is the compression codec applied to the raw stream.
type Compression byte

func (c Compression) isValid() bool {
	return c >= DeflateCompression && c < unknownCompression
}

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case DeflateCompression:
		return "deflate"
	case NoCompression:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", byte(c))
	}
}

// Supported compression codecs
const (
	DeflateCompression Compression = iota
	NoCompression
	unknownCompression
)

// --------------------------------------------------------------------

// Passphrase is an optional passphrase. The zero value is NoPassphrase;
// an empty string wrapped by NewPassphrase is a present, empty passphrase.
type Passphrase struct {
	value string
	ok    bool
}

// NoPassphrase is the absent passphrase.
var NoPassphrase = Passphrase{}

// NewPassphrase returns a present passphrase.
func NewPassphrase(s string) Passphrase { return Passphrase{value: s, ok: true} }

// Get returns the passphrase and whether it is present.
func (p Passphrase) Get() (string, bool) { return p.value, p.ok }

// IsSet reports whether the passphrase is present.
func (p Passphrase) IsSet() bool { return p.ok }

// String never reveals the passphrase.
func (p Passphrase) String() string {
	if !p.ok {
		return "<none>"
	}
	return "<redacted>"
}
