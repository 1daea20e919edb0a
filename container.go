package romfs

import "fmt"

// TagLen is the length of the artifact tag.
const TagLen = 3

// Tag selects the inverse transforms applied to an artifact payload.
type Tag string

// Known tags.
const (
	TagASCII     Tag = "ASC" // raw stream, untransformed
	TagBinary    Tag = "BIN" // deflated raw stream
	TagEncrypted Tag = "ENC" // deflated, then AES-CBC encrypted raw stream
	TagSealed    Tag = "AGE" // deflated, then age-sealed raw stream
)

// TagFor returns the tag for a payload that was compressed and/or
// encrypted in compatible mode. Encryption implies compression.
func TagFor(compressed, encrypted bool) Tag {
	switch {
	case encrypted:
		return TagEncrypted
	case compressed:
		return TagBinary
	default:
		return TagASCII
	}
}

// IsValid reports whether the tag is known.
func (t Tag) IsValid() bool {
	switch t {
	case TagASCII, TagBinary, TagEncrypted, TagSealed:
		return true
	}
	return false
}

// NeedsPassphrase reports whether the payload is encrypted.
func (t Tag) NeedsPassphrase() bool {
	return t == TagEncrypted || t == TagSealed
}

// Wrap prefixes payload with tag.
func Wrap(tag Tag, payload []byte) []byte {
	artifact := make([]byte, 0, TagLen+len(payload))
	artifact = append(artifact, tag...)
	return append(artifact, payload...)
}

// Unwrap splits an artifact into its tag and payload. The payload is a view
// into artifact.
func Unwrap(artifact []byte) (Tag, []byte, error) {
	if len(artifact) < TagLen+1 {
		return "", nil, ErrTruncated
	}

	tag := Tag(artifact[:TagLen])
	if !tag.IsValid() {
		return "", nil, fmt.Errorf("%w %q", ErrUnknownTag, artifact[:TagLen])
	}
	return tag, artifact[TagLen:], nil
}
