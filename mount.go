package romfs

import (
	"bytes"
	"errors"
	"fmt"
)

// fsMagic marks a live FS; Release clears it.
const fsMagic uint32 = 0x524f4d46 // "ROMF"

// FS is a mounted ROM. It owns a private copy of the raw record stream and
// is safe for concurrent lookups. Release must not be called while lookups
// are in flight.
type FS struct {
	magic uint32
	data  []byte // raw record stream, terminator included
	size  int    // len(data) at mount time
	files int    // number of records
}

// Mount recovers the raw record stream of an artifact. Encrypted
// artifacts require a passphrase.
func Mount(artifact []byte, pass Passphrase) (*FS, error) {
	tag, payload, err := Unwrap(artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	raw, err := unpack(tag, payload, pass)
	if err != nil {
		return nil, err
	}

	files, err := countRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	return &FS{
		magic: fsMagic,
		data:  raw,
		size:  len(raw),
		files: files,
	}, nil
}

// unpack applies the inverse transforms selected by tag.
func unpack(tag Tag, payload []byte, pass Passphrase) ([]byte, error) {
	switch tag {
	case TagASCII:
		return bytes.Clone(payload), nil
	case TagBinary:
		raw, err := Decompress(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
		}
		return raw, nil
	}

	secret, ok := pass.Get()
	if !ok {
		return nil, ErrPassphraseRequired
	}

	var plain []byte
	var err error
	if tag == TagSealed {
		plain, err = Open(payload, secret)
	} else {
		plain, err = Decrypt(payload, secret)
	}
	if errors.Is(err, ErrInvalidCiphertext) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	} else if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrInvalidArtifact, ErrWrongPassphrase, err)
	}

	raw, err := Decompress(plain)
	clear(plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrInvalidArtifact, ErrWrongPassphrase, err)
	}
	return raw, nil
}

// countRecords validates the framing of a raw stream and returns the
// number of records before the terminator.
func countRecords(raw []byte) (int, error) {
	n := 0
	for off := 0; ; n++ {
		_, next, err := DecodeRecord(raw, off)
		if err == ErrEndOfStream {
			return n, nil
		} else if err != nil {
			return n, err
		}
		off = next
	}
}

func (f *FS) valid() bool {
	return f != nil && f.magic == fsMagic && len(f.data) == f.size
}

// Lookup returns the content stored under path. The returned slice is a
// view into the mounted stream and must not be modified. It returns
// ErrNotFound if path is not present. When a path is stored more than
// once, the first record wins.
func (f *FS) Lookup(path string) ([]byte, error) {
	if !f.valid() {
		return nil, ErrInvalidHandle
	}

	for off := 0; ; {
		rec, next, err := DecodeRecord(f.data, off)
		if err == ErrEndOfStream {
			return nil, ErrNotFound
		} else if err != nil {
			return nil, err
		}

		if rec.matches(path) {
			return rec.Content, nil
		}
		off = next
	}
}

// Len returns the number of stored files.
func (f *FS) Len() int {
	if !f.valid() {
		return 0
	}
	return f.files
}

// Size returns the size of the raw record stream in bytes.
func (f *FS) Size() int {
	if !f.valid() {
		return 0
	}
	return f.size
}

// Release releases the mounted stream. The FS and all content returned by
// it must not be used after this method is called. Releasing twice returns
// ErrInvalidHandle.
func (f *FS) Release() error {
	if !f.valid() {
		return ErrInvalidHandle
	}
	f.magic = 0
	f.data = nil
	f.size = 0
	f.files = 0
	return nil
}

// Iterator returns an iterator over all stored files in stream order.
func (f *FS) Iterator() *Iterator {
	it := &Iterator{fs: f}
	if !f.valid() {
		it.err = ErrInvalidHandle
	}
	return it
}

// --------------------------------------------------------------------

// Iterator iterates over the records of a mounted FS.
type Iterator struct {
	fs  *FS
	off int
	rec Record

	done bool
	err  error
}

// Next advances the cursor to the next file and returns true if successful.
func (i *Iterator) Next() bool {
	if i.done || i.err != nil {
		return false
	}
	if !i.fs.valid() {
		i.err = ErrInvalidHandle
		return false
	}

	rec, next, err := DecodeRecord(i.fs.data, i.off)
	if err == ErrEndOfStream {
		i.done = true
		return false
	} else if err != nil {
		i.err = err
		return false
	}

	i.rec = rec
	i.off = next
	return true
}

// Path returns the path of the current file.
func (i *Iterator) Path() string { return i.rec.name() }

// Content returns the content of the current file. It is a view into the
// mounted stream and must not be modified.
func (i *Iterator) Content() []byte { return i.rec.Content }

// Err exposes iterator errors, if any.
func (i *Iterator) Err() error { return i.err }
