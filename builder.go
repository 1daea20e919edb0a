package romfs

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/zap"
)

// Options define builder specific options.
type Options struct {
	// The compression codec to use. Ignored (always deflate) when a
	// passphrase is set.
	// Default: DeflateCompression.
	Compression Compression

	// CompressionLevel is the deflate level, 1 (fastest) to 9 (best).
	// Default: zlib.DefaultCompression.
	CompressionLevel int

	// Passphrase enables encryption.
	Passphrase Passphrase

	// Hardened seals encrypted artifacts with age (tag AGE) instead of the
	// fixed-IV AES-CBC construction (tag ENC). Readers that only know the
	// ENC format cannot mount hardened artifacts.
	Hardened bool

	// ScryptWorkFactor is the scrypt work factor for hardened artifacts.
	// Values above MaxScryptWorkFactor make Close fail.
	// Default: DefaultScryptWorkFactor.
	ScryptWorkFactor int

	// StripPrefix is removed from every appended path. Paths that do not
	// start with it are rejected.
	StripPrefix string

	// RequireFiles makes Close fail with ErrEmptyArchive when no files
	// were appended.
	RequireFiles bool

	// Format selects binary or literal-source output.
	// Default: FormatBinary.
	Format Format

	// VarName, Package, Static and LineWidth configure literal-source
	// output, see LiteralOptions.
	VarName   string
	Package   string
	Static    bool
	LineWidth int

	// IncludePassphrase renders the passphrase as a sibling literal in
	// literal-source output.
	IncludePassphrase bool

	// Logger receives build diagnostics.
	// Default: zap.NewNop().
	Logger *zap.Logger
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if !oo.Compression.isValid() || oo.Passphrase.IsSet() {
		oo.Compression = DeflateCompression
	}
	if oo.CompressionLevel < zlib.BestSpeed || oo.CompressionLevel > zlib.BestCompression {
		oo.CompressionLevel = zlib.DefaultCompression
	}
	if oo.ScryptWorkFactor < 1 {
		oo.ScryptWorkFactor = DefaultScryptWorkFactor
	}
	if !oo.Format.isValid() {
		oo.Format = FormatBinary
	}
	if oo.Logger == nil {
		oo.Logger = zap.NewNop()
	}

	return &oo
}

func (o *Options) literalOptions() *LiteralOptions {
	lo := &LiteralOptions{
		Format:    o.Format,
		VarName:   o.VarName,
		Package:   o.Package,
		Static:    o.Static,
		LineWidth: o.LineWidth,
	}
	if o.IncludePassphrase {
		lo.Passphrase = o.Passphrase
	}
	return lo
}

// storedPath strips the configured prefix from path.
func (o *Options) storedPath(path string) (string, error) {
	name, ok := strings.CutPrefix(path, o.StripPrefix)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if len(name) > MaxPathLen {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidPath, path, ErrPathTooLong)
	}
	return name, nil
}

// --------------------------------------------------------------------

// File is a single input file.
type File struct {
	Path    string
	Content []byte
}

// Build is a shortcut which appends files to a new Builder and returns
// the resulting artifact.
func Build(files []File, o *Options) ([]byte, error) {
	var buf bytes.Buffer

	b := NewBuilder(&buf, o)
	for _, f := range files {
		if err := b.Append(f.Path, f.Content); err != nil {
			return nil, err
		}
	}
	if err := b.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Builder instances can build an artifact. Files are buffered in memory;
// nothing is written to the underlying writer until Close succeeds.
type Builder struct {
	w   io.Writer
	o   *Options
	log *zap.Logger

	buf   []byte // raw record stream
	files int    // number of appended files
	err   error  // first append error, returned by Close

	closed bool
}

// NewBuilder wraps a writer and returns a Builder.
func NewBuilder(w io.Writer, o *Options) *Builder {
	o = o.norm()
	return &Builder{
		w:   w,
		o:   o,
		log: o.Logger,
	}
}

// Append appends a file to the archive. Files are stored in the order
// they are appended. After a failed Append the builder is unusable and
// Close returns the same error.
func (b *Builder) Append(path string, content []byte) error {
	if b.closed {
		return ErrClosed
	}
	if b.err != nil {
		return b.err
	}

	name, err := b.o.storedPath(path)
	if err != nil {
		b.err = err
		return err
	}

	buf, err := AppendRecord(b.buf, name, content)
	if err != nil {
		b.err = fmt.Errorf("%w: %q", err, path)
		return b.err
	}
	b.buf = buf
	b.files++

	b.log.Debug("archiving file",
		zap.String("path", path),
		zap.String("name", name),
		zap.Int("size", len(content)),
	)
	return nil
}

// AppendFrom reads r until EOF and appends its content as path.
func (b *Builder) AppendFrom(path string, r io.Reader) error {
	if b.closed {
		return ErrClosed
	}
	if b.err != nil {
		return b.err
	}

	content, err := io.ReadAll(r)
	if err != nil {
		b.err = fmt.Errorf("romfs: reading %q: %w", path, err)
		return b.err
	}
	return b.Append(path, content)
}

// NumFiles returns the number of appended files.
func (b *Builder) NumFiles() int { return b.files }

// Close terminates the record stream, transforms it and writes the
// artifact to the underlying writer.
func (b *Builder) Close() error {
	if b.closed {
		return ErrClosed
	}
	b.closed = true

	if b.err != nil {
		return b.err
	}
	if b.o.RequireFiles && b.files == 0 {
		return ErrEmptyArchive
	}

	artifact, err := b.seal()
	if err != nil {
		return err
	}

	if b.o.Format != FormatBinary {
		var src bytes.Buffer
		if err := WriteLiteral(&src, artifact, b.o.literalOptions()); err != nil {
			return err
		}
		artifact = src.Bytes()
	}

	_, err = b.w.Write(artifact)
	return err
}

// seal terminates the raw stream and applies compression, encryption and
// the container tag.
func (b *Builder) seal() ([]byte, error) {
	raw := append(b.buf, make([]byte, recordHeaderLen)...)
	b.buf = nil

	pass, encrypted := b.o.Passphrase.Get()
	compressed := b.o.Compression == DeflateCompression

	payload := raw
	if compressed {
		var err error
		if payload, err = Compress(raw, b.o.CompressionLevel); err != nil {
			return nil, err
		}
	}

	tag := TagFor(compressed, encrypted)
	if encrypted {
		var err error
		if b.o.Hardened {
			tag = TagSealed
			payload, err = Seal(payload, pass, b.o.ScryptWorkFactor)
		} else {
			payload, err = Encrypt(payload, pass)
		}
		if err != nil {
			return nil, err
		}
	}

	artifact := Wrap(tag, payload)
	b.log.Info("artifact built",
		zap.String("tag", string(tag)),
		zap.Int("files", b.files),
		zap.Int("raw_size", len(raw)),
		zap.Int("size", len(artifact)),
		zap.Stringer("format", b.o.Format),
	)
	return artifact, nil
}
