package romfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/zlib"
)

// decompressChunk is the unit by which the inflate output buffer grows.
const decompressChunk = 1 << 20

// Compress deflates p using zlib framing at the given level.
func Compress(p []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	if _, err := zw.Write(p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream of unknown decompressed size. Bytes
// after the end of the stream are rejected.
func Decompress(p []byte) ([]byte, error) {
	br := bytes.NewReader(p)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, inflateError(err)
	}
	defer zr.Close()

	out := make([]byte, 0, decompressChunk)
	for {
		if len(out) == cap(out) {
			out = slices.Grow(out, decompressChunk)
		}

		n, err := zr.Read(out[len(out):cap(out)])
		out = out[:len(out)+n]
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, inflateError(err)
		}
	}

	if br.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptStream, br.Len())
	}

	// trim to an exact fit, releasing the slack
	exact := make([]byte, len(out))
	copy(exact, out)
	return exact, nil
}

func inflateError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	// bad header, checksum mismatch, invalid deflate data
	return fmt.Errorf("%w: %w", ErrCorruptStream, err)
}
