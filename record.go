package romfs

import (
	"encoding/binary"
	"math"
)

const (
	// MaxPathLen is the maximum length of a stored path in bytes.
	MaxPathLen = math.MaxUint8

	// MaxContentLen is the maximum content length of a single file. The
	// stored length includes a trailing terminator byte and must fit in
	// 32 bits.
	MaxContentLen = math.MaxUint32 - 1

	recordHeaderLen = 5 // 4-byte content length + 1-byte path length
)

// Record is a single decoded file entry. Path and Content are views into
// the stream they were decoded from.
type Record struct {
	Path    []byte
	Content []byte // excludes the terminator byte
}

// name returns the stored path. Paths written by the C mkrom tool carry
// their NUL terminator, which is not part of the name.
func (r Record) name() string {
	p := r.Path
	if n := len(p); n != 0 && p[n-1] == 0 {
		p = p[:n-1]
	}
	return string(p)
}

// matches reports whether the record is stored under path.
func (r Record) matches(path string) bool {
	p := r.Path
	if n := len(p); n == len(path)+1 && p[n-1] == 0 {
		p = p[:n-1]
	}
	return len(p) != 0 && string(p) == path
}

// AppendRecord appends an encoded record for path and content to dst.
func AppendRecord(dst []byte, path string, content []byte) ([]byte, error) {
	if len(path) > MaxPathLen {
		return dst, ErrPathTooLong
	}
	if n := len(path); n != 0 && path[n-1] == 0 {
		// reserved for paths written by the C mkrom tool
		return dst, ErrInvalidPath
	}
	if uint64(len(content)) > MaxContentLen {
		return dst, ErrContentTooLarge
	}

	var hdr [recordHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[0:], uint32(len(content)+1))
	hdr[4] = byte(len(path))

	dst = append(dst, hdr[:]...)
	dst = append(dst, path...)
	dst = append(dst, content...)
	return append(dst, 0), nil
}

// EncodeRecord is a shortcut for AppendRecord(nil, path, content).
func EncodeRecord(path string, content []byte) ([]byte, error) {
	return AppendRecord(nil, path, content)
}

// DecodeRecord decodes the record at offset off and returns it together
// with the offset of the following record. It returns ErrEndOfStream at the
// terminator record and ErrTruncated if the stream ends before the record
// does.
func DecodeRecord(stream []byte, off int) (Record, int, error) {
	if off < 0 || len(stream)-off < recordHeaderLen {
		return Record{}, off, ErrTruncated
	}

	size := int64(binary.BigEndian.Uint32(stream[off:]))
	plen := int64(stream[off+4])
	if size == 0 {
		return Record{}, off + recordHeaderLen, ErrEndOfStream
	}

	pos := int64(off + recordHeaderLen)
	end := pos + plen + size
	if end > int64(len(stream)) {
		return Record{}, off, ErrTruncated
	}

	rec := Record{
		Path:    stream[pos : pos+plen : pos+plen],
		Content: stream[pos+plen : end-1 : end-1],
	}
	return rec, int(end), nil
}
