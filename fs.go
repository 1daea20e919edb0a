package romfs

import (
	"bytes"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"
)

var _ fs.ReadFileFS = (*FS)(nil)

// Open implements fs.FS. Stored paths that are not valid fs.FS names (see
// fs.ValidPath) are only reachable through Lookup. Directories are implied
// by the slash-separated paths of the stored files.
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if !f.valid() {
		return nil, &fs.PathError{Op: "open", Path: name, Err: ErrInvalidHandle}
	}

	if name != "." {
		content, err := f.Lookup(name)
		if err == nil {
			return &romFile{
				Reader: bytes.NewReader(content),
				info:   fileInfo{name: pathBase(name), size: int64(len(content))},
			}, nil
		} else if err != ErrNotFound {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
	}

	entries, ok := f.readDir(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &romDir{
		info:    fileInfo{name: pathBase(name), dir: true},
		entries: entries,
	}, nil
}

// ReadFile implements fs.ReadFileFS. Unlike Lookup, it returns a copy.
func (f *FS) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}

	content, err := f.Lookup(name)
	if err == ErrNotFound {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	} else if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return bytes.Clone(content), nil
}

// readDir lists the direct children of dir. It reports false when dir is
// neither the root nor the parent of any stored file.
func (f *FS) readDir(dir string) ([]fs.DirEntry, bool) {
	prefix := ""
	if dir != "." {
		prefix = dir + "/"
	}

	seen := make(map[string]struct{})
	entries := []fs.DirEntry{}
	for it := f.Iterator(); it.Next(); {
		path := it.Path()
		if path == "." || !fs.ValidPath(path) || !strings.HasPrefix(path, prefix) {
			continue
		}

		rest := path[len(prefix):]
		info := fileInfo{name: rest, size: int64(len(it.Content()))}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			info = fileInfo{name: rest[:i], dir: true}
		}

		if _, ok := seen[info.name]; ok {
			continue
		}
		seen[info.name] = struct{}{}
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}

	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, dir == "." || len(entries) != 0
}

func pathBase(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// --------------------------------------------------------------------

type fileInfo struct {
	name string
	size int64
	dir  bool
}

func (i fileInfo) Name() string       { return i.name }
func (i fileInfo) Size() int64        { return i.size }
func (i fileInfo) ModTime() time.Time { return time.Time{} }
func (i fileInfo) IsDir() bool        { return i.dir }
func (i fileInfo) Sys() any           { return nil }
func (i fileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

type romFile struct {
	*bytes.Reader
	info fileInfo
}

func (f *romFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *romFile) Close() error               { return nil }

type romDir struct {
	info    fileInfo
	entries []fs.DirEntry
	off     int
}

func (d *romDir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *romDir) Close() error               { return nil }

func (d *romDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.name, Err: fs.ErrInvalid}
}

// ReadDir implements fs.ReadDirFile.
func (d *romDir) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := d.entries[d.off:]
	if n <= 0 {
		d.off = len(d.entries)
		return slices.Clone(rest), nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}

	n = min(n, len(rest))
	d.off += n
	return slices.Clone(rest[:n]), nil
}
