package xl

import (
	"os"
	"path/filepath"
	"strings"
)

// Storage is the interface for writing out a rendered workbook's parts.
// render.RenderWithParts hands back a path-keyed part set; Storage is how a
// caller decides what to do with it.
type Storage interface {
	WriteBlob(path string, blob []byte) error
}

// DirStorage writes a rendered workbook's parts to a directory structure
// on disk instead of re-zipping them, which is what a template author
// reaches for when a render comes out wrong and the generated XML itself
// needs to be read, rather than a repacked .xlsx opened in Excel.
//
// Adapted from adnsv-go-xl's zfs.go, which paired this with a ZipStorage
// sibling for assembling a workbook part-by-part from scratch; that
// concern is now xlzip.Bundle.Repack's, so ZipStorage has no remaining
// caller here and was dropped rather than kept unused.
type DirStorage struct {
	Dir string
}

// NewDirStorage creates a directory-based Storage rooted at dir. The
// directory is created on first write if it doesn't already exist.
func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{Dir: dir}
}

// WriteBlob writes one part to dir/path, creating parent directories as
// needed.
func (ds *DirStorage) WriteBlob(path string, blob []byte) error {
	path = strings.TrimPrefix(path, "/")
	fn := filepath.Join(ds.Dir, path)
	if err := os.MkdirAll(filepath.Dir(fn), 0o777); err != nil {
		return err
	}
	return os.WriteFile(fn, blob, 0o666)
}

// DumpParts writes every part in parts to dst using the given Storage, in
// deterministic path order.
func DumpParts(dst Storage, parts map[string][]byte) error {
	return Enumerate(parts, func(path string, blob []byte) error {
		return dst.WriteBlob(path, blob)
	})
}
