// Package xlzip handles the ZIP container layer around an xlsx template: it
// is the "external collaborator" the rest of the pipeline treats as an
// out-of-scope concern (§1/§6 of the template-pipeline specification) — it
// only decompresses the archive into a part-path → bytes mapping and
// recompresses it on exit, plus the one piece of validation the caller is
// required to perform before trusting the bytes are a zip at all.
package xlzip

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrInvalidContainer is returned by Unpack when the input is not long
// enough to be a zip end-of-central-directory record, or its leading four
// bytes are not one of the accepted zip signatures.
var ErrInvalidContainer = errors.New("xlzip: invalid zip container")

// validSignatures are the little-endian 4-byte zip magic numbers accepted
// as evidence of a well-formed (if possibly empty or split) zip archive.
var validSignatures = [3]uint32{0x04034b50, 0x06054b50, 0x08074b50}

// Validate reports a non-nil ErrInvalidContainer-wrapping error if data is
// too short to be a zip end-of-central-directory record, or does not begin
// with one of the standard zip local-file, end-of-central-directory, or
// split-archive signatures.
func Validate(data []byte) error {
	if len(data) < 22 {
		return fmt.Errorf("%w: file too short (%d bytes)", ErrInvalidContainer, len(data))
	}
	sig := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	for _, v := range validSignatures {
		if sig == v {
			return nil
		}
	}
	return fmt.Errorf("%w: unrecognized signature %#08x", ErrInvalidContainer, sig)
}

// Bundle is the in-memory mapping from OOXML part path (e.g.
// "xl/worksheets/sheet1.xml") to its raw bytes, plus the order in which
// Unpack read the entries (Repack does not use it; it writes in sorted
// path order).
type Bundle struct {
	Parts map[string][]byte
	order []string
}

// Unpack validates data as a zip container and reads every entry into
// memory, dropping directory entries and xl/calcChain.xml (the core must
// never reflect a stale calculation chain back out).
func Unpack(data []byte) (*Bundle, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}
	b := &Bundle{Parts: map[string][]byte{}}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.Name == "xl/calcChain.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		blob, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		b.Parts[f.Name] = blob
		b.order = append(b.order, f.Name)
	}
	return b, nil
}

// SortedPaths returns every part path in the bundle matching prefix, in
// lexicographic order, satisfying the rendering pipeline's requirement
// that sheets are processed in sorted path order for determinism.
func (b *Bundle) SortedPaths(prefix string) []string {
	var out []string
	for p := range b.Parts {
		if len(prefix) == 0 || (len(p) >= len(prefix) && p[:len(prefix)] == prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Repack writes every part back out as a new zip archive, deflated at
// compression level 6, in sorted path order for reproducibility.
func (b *Bundle) Repack() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return newDeflateLevel6(w)
	})

	paths := make([]string, 0, len(b.Parts))
	for p := range b.Parts {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: p, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(b.Parts[p]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
