package xlzip

import (
	"compress/flate"
	"io"
)

// newDeflateLevel6 pins the zip writer's compressor to deflate level 6,
// matching the OOXML convention every new entry this system produces
// must follow (§6 "Every new ZIP entry uses deflate with compression
// level 6").
func newDeflateLevel6(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, 6)
}
