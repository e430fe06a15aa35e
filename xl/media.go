package xl

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// BlobHash derives a content-addressed key for an image payload by hashing
// it with FNV-128 and reinterpreting the digest as a UUID, so identical
// image bytes collapse to the same key regardless of which cell or sheet
// embedded them.
func BlobHash(blob []byte) uuid.UUID {
	h := fnv.New128()
	h.Write(blob)
	uid, _ := uuid.FromBytes(h.Sum([]byte{}))
	return uid
}
