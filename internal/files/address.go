// Package files provides content addressing and the deduplicated file store.
package files

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

// DefaultExt is the placeholder extension for filenames that carry none.
const DefaultExt = "bin"

// ContentAddress identifies uploaded bytes by their SHA-1 digest. Identical
// bytes resolve to the identical address whatever the original filename was;
// the address, not the filename, keys storage and retrieval.
type ContentAddress struct {
	Hash string `json:"hash"`
	Ext  string `json:"ext"`
}

// New computes the address for data, taking only the extension from filename.
func New(filename string, data []byte) ContentAddress {
	sum := sha1.Sum(data)
	return ContentAddress{
		Hash: hex.EncodeToString(sum[:]),
		Ext:  extOf(filename),
	}
}

// Path is the sharded relative storage path: the 40-char hex digest split
// into a 3/3/34 triple, e.g. "0a1/b2c/…34 chars….png". Two three-hex-char
// levels spread content over up to 4096x4096 prefix buckets.
func (a ContentAddress) Path() string {
	return fmt.Sprintf("%s/%s/%s.%s", a.Hash[:3], a.Hash[3:6], a.Hash[6:], a.Ext)
}

// URL is the retrieval URL, derived only from the workspace and the address.
// Re-uploading identical bytes under a different filename yields the same URL.
func (a ContentAddress) URL(wsID int64) string {
	return fmt.Sprintf("/files/%d/%s", wsID, a.Path())
}

func extOf(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return DefaultExt
	}
	return ext
}
