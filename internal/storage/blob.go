package storage

import (
	"fmt"
	"io"
	"path"
	"time"
)

// BlobStore keeps the source documents (PDF/PPT decks) a generation request
// was built from, so a quiz can be audited or regenerated later.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

// UploadKey builds the canonical blob key for a class upload.
func UploadKey(classID, filename string) string {
	return path.Join("uploads", classID, fmt.Sprintf("%d-%s", time.Now().Unix(), path.Base(filename)))
}
