package offline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore keeps downloaded video payloads on local disk. Blobs are
// keyed by installation and URL together, so one install evicting its
// copy can never strand another install's downloadedIds entry.
type BlobStore struct {
	dir string
}

func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

func (b *BlobStore) path(installID, url string) string {
	sum := sha256.Sum256([]byte(installID + "\n" + url))
	return filepath.Join(b.dir, hex.EncodeToString(sum[:])+".bin")
}

// Put writes atomically via a temp file so a crash mid-write never
// leaves a half-cached payload that IsCached would report as present.
func (b *BlobStore) Put(installID, url string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, "download-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, b.path(installID, url))
}

func (b *BlobStore) Get(installID, url string) ([]byte, bool) {
	data, err := os.ReadFile(b.path(installID, url))
	if err != nil {
		return nil, false
	}
	return data, true
}

func (b *BlobStore) IsCached(installID, url string) bool {
	_, err := os.Stat(b.path(installID, url))
	return err == nil
}

// Remove evicts the payload; removing an absent blob is a no-op.
func (b *BlobStore) Remove(installID, url string) error {
	err := os.Remove(b.path(installID, url))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
