package store

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// BlobStore holds binary payloads addressed by the storage path returned at
// write time. Derived renditions live next to the original at path + "_" + size
// and are produced by external tooling, never here.
type BlobStore interface {
	Save(data []byte) (string, error)
	Read(path string) ([]byte, error)
	IsAlive() bool
}

// DiskBlobStore writes blobs under a single root directory, one file per
// object. Every write gets a fresh uuid name, so concurrent uploads never
// collide.
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore creates the storage root if needed.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskBlobStore{root: root}, nil
}

// Root returns the storage root directory.
func (s *DiskBlobStore) Root() string {
	return s.root
}

func (s *DiskBlobStore) Save(data []byte) (string, error) {
	path := filepath.Join(s.root, uuid.NewString())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *DiskBlobStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// IsAlive reports whether the storage root is still a directory we can reach.
func (s *DiskBlobStore) IsAlive() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}
