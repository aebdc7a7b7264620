// Package blob stores uploaded attachments on the local filesystem.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store abstracts the attachment directory so services can be tested
// without touching a real filesystem.
type Store interface {
	// Path resolves a bare file name to its storage path.
	Path(name string) string
	Write(path string, data []byte) error
	Read(path string) ([]byte, error)
	Remove(path string) error
	Exists(path string) bool
}

// DirStore is a Store over a local directory.
type DirStore struct {
	root string
}

// NewDirStore creates root if needed and returns a DirStore.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("blob: create dir: %w", err)
	}
	return &DirStore{root: root}, nil
}

// Root returns the backing directory.
func (s *DirStore) Root() string { return s.root }

// Path resolves a bare file name inside the store root.
func (s *DirStore) Path(name string) string {
	return filepath.Join(s.root, name)
}

func (s *DirStore) Write(path string, data []byte) error {
	return os.WriteFile(path, data, 0o640)
}

func (s *DirStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *DirStore) Remove(path string) error {
	return os.Remove(path)
}

func (s *DirStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ Store = (*DirStore)(nil)
