package artifact

import (
	"os"
	"path/filepath"
)

// fsStore is the production Store, backed by the directory tree the videos
// live in. Artifacts are co-located with their video.
type fsStore struct{}

// NewFSStore returns the filesystem-backed store.
func NewFSStore() Store {
	return fsStore{}
}

func (fsStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (fsStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (fsStore) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (fsStore) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (fsStore) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (fsStore) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
