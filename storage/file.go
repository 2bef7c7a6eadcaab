package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// FileStore keeps the cart in a single JSON file. Writes go to a temporary
// file in the same directory and are renamed over the target, so a crash
// never leaves a half-written cart behind.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "read %s", s.path)
		}
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "sync %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "replace %s", s.path)
	}
	return nil
}
