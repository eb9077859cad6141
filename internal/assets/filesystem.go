package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// FileStore keeps logos as files named by key under dir
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Put(_ context.Context, logo Logo) error {
	path := filepath.Join(s.dir, logo.Key)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(logo.Bytes); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write logo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write logo: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to store logo: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) (*Logo, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrLogoMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}

	return &Logo{
		Key:         key,
		ContentType: mimetype.Detect(data).String(),
		Bytes:       data,
	}, nil
}
