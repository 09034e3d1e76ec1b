package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// FileStore keeps the dataset in a JSON file on local disk
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a store backed by path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the dataset file
func (s *FileStore) Load(ctx context.Context) (*pricing.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", pricing.ErrDatasetNotFound, s.path)
		}
		return nil, fmt.Errorf("read dataset %q: %w", s.path, err)
	}
	return Decode(data)
}

// Save writes the dataset through a temp file and rename so readers never
// see a partial document.
func (s *FileStore) Save(ctx context.Context, d *pricing.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(d)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".prices-*.json")
	if err != nil {
		return fmt.Errorf("create temp dataset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace dataset %q: %w", s.path, err)
	}

	s.logger.Info("Dataset saved",
		zap.String("path", s.path),
		zap.Int("zips", len(d.PricesByZip)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

var _ pricing.DatasetStore = (*FileStore)(nil)
