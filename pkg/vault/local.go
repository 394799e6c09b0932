package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultDirPermissions is the permission mode for created blob directories.
const DefaultDirPermissions = 0o750

// LocalStore stores blobs as files named by their content hash under a single
// directory. It backs both the local side of push/pull and local vault
// directories.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at dir, creating it when absent.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
	}

	return &LocalStore{root: dir}, nil
}

// Root returns the store's directory.
func (s *LocalStore) Root() string {
	return s.root
}

// Put writes the blob to a temporary file and renames it into place, so a
// partial failure never leaves a torn blob under the final name and repeating
// the put is safe.
func (s *LocalStore) Put(ctx context.Context, id string, r io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, "."+id+".partial-*")
	if err != nil {
		return fmt.Errorf("failed to create temp blob for %s: %w", id, err)
	}

	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)

		if copyErr != nil {
			return fmt.Errorf("failed to write blob %s: %w", id, copyErr)
		}

		return fmt.Errorf("failed to finalize blob %s: %w", id, closeErr)
	}

	if err := os.Rename(tmpPath, s.blobPath(id)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to commit blob %s: %w", id, err)
	}

	return nil
}

// Fetch opens a blob for reading.
func (s *LocalStore) Fetch(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	file, err := os.Open(s.blobPath(id)) // #nosec G304 - path is store root + content hash
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}

		return nil, 0, fmt.Errorf("failed to open blob %s: %w", id, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, 0, fmt.Errorf("failed to stat blob %s: %w", id, err)
	}

	return file, info.Size(), nil
}

// Delete removes a blob.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.blobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}

		return fmt.Errorf("failed to remove blob %s: %w", id, err)
	}

	return nil
}

// List enumerates blobs by filename. Partial temp files are skipped.
func (s *LocalStore) List(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs in %s: %w", s.root, err)
	}

	blobs := make(map[string]int64, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue // removed between readdir and stat
		}

		blobs[entry.Name()] = info.Size()
	}

	return blobs, nil
}

// Stat reports a blob's size.
func (s *LocalStore) Stat(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(s.blobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}

		return 0, fmt.Errorf("failed to stat blob %s: %w", id, err)
	}

	return info.Size(), nil
}

// Close is a no-op for local stores.
func (s *LocalStore) Close() error {
	return nil
}

func (s *LocalStore) blobPath(id string) string {
	return filepath.Join(s.root, id)
}
