package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	krfs "github.com/kr/fs"
	"github.com/pkg/sftp"
)

// SFTPStore stores blobs as files named by their content hash in a directory
// on a remote SFTP host.
type SFTPStore struct {
	conn *SFTPConnection
	root string
}

// NewSFTPStore creates a store over an established connection, creating the
// remote blob directory when absent.
func NewSFTPStore(conn *SFTPConnection, root string) (*SFTPStore, error) {
	if err := conn.Client().MkdirAll(root); err != nil {
		return nil, fmt.Errorf("failed to create remote blob directory %s: %w", root, err)
	}

	return &SFTPStore{conn: conn, root: root}, nil
}

// Put writes the blob to a temporary remote name and renames it into place,
// so a dropped connection never leaves a torn blob under the final name.
func (s *SFTPStore) Put(ctx context.Context, id string, r io.Reader, _ int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client := s.conn.Client()
	tmpPath := s.blobPath("." + id + ".partial")

	remote, err := client.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create remote blob %s: %w", id, err)
	}

	_, copyErr := io.Copy(remote, r)
	closeErr := remote.Close()

	if copyErr != nil || closeErr != nil {
		_ = client.Remove(tmpPath)

		if copyErr != nil {
			return fmt.Errorf("failed to write remote blob %s: %w", id, copyErr)
		}

		return fmt.Errorf("failed to finalize remote blob %s: %w", id, closeErr)
	}

	finalPath := s.blobPath(id)

	// A previous partial run may have left the blob in place; PosixRename
	// replaces it atomically where the server supports the extension.
	if err := client.PosixRename(tmpPath, finalPath); err != nil {
		_ = client.Remove(finalPath)

		if err := client.Rename(tmpPath, finalPath); err != nil {
			_ = client.Remove(tmpPath)
			return fmt.Errorf("failed to commit remote blob %s: %w", id, err)
		}
	}

	return nil
}

// Fetch opens a remote blob for reading and reports its size.
func (s *SFTPStore) Fetch(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	client := s.conn.Client()

	info, err := client.Stat(s.blobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}

		return nil, 0, fmt.Errorf("failed to stat remote blob %s: %w", id, err)
	}

	remote, err := client.Open(s.blobPath(id))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open remote blob %s: %w", id, err)
	}

	return remote, info.Size(), nil
}

// Delete removes a remote blob.
func (s *SFTPStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.conn.Client().Remove(s.blobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}

		return fmt.Errorf("failed to remove remote blob %s: %w", id, err)
	}

	return nil
}

// List walks the remote blob directory. Directories below the root and
// partial temp files are skipped.
func (s *SFTPStore) List(ctx context.Context) (map[string]int64, error) {
	return collectBlobs(ctx, s.conn.Client().Walk(s.root), s.root)
}

// collectBlobs drains a remote directory walker into an id→size map.
func collectBlobs(ctx context.Context, walker *krfs.Walker, root string) (map[string]int64, error) {
	blobs := make(map[string]int64)

	for walker.Step() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := walker.Err(); err != nil {
			return nil, fmt.Errorf("failed to list remote blobs in %s: %w", root, err)
		}

		info := walker.Stat()
		if info.IsDir() {
			if walker.Path() != root {
				walker.SkipDir()
			}

			continue
		}

		name := path.Base(walker.Path())
		if name[0] == '.' {
			continue
		}

		blobs[name] = info.Size()
	}

	return blobs, nil
}

// Stat reports a remote blob's size.
func (s *SFTPStore) Stat(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := s.conn.Client().Stat(s.blobPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrBlobNotFound, id)
		}

		return 0, fmt.Errorf("failed to stat remote blob %s: %w", id, err)
	}

	return info.Size(), nil
}

// Close closes the underlying SFTP session and SSH connection.
func (s *SFTPStore) Close() error {
	return s.conn.Close()
}

// Client exposes the raw SFTP client for diagnostics.
func (s *SFTPStore) Client() *sftp.Client {
	return s.conn.Client()
}

func (s *SFTPStore) blobPath(id string) string {
	return path.Join(s.root, id)
}
