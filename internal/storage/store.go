// Package storage holds attachment payloads on the local file system.
// Only metadata lives in the database; handlers stream bytes in and out
// of the store.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrTooLarge is returned when an upload exceeds the configured ceiling.
var ErrTooLarge = errors.New("file exceeds the maximum allowed size")

// Store is a blob store rooted at a single directory.
type Store struct {
	root     string
	maxBytes int64
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve storage root")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create storage root")
	}
	return &Store{root: abs, maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured upload ceiling.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// NewKey generates a storage key preserving the original extension.
func NewKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return uuid.New().String() + ext
}

// safePath resolves a key against the root and rejects anything that
// escapes it (directory traversal).
func (s *Store) safePath(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if cleaned == "" || filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		return "", errors.Errorf("invalid storage key: %s", key)
	}
	joined := filepath.Join(s.root, cleaned)
	if !strings.HasPrefix(joined, s.root+string(os.PathSeparator)) {
		return "", errors.Errorf("storage key escapes root: %s", key)
	}
	return joined, nil
}

// Save writes the payload under key, enforcing the size ceiling. When
// declaredSize is already known to exceed the ceiling nothing is
// written; otherwise the copy is capped so a lying client cannot
// overshoot it either.
func (s *Store) Save(key string, r io.Reader, declaredSize int64) (int64, error) {
	if s.maxBytes > 0 && declaredSize > s.maxBytes {
		return 0, ErrTooLarge
	}

	path, err := s.safePath(key)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create blob file")
	}
	defer f.Close()

	limit := s.maxBytes
	if limit <= 0 {
		limit = declaredSize
	}

	written, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		_ = os.Remove(path)
		return 0, errors.Wrap(err, "failed to write blob")
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		_ = os.Remove(path)
		return 0, ErrTooLarge
	}

	return written, nil
}

// Open returns a reader over the stored payload.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	path, err := s.safePath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open blob")
	}
	return f, nil
}

// Delete removes the stored payload. Missing blobs are not an error;
// the metadata row is the source of truth.
func (s *Store) Delete(key string) error {
	path, err := s.safePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete blob")
	}
	return nil
}
