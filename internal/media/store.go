// Package media stores uploaded source videos and serves them back to the
// dashboard with byte-range support, which browser video elements require
// for seeking.
package media

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Store keeps uploaded files on disk under a single directory, keyed by a
// generated id. The original filename is retained for display only; the
// on-disk name is always id plus the sanitized extension.
type Store struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	files map[string]storedFile
}

type storedFile struct {
	path string
	name string
}

func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &Store{
		dir:    dir,
		logger: logger,
		files:  make(map[string]storedFile),
	}, nil
}

// Save writes the uploaded content to disk and returns the generated id.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	id := uuid.NewString()
	path := filepath.Join(s.dir, id+safeExt(filename))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, r)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	s.mu.Lock()
	s.files[id] = storedFile{path: path, name: filepath.Base(filename)}
	s.mu.Unlock()

	s.logger.Info("upload stored", "id", id, "name", filepath.Base(filename), "bytes", n)
	return id, nil
}

// Lookup resolves an id to its on-disk path.
func (s *Store) Lookup(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return "", false
	}
	return f.path, true
}

// Name returns the original filename for an id.
func (s *Store) Name(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return "", false
	}
	return f.name, true
}

// safeExt extracts a usable extension from an untrusted filename. Anything
// that does not look like a plain extension is dropped.
func safeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, c := range ext[1:] {
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum {
			return ""
		}
	}
	return strings.ToLower(ext)
}
