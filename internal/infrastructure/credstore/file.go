// Package credstore holds the durable CredentialStore implementations.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/acme-erp/admin-console/internal/core/domain"
)

const DefaultKey = "token"

var errCorrupt = errors.New("credstore: undecodable document")

// FileStore keeps credentials in a JSON document of key → credential.
// Other keys in the document are preserved.
type FileStore struct {
	path string
	key  string
	log  zerolog.Logger
	mu   sync.Mutex
}

func NewFileStore(path, key string) *FileStore {
	if key == "" {
		key = DefaultKey
	}
	return &FileStore{path: path, key: key, log: zerolog.Nop()}
}

// WithLogger sets the logger used to report a replaced corrupt document.
func (s *FileStore) WithLogger(log zerolog.Logger) *FileStore {
	s.log = log
	return s
}

// DefaultPath is the per-user location used when none is configured.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("credstore: locate config dir: %w", err)
	}
	return filepath.Join(dir, "erpconsole", "credentials.json"), nil
}

func (s *FileStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", err
	}
	cred, ok := doc[s.key]
	if !ok || cred == "" {
		return "", domain.ErrNoCredential
	}
	return cred, nil
}

func (s *FileStore) Save(_ context.Context, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.readForWrite()
	if err != nil {
		return err
	}
	doc[s.key] = credential
	return s.write(doc)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, replaced, err := s.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := doc[s.key]; !ok && !replaced {
		return nil
	}
	delete(doc, s.key)
	return s.write(doc)
}

// readForWrite is read, except that an undecodable document is treated as
// empty so the next write replaces it.
func (s *FileStore) readForWrite() (doc map[string]string, replaced bool, err error) {
	doc, err = s.read()
	if errors.Is(err, errCorrupt) {
		s.log.Warn().Err(err).Str("path", s.path).Msg("replacing corrupt credentials file")
		return map[string]string{}, true, nil
	}
	return doc, false, err
}

func (s *FileStore) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credstore: read %s: %w", s.path, err)
	}

	doc := map[string]string{}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorrupt, s.path, err)
	}
	return doc, nil
}

// write replaces the document atomically via a temp file in the same directory.
func (s *FileStore) write(doc map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("credstore: create %s: %w", dir, err)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("credstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credstore: chmod: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credstore: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credstore: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("credstore: replace %s: %w", s.path, err)
	}
	return nil
}
