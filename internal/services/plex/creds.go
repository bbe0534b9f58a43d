package plex

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Credentials is the cached plex.tv authentication state.
type Credentials struct {
	AuthToken        string `json:"auth_token"`
	ClientIdentifier string `json:"client_identifier"`
}

// CredsStore abstracts persistence for cached credentials.
type CredsStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// FileCredsStore writes credentials to a JSON file on disk with restricted
// permissions. Writes take a sibling flock so concurrent runs do not clobber
// each other's tokens.
type FileCredsStore struct {
	path string
}

// NewFileCredsStore builds a FileCredsStore rooted at the provided path.
func NewFileCredsStore(path string) *FileCredsStore {
	return &FileCredsStore{path: path}
}

// Load reads credentials from disk. A missing file resolves to empty
// credentials.
func (s *FileCredsStore) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, nil
}

// Save persists credentials with 0600 permissions under a file lock.
func (s *FileCredsStore) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure credentials directory: %w", err)
	}

	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock credentials file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the cached credentials file.
func (s *FileCredsStore) Clear() error {
	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock credentials file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func (s *FileCredsStore) lockPath() string {
	return s.path + ".lock"
}

// EnsureClientIdentifier loads credentials and fills in a generated client
// identifier if none is stored yet, persisting the result.
func EnsureClientIdentifier(store CredsStore) (Credentials, error) {
	creds, err := store.Load()
	if err != nil {
		return Credentials{}, err
	}
	if strings.TrimSpace(creds.ClientIdentifier) == "" {
		creds.ClientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
		if err := store.Save(creds); err != nil {
			return Credentials{}, err
		}
	}
	return creds, nil
}
