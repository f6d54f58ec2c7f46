package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const configFileName = "config.yaml"

// Viper keys used in the config file
const (
	keyToken     = "auth.token"
	keyServerURL = "server.url"
)

// FileStore persists the backend credential and server settings in a YAML
// file under the user's home directory (~/.trident/config.yaml). It
// implements TokenProvider, so a logged-in CLI session authenticates
// without re-prompting.
type FileStore struct {
	v    *viper.Viper
	path string
}

// NewFileStore opens (or creates) the store in the default location
func NewFileStore() (*FileStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return NewFileStoreAt(filepath.Join(home, ".trident"))
}

// NewFileStoreAt opens (or creates) the store in dir
func NewFileStoreAt(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, configFileName)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault(keyToken, "")
	v.SetDefault(keyServerURL, "")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; it appears on the first save
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	return &FileStore{v: v, path: path}, nil
}

// Path returns the location of the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Token implements TokenProvider. A stored token that already carries an
// expired exp claim counts as unusable.
func (s *FileStore) Token() (string, bool) {
	token := s.v.GetString(keyToken)
	if token == "" {
		return "", false
	}
	if Expired(token, time.Now()) {
		return "", false
	}
	return token, true
}

// StoredToken returns the raw stored token, expired or not. Empty means
// nothing is stored.
func (s *FileStore) StoredToken() string {
	return s.v.GetString(keyToken)
}

// SaveToken persists the credential
func (s *FileStore) SaveToken(token string) error {
	s.v.Set(keyToken, token)
	if err := s.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// ClearToken removes the stored credential
func (s *FileStore) ClearToken() error {
	return s.SaveToken("")
}

// ServerURL returns the saved backend address, empty when none is saved
func (s *FileStore) ServerURL() string {
	return s.v.GetString(keyServerURL)
}

// SaveServerURL persists the backend address
func (s *FileStore) SaveServerURL(url string) error {
	s.v.Set(keyServerURL, url)
	if err := s.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
