package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
	"github.com/coursehub/coursehub-gateway/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	credentialFileMode fs.FileMode = 0o600
	credentialDirMode  fs.FileMode = 0o700
)

type fileCookie struct {
	Name     string    `yaml:"name"`
	Value    string    `yaml:"value"`
	Path     string    `yaml:"path,omitempty"`
	Domain   string    `yaml:"domain,omitempty"`
	Expires  time.Time `yaml:"expires,omitempty"`
	Secure   bool      `yaml:"secure,omitempty"`
	HttpOnly bool      `yaml:"httpOnly,omitempty"`
}

type fileCredential struct {
	Value     string       `yaml:"value"`
	Cookies   []fileCookie `yaml:"cookies,omitempty"`
	UpdatedAt time.Time    `yaml:"updatedAt"`
	Encrypted bool         `yaml:"encrypted,omitempty"`
}

// FileStore persists the credential in a yaml file that only the current user can read
type FileStore struct {
	lock      *sync.Mutex
	path      string
	encryptor models.Encryptor
}

func (f *FileStore) GetCredential(ctx context.Context) (models.Credential, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Credential{}, gwerrors.ErrCredentialNotFound
		}
		return models.Credential{}, err
	}
	if info, statErr := os.Stat(f.path); statErr == nil && info.Mode().Perm()&0o077 != 0 {
		slog.Warn("CREDENTIAL STORE", "message", "the credential file can be read by other users", "path", f.path, "mode", info.Mode().Perm().String())
	}
	var stored fileCredential
	err = yaml.Unmarshal(raw, &stored)
	if err != nil {
		slog.Error("CREDENTIAL STORE", "message", "the credential file cannot be parsed", "path", f.path, "error", err)
		return models.Credential{}, fmt.Errorf("%w: %w", gwerrors.ErrCredentialParse, err)
	}
	if stored.Value == "" {
		return models.Credential{}, gwerrors.ErrCredentialNotFound
	}
	if stored.Encrypted && f.encryptor == nil {
		return models.Credential{}, fmt.Errorf("%w: the stored credential is encrypted", gwerrors.ErrCredentialParse)
	}
	credential := models.Credential{
		Value:     stored.Value,
		Cookies:   make(models.SerializableCookies, 0, len(stored.Cookies)),
		UpdatedAt: stored.UpdatedAt,
	}
	for _, cookie := range stored.Cookies {
		credential.Cookies = append(credential.Cookies, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}
	if !stored.Encrypted {
		return credential, nil
	}
	return credential.Decrypt(f.encryptor)
}

func (f *FileStore) SetCredential(ctx context.Context, credential models.Credential) error {
	encCredential, err := credential.Encrypt(f.encryptor)
	if err != nil {
		return err
	}
	stored := fileCredential{
		Value:     encCredential.Value,
		Cookies:   make([]fileCookie, 0, len(encCredential.Cookies)),
		UpdatedAt: encCredential.UpdatedAt,
		Encrypted: f.encryptor != nil,
	}
	for _, cookie := range encCredential.Cookies {
		stored.Cookies = append(stored.Cookies, fileCookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Domain:   cookie.Domain,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		})
	}
	raw, err := yaml.Marshal(stored)
	if err != nil {
		return err
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	err = os.MkdirAll(filepath.Dir(f.path), credentialDirMode)
	if err != nil {
		return err
	}
	// write to a temporary file first so a crash never leaves a truncated credential behind
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	err = tmp.Chmod(credentialFileMode)
	if err != nil {
		tmp.Close()
		return err
	}
	_, err = tmp.Write(raw)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f *FileStore) RemoveCredential(ctx context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the location of the credential file
func (f *FileStore) Path() string {
	return f.path
}

type FileStoreOption func(*FileStore) error

func WithFilePath(path string) FileStoreOption {
	return func(f *FileStore) error {
		if path == "" {
			return fmt.Errorf("the credential file path cannot be empty")
		}
		f.path = path
		return nil
	}
}

func WithFileEncryption(secretKey string) FileStoreOption {
	return func(f *FileStore) error {
		encryptor, err := NewGCMEncryptor(secretKey)
		if err != nil {
			return err
		}
		f.encryptor = encryptor
		return nil
	}
}

func NewFileStore(options ...FileStoreOption) (*FileStore, error) {
	store := FileStore{lock: &sync.Mutex{}}
	for _, opt := range options {
		err := opt(&store)
		if err != nil {
			return &FileStore{}, err
		}
	}
	if store.path == "" {
		path, err := DefaultFilePath()
		if err != nil {
			return &FileStore{}, err
		}
		store.path = path
	}
	return &store, nil
}

// DefaultFilePath is the credential file location used when none is configured
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "coursehub", "credentials.yaml"), nil
}

var _ models.CredentialRepository = (*FileStore)(nil)
