package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/saransh1220/premium-profile/internal/modules/filestorage/domain"
)

// LocalStorage implements FileStorage on the local filesystem. Files are
// served by the gateway's static handler under baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage provisions basePath once and returns the backend.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath is the root directory served as static content.
func (l *LocalStorage) BasePath() string {
	return l.basePath
}

// EnsureFolder creates a sub directory ahead of the first upload into it.
func (l *LocalStorage) EnsureFolder(folder string) error {
	full, err := l.resolve(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// UploadFile writes file to key. The folder of key must already exist, see
// EnsureFolder. The file is created exclusively so that two concurrent uploads
// racing for the same name cannot overwrite each other.
func (l *LocalStorage) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return "", err
	}

	outFile, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", domain.ErrFileExists
	}
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(outFile, file); err != nil {
		outFile.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return l.url(key), nil
}

// DeleteFile deletes a file from the local filesystem
func (l *LocalStorage) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrFileNotFound
		}
		return err
	}
	return nil
}

func (l *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *LocalStorage) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrFileNotFound
	}
	return f, err
}

// GetKeyFromURL extracts the key from a public URL
func (l *LocalStorage) GetKeyFromURL(url string) (string, error) {
	prefix := l.baseURL + "/"
	if len(url) > len(prefix) && strings.HasPrefix(url, prefix) {
		return url[len(prefix):], nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrKeyOutsideStorage, url)
}

func (l *LocalStorage) url(key string) string {
	return fmt.Sprintf("%s/%s", l.baseURL, key)
}

// resolve maps key onto basePath, refusing keys that escape it.
func (l *LocalStorage) resolve(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.basePath, filepath.FromSlash(key)), nil
}
