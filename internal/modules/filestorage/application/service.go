package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/saransh1220/premium-profile/internal/modules/filestorage/domain"
)

// maxNameAttempts bounds the name(1), name(2), ... scan.
const maxNameAttempts = 1000

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._()\-]+`)

// ErrNoFreeName is returned when every candidate name in the scan is taken.
var ErrNoFreeName = errors.New("no free file name available")

// FileService provides high-level file operations
type FileService struct {
	storage domain.FileStorage
}

// NewFileService creates a new file service
func NewFileService(storage domain.FileStorage) *FileService {
	return &FileService{
		storage: storage,
	}
}

// folderProvisioner is implemented by backends with real directories.
type folderProvisioner interface {
	EnsureFolder(folder string) error
}

// EnsureFolder creates folder on backends that need it before the first
// upload into it. Object stores have no folders, so it is a no-op for them.
func (s *FileService) EnsureFolder(folder string) error {
	p, ok := s.storage.(folderProvisioner)
	if !ok {
		return nil
	}
	if err := p.EnsureFolder(folder); err != nil {
		return fmt.Errorf("failed to provision %s: %w", folder, err)
	}
	return nil
}

// UploadUnique stores file in folder under the original file name. When the
// name is taken, "(1)", "(2)", ... is appended to the base name until a free
// key is found, so uploads sharing a name never overwrite each other.
func (s *FileService) UploadUnique(ctx context.Context, folder, originalName string, file io.ReadSeeker, contentType string) (*domain.File, error) {
	base, ext := SplitName(originalName)

	for n := 0; n < maxNameAttempts; n++ {
		name := CandidateName(base, ext, n)
		key := path.Join(folder, name)

		taken, err := s.storage.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", key, err)
		}
		if taken {
			continue
		}

		size, err := rewind(file)
		if err != nil {
			return nil, err
		}
		url, err := s.storage.UploadFile(ctx, key, file, contentType)
		if errors.Is(err, domain.ErrFileExists) {
			// Lost a race with a concurrent upload of the same name.
			continue
		}
		if err != nil {
			return nil, err
		}

		return &domain.File{Key: key, URL: url, ContentType: contentType, Size: size}, nil
	}

	return nil, ErrNoFreeName
}

// DeleteByURL removes the object behind url. A missing object is not an error.
func (s *FileService) DeleteByURL(ctx context.Context, fileURL string) error {
	key, err := s.storage.GetKeyFromURL(fileURL)
	if err != nil {
		return err
	}
	return s.DeleteIfExists(ctx, key)
}

// DeleteIfExists deletes key, treating an already missing object as success.
func (s *FileService) DeleteIfExists(ctx context.Context, key string) error {
	err := s.storage.DeleteFile(ctx, key)
	if err == nil || errors.Is(err, domain.ErrFileNotFound) {
		return nil
	}
	return err
}

// OpenByURL streams the object behind a URL produced by this storage.
func (s *FileService) OpenByURL(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	key, err := s.storage.GetKeyFromURL(fileURL)
	if err != nil {
		return nil, err
	}
	return s.storage.OpenFile(ctx, key)
}

// SplitName returns the sanitized base name and the original extension
// (including the dot) of a client supplied file name.
func SplitName(originalName string) (string, string) {
	name := filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "._")
	ext = unsafeNameChars.ReplaceAllString(ext, "")
	if base == "" {
		base = "file"
	}
	return base, ext
}

// CandidateName builds the n-th name of the collision scan: base.ext, base(1).ext, ...
func CandidateName(base, ext string, n int) string {
	if n == 0 {
		return base + ext
	}
	return fmt.Sprintf("%s(%d)%s", base, n, ext)
}

// rewind returns the size of file and leaves it positioned at the start.
// The reader is handed to the backend unwrapped so S3 can seek it on retry.
func rewind(file io.ReadSeeker) (int64, error) {
	size, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to size upload: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind upload: %w", err)
	}
	return size, nil
}
