package domain

import (
	"context"
	"io"
)

// FileStorage defines the operations every storage backend (local disk, S3/MinIO) provides.
type FileStorage interface {
	// UploadFile stores file under key without overwriting and returns the public URL.
	// It fails with ErrFileExists when key is already taken.
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)

	// DeleteFile deletes a file by its key; ErrFileNotFound when absent.
	DeleteFile(ctx context.Context, key string) error

	// Exists reports whether key is taken.
	Exists(ctx context.Context, key string) (bool, error)

	// OpenFile streams the stored object.
	OpenFile(ctx context.Context, key string) (io.ReadCloser, error)

	// GetKeyFromURL extracts the storage key from a public URL
	GetKeyFromURL(url string) (string, error)
}
