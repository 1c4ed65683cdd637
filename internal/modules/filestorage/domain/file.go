package domain

import "errors"

var (
	// ErrFileExists is returned by UploadFile when the key is already taken.
	ErrFileExists = errors.New("file already exists")
	// ErrFileNotFound is returned when a key has no stored object.
	ErrFileNotFound = errors.New("file not found")
	// ErrKeyOutsideStorage is returned for URLs this backend did not produce.
	ErrKeyOutsideStorage = errors.New("url does not belong to this storage")
)

// File describes a stored object
type File struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
