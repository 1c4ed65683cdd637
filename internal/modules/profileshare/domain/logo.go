package domain

import (
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
)

var allowedLogoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// LogoUpload is a logo file received from a client
type LogoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// Validate rejects uploads that are missing, too large, not declared as an
// image or carry an extension outside the allow-list.
func (u LogoUpload) Validate(maxSize int64) error {
	if u.Content == nil || u.Filename == "" || u.Size <= 0 {
		return Reject(ErrNoFile)
	}
	if maxSize > 0 && u.Size > maxSize {
		return invalid(ErrFileTooLarge, "logo", "maximum size is "+humanSize(maxSize))
	}
	mediaType, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return invalid(ErrInvalidFileType, "logo", fmt.Sprintf("got %q", u.ContentType))
	}
	if !AllowedLogoExtension(u.Filename) {
		return invalid(ErrInvalidExtension, "logo", "allowed extensions are jpg, jpeg, png, gif, webp, bmp")
	}
	return nil
}

// AllowedLogoExtension reports whether filename ends in an accepted image extension.
func AllowedLogoExtension(filename string) bool {
	name := strings.ReplaceAll(filename, `\`, "/")
	return allowedLogoExtensions[strings.ToLower(path.Ext(name))]
}

func humanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
