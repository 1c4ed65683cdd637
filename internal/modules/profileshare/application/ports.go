package application

import (
	"context"
	"image"
	"io"

	"github.com/google/uuid"
	fileDomain "github.com/saransh1220/premium-profile/internal/modules/filestorage/domain"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
)

// FileStore is the part of the file storage module this service needs
type FileStore interface {
	EnsureFolder(folder string) error
	UploadUnique(ctx context.Context, folder, originalName string, file io.ReadSeeker, contentType string) (*fileDomain.File, error)
	DeleteByURL(ctx context.Context, fileURL string) error
	OpenByURL(ctx context.Context, fileURL string) (io.ReadCloser, error)
}

// QRRenderer draws a QR code PNG for the given content
type QRRenderer interface {
	DecodeOverlay(r io.Reader) (image.Image, error)
	Render(content string, settings domain.QRSettings, size int, overlay image.Image) ([]byte, error)
}

// EventPublisher notifies other sessions of the same user about changes
type EventPublisher interface {
	PublishProfileShare(ctx context.Context, userID uuid.UUID, reason string, record *domain.Record)
}

type noopPublisher struct{}

func (noopPublisher) PublishProfileShare(context.Context, uuid.UUID, string, *domain.Record) {}

// LogoResult is returned by a successful logo upload
type LogoResult struct {
	LogoURL string         `json:"logoUrl"`
	Record  *domain.Record `json:"record"`
}
