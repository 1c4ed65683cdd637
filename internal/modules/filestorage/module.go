package filestorage

import (
	"context"
	"fmt"

	"github.com/saransh1220/premium-profile/internal/modules/filestorage/application"
	"github.com/saransh1220/premium-profile/internal/modules/filestorage/domain"
	"github.com/saransh1220/premium-profile/internal/modules/filestorage/infrastructure/local"
	"github.com/saransh1220/premium-profile/internal/modules/filestorage/infrastructure/s3"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/config"
)

// Module represents the FileStorage module
type Module struct {
	service *application.FileService
	storage domain.FileStorage
	local   *local.LocalStorage
}

// NewModule creates and initializes the FileStorage module
func NewModule(ctx context.Context, cfg config.FileStorageConfig) (*Module, error) {
	if cfg.UseS3 {
		storage, err := s3.NewS3Storage(ctx, s3.S3Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return &Module{service: application.NewFileService(storage), storage: storage}, nil
	}

	storage, err := local.NewLocalStorage(cfg.LocalPath, cfg.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	return &Module{service: application.NewFileService(storage), storage: storage, local: storage}, nil
}

// Provision creates folder ahead of the first upload. Object stores need no
// provisioning, so this only touches the local backend.
func (m *Module) Provision(folder string) error {
	return m.service.EnsureFolder(folder)
}

// LocalRoot is the directory the gateway serves under /uploads/, or "" when
// files live in an object store.
func (m *Module) LocalRoot() string {
	if m.local == nil {
		return ""
	}
	return m.local.BasePath()
}

// Service returns the file service for use by other modules
func (m *Module) Service() *application.FileService {
	return m.service
}
