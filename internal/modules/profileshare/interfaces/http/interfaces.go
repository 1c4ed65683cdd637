package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/application"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
)

// ProfileShareService defines the use cases the handler exposes
type ProfileShareService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Record, error)
	Update(ctx context.Context, userID uuid.UUID, patch domain.Patch) (*domain.Record, error)
	SetQRSnapshot(ctx context.Context, userID uuid.UUID, snapshot string) (*domain.Record, error)
	UploadLogo(ctx context.Context, userID uuid.UUID, upload domain.LogoUpload) (*application.LogoResult, error)
	RemoveLogo(ctx context.Context, userID uuid.UUID) (*domain.Record, error)
	RenderQR(ctx context.Context, userID uuid.UUID, size int) ([]byte, error)
}
