package application

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
)

const (
	DefaultQRSize = 512
	MinQRSize     = 128
	MaxQRSize     = 1024
)

// maxSaveAttempts bounds the reload and reapply loop of a write that keeps
// losing to concurrent writes.
const maxSaveAttempts = 5

// Options configures the profile share service
type Options struct {
	LogoFolder     string
	MaxLogoSize    int64
	MaxQRSnapshot  int64
	PerUserFolders bool

	// DeleteReplacedLogo removes the previous logo file after a new upload.
	// When false an upload never removes a stored file.
	DeleteReplacedLogo bool
}

// Service implements the profile share use cases
type Service struct {
	repo     domain.Repository
	files    FileStore
	renderer QRRenderer
	events   EventPublisher
	metrics  *Metrics
	logger   *slog.Logger
	opts     Options
	now      func() time.Time
}

// NewService creates a new profile share service. events, metrics and logger may be nil.
func NewService(repo domain.Repository, files FileStore, renderer QRRenderer, events EventPublisher, metrics *Metrics, logger *slog.Logger, opts Options) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LogoFolder == "" {
		opts.LogoFolder = "profile-share"
	}
	return &Service{
		repo:     repo,
		files:    files,
		renderer: renderer,
		events:   events,
		metrics:  metrics,
		logger:   logger.With("module", "profileshare"),
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the user's record, creating the default one on first access.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	return s.getOrCreate(ctx, userID, s.repo.GetByUserID)
}

func (s *Service) getOrCreate(ctx context.Context, userID uuid.UUID, load func(context.Context, uuid.UUID) (*domain.Record, error)) (*domain.Record, error) {
	record, err := load(ctx, userID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile share: %w", err)
	}

	record = domain.NewRecord(userID, s.now())
	if err := s.repo.Create(ctx, record); err != nil {
		if !errors.Is(err, domain.ErrRecordExists) {
			return nil, fmt.Errorf("failed to create profile share: %w", err)
		}
		// A concurrent first request created it.
		s.logger.DebugContext(ctx, "profile share created concurrently", "user_id", userID)
		record, err = load(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile share: %w", err)
		}
		return record, nil
	}

	s.logger.InfoContext(ctx, "profile share created", "user_id", userID)
	return record, nil
}

// Update merges patch into the user's record and persists it.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, patch domain.Patch) (*domain.Record, error) {
	if err := patch.Validate(); err != nil {
		s.metrics.update("patch", outcomeRejected)
		return nil, err
	}
	if patch.QRCodeImage != nil {
		if err := s.checkSnapshot(*patch.QRCodeImage, true); err != nil {
			s.metrics.update("patch", outcomeRejected)
			return nil, err
		}
	}

	record, err := s.mutate(ctx, userID, func(record *domain.Record) error {
		return record.Apply(patch)
	})
	if err != nil {
		s.metrics.update("patch", outcomeOf(err))
		return nil, err
	}

	s.metrics.update("patch", outcomeStored)
	s.events.PublishProfileShare(ctx, userID, "updated", record)
	return record, nil
}

// SetQRSnapshot stores the client rendered QR code image. The payload is opaque.
func (s *Service) SetQRSnapshot(ctx context.Context, userID uuid.UUID, snapshot string) (*domain.Record, error) {
	if err := s.checkSnapshot(snapshot, false); err != nil {
		s.metrics.update("qr_snapshot", outcomeRejected)
		return nil, err
	}

	record, err := s.mutate(ctx, userID, func(record *domain.Record) error {
		record.QRCodeImage = snapshot
		return nil
	})
	if err != nil {
		s.metrics.update("qr_snapshot", outcomeFailed)
		return nil, err
	}

	s.metrics.update("qr_snapshot", outcomeStored)
	s.events.PublishProfileShare(ctx, userID, "qr_saved", record)
	return record, nil
}

// UploadLogo validates and stores a logo, then makes it the QR overlay.
// A rejected upload leaves the record untouched.
func (s *Service) UploadLogo(ctx context.Context, userID uuid.UUID, upload domain.LogoUpload) (*LogoResult, error) {
	if err := upload.Validate(s.opts.MaxLogoSize); err != nil {
		s.metrics.upload(outcomeRejected)
		s.logger.InfoContext(ctx, "logo upload rejected", "user_id", userID, "filename", upload.Filename, "reason", err)
		return nil, err
	}

	folder := s.logoFolder(userID)
	if s.opts.PerUserFolders {
		if err := s.files.EnsureFolder(folder); err != nil {
			s.metrics.upload(outcomeFailed)
			return nil, fmt.Errorf("failed to store logo: %w", err)
		}
	}
	stored, err := s.files.UploadUnique(ctx, folder, upload.Filename, upload.Content, upload.ContentType)
	if err != nil {
		s.metrics.upload(outcomeFailed)
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	var previous string
	record, err := s.mutate(ctx, userID, func(record *domain.Record) error {
		previous = record.ProfileData.Logo
		record.AttachLogo(stored.URL)
		return nil
	})
	if err != nil {
		if delErr := s.files.DeleteByURL(ctx, stored.URL); delErr != nil {
			s.logger.WarnContext(ctx, "failed to roll back stored logo", "key", stored.Key, "error", delErr)
		}
		s.metrics.upload(outcomeFailed)
		return nil, err
	}

	if s.opts.DeleteReplacedLogo && previous != "" && previous != stored.URL {
		s.deleteBestEffort(ctx, previous)
	}

	s.metrics.upload(outcomeStored)
	s.logger.InfoContext(ctx, "logo uploaded", "user_id", userID, "key", stored.Key, "size", stored.Size)
	s.events.PublishProfileShare(ctx, userID, "logo_uploaded", record)
	return &LogoResult{LogoURL: stored.URL, Record: record}, nil
}

// RemoveLogo restores the avatar overlay and deletes the stored logo file if
// there is one. A file that is already gone does not fail the request.
func (s *Service) RemoveLogo(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	var previous string
	record, err := s.mutate(ctx, userID, func(record *domain.Record) error {
		previous = record.DetachLogo()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if previous != "" {
		s.deleteBestEffort(ctx, previous)
	}

	s.metrics.logoRemoved.Inc()
	s.events.PublishProfileShare(ctx, userID, "logo_removed", record)
	return record, nil
}

// RenderQR draws the user's profile URL as a PNG using the stored colors and
// the overlay selected by the display settings.
func (s *Service) RenderQR(ctx context.Context, userID uuid.UUID, size int) ([]byte, error) {
	record, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record.ProfileData.ProfileURL == "" {
		return nil, domain.Reject(domain.ErrNothingToEncode)
	}

	png, err := s.renderer.Render(record.ProfileData.ProfileURL, record.QRSettings, ClampQRSize(size), s.overlay(ctx, record))
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}

// ClampQRSize bounds a requested edge length, using the default for 0.
func ClampQRSize(size int) int {
	switch {
	case size <= 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	}
	return size
}

// overlay loads the center image, or nil when none is selected or it can't
// be read. Pictures hosted elsewhere are not fetched.
func (s *Service) overlay(ctx context.Context, record *domain.Record) image.Image {
	var source string
	switch {
	case record.DisplaySettings.ShowLogoInQR:
		source = record.ProfileData.Logo
	case record.DisplaySettings.ShowAvatarInQR:
		source = record.ProfileData.ProfilePicture
	}
	if source == "" {
		return nil
	}

	rc, err := s.files.OpenByURL(ctx, source)
	if err != nil {
		s.logger.DebugContext(ctx, "qr overlay unavailable", "source", source, "error", err)
		return nil
	}
	defer rc.Close()

	img, err := s.renderer.DecodeOverlay(rc)
	if err != nil {
		s.logger.WarnContext(ctx, "qr overlay could not be decoded", "source", source, "error", err)
		return nil
	}
	return img
}

func (s *Service) checkSnapshot(snapshot string, allowEmpty bool) error {
	if snapshot == "" && !allowEmpty {
		return domain.Reject(domain.ErrEmptySnapshot)
	}
	if s.opts.MaxQRSnapshot > 0 && int64(len(snapshot)) > s.opts.MaxQRSnapshot {
		return &domain.ValidationError{
			Err:    domain.ErrSnapshotTooLarge,
			Field:  "qrCodeImage",
			Reason: fmt.Sprintf("maximum size is %d bytes", s.opts.MaxQRSnapshot),
		}
	}
	return nil
}

// mutate applies change to the stored record and saves it. When another write
// lands in between, the record is reloaded and change applied again, so
// concurrent writes to different fields all survive.
func (s *Service) mutate(ctx context.Context, userID uuid.UUID, change func(*domain.Record) error) (*domain.Record, error) {
	for attempt := 1; ; attempt++ {
		record, err := s.getOrCreate(ctx, userID, s.repo.GetForUpdate)
		if err != nil {
			return nil, err
		}
		if err := change(record); err != nil {
			return nil, err
		}

		record.UpdatedAt = s.now()
		err = s.repo.Save(ctx, record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) || attempt == maxSaveAttempts {
			return nil, fmt.Errorf("failed to save profile share: %w", err)
		}
		s.logger.DebugContext(ctx, "profile share changed concurrently, retrying", "user_id", userID, "attempt", attempt)
	}
}

func outcomeOf(err error) string {
	if domain.IsValidation(err) {
		return outcomeRejected
	}
	return outcomeFailed
}

func (s *Service) deleteBestEffort(ctx context.Context, fileURL string) {
	if err := s.files.DeleteByURL(ctx, fileURL); err != nil {
		s.logger.WarnContext(ctx, "failed to delete logo file", "url", fileURL, "error", err)
	}
}

func (s *Service) logoFolder(userID uuid.UUID) string {
	if s.opts.PerUserFolders {
		return path.Join(s.opts.LogoFolder, userID.String())
	}
	return s.opts.LogoFolder
}
