package application_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	fileApp "github.com/saransh1220/premium-profile/internal/modules/filestorage/application"
	"github.com/saransh1220/premium-profile/internal/modules/filestorage/infrastructure/local"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/application"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory domain.Repository
type memoryRepo struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*domain.Record
	saves      int
	conflicts  int
	beforeSave func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[uuid.UUID]*domain.Record{}}
}

func (r *memoryRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (r *memoryRepo) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *memoryRepo) Create(_ context.Context, rec *domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.UserID]; ok {
		return domain.ErrRecordExists
	}
	r.records[rec.UserID] = rec.Clone()
	return nil
}

func (r *memoryRepo) Save(_ context.Context, rec *domain.Record) error {
	r.mu.Lock()
	hook := r.beforeSave
	r.beforeSave = nil
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[rec.UserID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if stored.Version != rec.Version {
		r.conflicts++
		return domain.ErrConcurrentUpdate
	}
	rec.Version++
	r.records[rec.UserID] = rec.Clone()
	r.saves++
	return nil
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	args := m.Called(ctx, userID)
	rec, _ := args.Get(0).(*domain.Record)
	return rec, args.Error(1)
}

func (m *MockRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	args := m.Called(ctx, userID)
	rec, _ := args.Get(0).(*domain.Record)
	return rec, args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, rec *domain.Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRepository) Save(ctx context.Context, rec *domain.Record) error {
	return m.Called(ctx, rec).Error(0)
}

type fakeRenderer struct {
	content  string
	settings domain.QRSettings
	size     int
	overlay  image.Image
	decodeFn func(io.Reader) (image.Image, error)
}

func (f *fakeRenderer) DecodeOverlay(r io.Reader) (image.Image, error) {
	if f.decodeFn != nil {
		return f.decodeFn(r)
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
}

func (f *fakeRenderer) Render(content string, settings domain.QRSettings, size int, overlay image.Image) ([]byte, error) {
	f.content, f.settings, f.size, f.overlay = content, settings, size, overlay
	return []byte("png"), nil
}

type publishedEvent struct {
	userID uuid.UUID
	reason string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishProfileShare(_ context.Context, userID uuid.UUID, reason string, _ *domain.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID, reason})
}

type fixture struct {
	svc      *application.Service
	repo     *memoryRepo
	root     string
	renderer *fakeRenderer
	events   *recordingPublisher
}

func newFixture(t *testing.T, opts application.Options) *fixture {
	t.Helper()
	root := t.TempDir()
	storage, err := local.NewLocalStorage(root, "http://localhost:8080/uploads")
	require.NoError(t, err)
	require.NoError(t, storage.EnsureFolder("profile-share"))

	if opts.MaxLogoSize == 0 {
		opts.MaxLogoSize = 5 << 20
	}
	if opts.MaxQRSnapshot == 0 {
		opts.MaxQRSnapshot = 2 << 20
	}
	f := &fixture{
		repo:     newMemoryRepo(),
		root:     root,
		renderer: &fakeRenderer{},
		events:   &recordingPublisher{},
	}
	f.svc = application.NewService(f.repo, fileApp.NewFileService(storage), f.renderer, f.events, nil, nil, opts)
	return f
}

func pngUpload(name string, size int) domain.LogoUpload {
	return domain.LogoUpload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(size),
		Content:     bytes.NewReader(bytes.Repeat([]byte{0x89}, size)),
	}
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestGetOrCreate_Idempotent(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	first, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	second, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.PatternSquare, second.QRSettings.Pattern)
	assert.Len(t, f.repo.records, 1)
}

func TestGetOrCreate_ConcurrentCreateFallsBackToLookup(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	existing := domain.NewRecord(userID, fixedTime)

	repo.On("GetByUserID", mock.Anything, userID).Return(nil, domain.ErrRecordNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Record")).Return(domain.ErrRecordExists).Once()
	repo.On("GetByUserID", mock.Anything, userID).Return(existing, nil).Once()

	svc := application.NewService(repo, nil, nil, nil, nil, nil, application.Options{})
	rec, err := svc.GetOrCreate(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, rec.ID)
	repo.AssertExpectations(t)
}

func TestGetOrCreate_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	repo.On("GetByUserID", mock.Anything, userID).Return(nil, errors.New("connection refused"))

	svc := application.NewService(repo, nil, nil, nil, nil, nil, application.Options{})
	_, err := svc.GetOrCreate(context.Background(), userID)

	require.Error(t, err)
	assert.False(t, domain.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate_MergeSemantics(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.Update(ctx, userID, domain.Patch{
		ProfileData: &domain.ProfileDataPatch{FullName: ptr("Jane Doe"), City: ptr("Berlin")},
	})
	require.NoError(t, err)

	rec, err := f.svc.Update(ctx, userID, domain.Patch{
		QRSettings: &domain.QRSettingsPatch{Pattern: ptr(domain.PatternDots), DotColor: ptr("#ff0000")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PatternDots, rec.QRSettings.Pattern)
	assert.Equal(t, "#ff0000", rec.QRSettings.DotColor)
	assert.Equal(t, "transparent", rec.QRSettings.BgColor)
	assert.Equal(t, "Jane Doe", rec.ProfileData.FullName)
	assert.Equal(t, "Berlin", rec.ProfileData.City)

	stored, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, rec.QRSettings, stored.QRSettings)
	assert.Equal(t, []publishedEvent{{userID, "updated"}, {userID, "updated"}}, f.events.events)
}

func TestUpdate_InvalidPatchDoesNotWrite(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()
	_, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, userID, domain.Patch{
		QRSettings: &domain.QRSettingsPatch{Pattern: ptr(domain.Pattern("stars"))},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPatch)

	_, err = f.svc.Update(ctx, userID, domain.Patch{
		DisplaySettings: &domain.DisplaySettingsPatch{ShowLogoInQR: ptr(true)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDisplaySettings)

	assert.Equal(t, 0, f.repo.saves)
	assert.Empty(t, f.events.events)
}

func TestUpdate_SnapshotTooLarge(t *testing.T) {
	f := newFixture(t, application.Options{MaxQRSnapshot: 8})

	_, err := f.svc.Update(context.Background(), uuid.New(), domain.Patch{QRCodeImage: ptr("data:image/png;base64,AAAA")})

	assert.ErrorIs(t, err, domain.ErrSnapshotTooLarge)
	assert.True(t, domain.IsValidation(err))
}

func TestSetQRSnapshot(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	rec, err := f.svc.SetQRSnapshot(ctx, userID, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", rec.QRCodeImage)
	assert.Equal(t, domain.DefaultDisplay, rec.DisplaySettings)

	_, err = f.svc.SetQRSnapshot(ctx, userID, "")
	assert.ErrorIs(t, err, domain.ErrEmptySnapshot)

	stored, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", stored.QRCodeImage)
}

func TestUploadLogo_AttachesLogo(t *testing.T) {
	f := newFixture(t, application.Options{LogoFolder: "profile-share"})
	ctx := context.Background()
	userID := uuid.New()

	res, err := f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 2<<20))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.LogoURL, "/uploads/profile-share/logo.png"))
	assert.Equal(t, res.LogoURL, res.Record.ProfileData.Logo)
	assert.Equal(t, domain.DisplaySettings{ShowAvatarInQR: false, ShowLogoInQR: true}, res.Record.DisplaySettings)
	assert.FileExists(t, filepath.Join(f.root, "profile-share", "logo.png"))

	stored, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, res.LogoURL, stored.ProfileData.Logo)
	assert.Equal(t, []publishedEvent{{userID, "logo_uploaded"}}, f.events.events)
}

func TestUploadLogo_RejectionLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()
	before, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		upload  domain.LogoUpload
		wantErr error
	}{
		{"text file", domain.LogoUpload{Filename: "notes.txt", ContentType: "text/plain", Size: 4, Content: strings.NewReader("text")}, domain.ErrInvalidFileType},
		{"too large", pngUpload("big.png", 5<<20+1), domain.ErrFileTooLarge},
		{"bad extension", domain.LogoUpload{Filename: "logo.tiff", ContentType: "image/tiff", Size: 4, Content: strings.NewReader("tiff")}, domain.ErrInvalidExtension},
		{"no file", domain.LogoUpload{}, domain.ErrNoFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UploadLogo(ctx, userID, tt.upload)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidation(err))
		})
	}

	after, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, before.ProfileData, after.ProfileData)
	assert.Equal(t, before.DisplaySettings, after.DisplaySettings)
	entries, err := os.ReadDir(filepath.Join(f.root, "profile-share"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, f.repo.saves)
}

func TestUploadLogo_SameNameDifferentUsers(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()

	first, err := f.svc.UploadLogo(ctx, uuid.New(), pngUpload("icon.png", 10))
	require.NoError(t, err)
	second, err := f.svc.UploadLogo(ctx, uuid.New(), pngUpload("icon.png", 20))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(first.LogoURL, "/profile-share/icon.png"))
	assert.True(t, strings.HasSuffix(second.LogoURL, "/profile-share/icon(1).png"))

	a, err := os.ReadFile(filepath.Join(f.root, "profile-share", "icon.png"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(f.root, "profile-share", "icon(1).png"))
	require.NoError(t, err)
	assert.Len(t, a, 10)
	assert.Len(t, b, 20)
}

func TestUploadLogo_PerUserFolders(t *testing.T) {
	f := newFixture(t, application.Options{LogoFolder: "profile-share", PerUserFolders: true})
	userID := uuid.New()

	res, err := f.svc.UploadLogo(context.Background(), userID, pngUpload("icon.png", 10))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.LogoURL, "/profile-share/"+userID.String()+"/icon.png"))
	assert.FileExists(t, filepath.Join(f.root, "profile-share", userID.String(), "icon.png"))
}

// Two uploads of the same name by one user keep both stored files.
func TestUploadLogo_SameNameSameUser(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	first, err := f.svc.UploadLogo(ctx, userID, pngUpload("icon.png", 10))
	require.NoError(t, err)
	second, err := f.svc.UploadLogo(ctx, userID, pngUpload("icon.png", 20))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(first.LogoURL, "/profile-share/icon.png"))
	assert.True(t, strings.HasSuffix(second.LogoURL, "/profile-share/icon(1).png"))
	assert.Equal(t, second.LogoURL, second.Record.ProfileData.Logo)

	a, err := os.ReadFile(filepath.Join(f.root, "profile-share", "icon.png"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(f.root, "profile-share", "icon(1).png"))
	require.NoError(t, err)
	assert.Len(t, a, 10)
	assert.Len(t, b, 20)
}

func TestUploadLogo_DeleteReplacedLogo(t *testing.T) {
	f := newFixture(t, application.Options{DeleteReplacedLogo: true})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.UploadLogo(ctx, userID, pngUpload("old.png", 10))
	require.NoError(t, err)
	res, err := f.svc.UploadLogo(ctx, userID, pngUpload("new.png", 10))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(res.Record.ProfileData.Logo, "/profile-share/new.png"))
	assert.NoFileExists(t, filepath.Join(f.root, "profile-share", "old.png"))
	assert.FileExists(t, filepath.Join(f.root, "profile-share", "new.png"))
}

func TestUploadLogo_SaveFailureRemovesStoredFile(t *testing.T) {
	root := t.TempDir()
	storage, err := local.NewLocalStorage(root, "http://localhost:8080/uploads")
	require.NoError(t, err)
	require.NoError(t, storage.EnsureFolder("profile-share"))

	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("GetForUpdate", mock.Anything, userID).Return(domain.NewRecord(userID, fixedTime), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Record")).Return(errors.New("deadlock detected"))

	svc := application.NewService(repo, fileApp.NewFileService(storage), &fakeRenderer{}, nil, nil, nil, application.Options{MaxLogoSize: 5 << 20})
	_, err = svc.UploadLogo(context.Background(), userID, pngUpload("logo.png", 10))

	require.Error(t, err)
	assert.False(t, domain.IsValidation(err))
	assert.NoFileExists(t, filepath.Join(root, "profile-share", "logo.png"))
	repo.AssertExpectations(t)
}

// A logo upload and a settings update that interleave both keep their fields.
func TestUploadLogo_ConcurrentUpdateIsKept(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()
	_, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)

	f.repo.beforeSave = func() {
		_, err := f.svc.Update(ctx, userID, domain.Patch{
			QRSettings: &domain.QRSettingsPatch{Pattern: ptr(domain.PatternDots)},
		})
		require.NoError(t, err)
	}
	res, err := f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 10))
	require.NoError(t, err)

	stored, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PatternDots, stored.QRSettings.Pattern)
	assert.Equal(t, res.LogoURL, stored.ProfileData.Logo)
	assert.Equal(t, domain.LogoDisplay, stored.DisplaySettings)
	assert.Equal(t, 1, f.repo.conflicts)
	assert.Equal(t, 2, f.repo.saves)
}

func TestUpdate_ConcurrentLogoRemovalIsKept(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()
	_, err := f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 10))
	require.NoError(t, err)

	f.repo.beforeSave = func() {
		_, err := f.svc.RemoveLogo(ctx, userID)
		require.NoError(t, err)
	}
	rec, err := f.svc.Update(ctx, userID, domain.Patch{
		ProfileData: &domain.ProfileDataPatch{City: ptr("Berlin")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Berlin", rec.ProfileData.City)
	assert.Empty(t, rec.ProfileData.Logo)
	assert.Equal(t, domain.DefaultDisplay, rec.DisplaySettings)
}

func TestUpdate_GivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := new(MockRepository)
	userID := uuid.New()
	repo.On("GetForUpdate", mock.Anything, userID).Return(domain.NewRecord(userID, fixedTime), nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Record")).Return(domain.ErrConcurrentUpdate)

	svc := application.NewService(repo, nil, nil, nil, nil, nil, application.Options{})
	_, err := svc.Update(context.Background(), userID, domain.Patch{
		ProfileData: &domain.ProfileDataPatch{City: ptr("Berlin")},
	})

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.False(t, domain.IsValidation(err))
	repo.AssertNumberOfCalls(t, "Save", 5)
	repo.AssertNumberOfCalls(t, "GetForUpdate", 5)
}

func TestRemoveLogo(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 10))
	require.NoError(t, err)

	rec, err := f.svc.RemoveLogo(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, "", rec.ProfileData.Logo)
	assert.Equal(t, domain.DisplaySettings{ShowAvatarInQR: true, ShowLogoInQR: false}, rec.DisplaySettings)
	assert.NoFileExists(t, filepath.Join(f.root, "profile-share", "logo.png"))
}

func TestRemoveLogo_FileAlreadyGone(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 10))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.root, "profile-share", "logo.png")))

	rec, err := f.svc.RemoveLogo(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "", rec.ProfileData.Logo)
	assert.Equal(t, domain.DefaultDisplay, rec.DisplaySettings)
}

func TestRemoveLogo_WithoutLogo(t *testing.T) {
	f := newFixture(t, application.Options{})

	rec, err := f.svc.RemoveLogo(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultDisplay, rec.DisplaySettings)
}

func TestRenderQR(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.RenderQR(ctx, userID, 0)
	assert.ErrorIs(t, err, domain.ErrNothingToEncode)

	_, err = f.svc.Update(ctx, userID, domain.Patch{ProfileData: &domain.ProfileDataPatch{ProfileURL: ptr("https://jane.dev")}})
	require.NoError(t, err)

	out, err := f.svc.RenderQR(ctx, userID, 4000)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), out)
	assert.Equal(t, "https://jane.dev", f.renderer.content)
	assert.Equal(t, application.MaxQRSize, f.renderer.size)
	assert.Nil(t, f.renderer.overlay)

	_, err = f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 10))
	require.NoError(t, err)
	_, err = f.svc.RenderQR(ctx, userID, 256)
	require.NoError(t, err)
	assert.Equal(t, 256, f.renderer.size)
	assert.NotNil(t, f.renderer.overlay)
}

func TestRenderQR_ExternalAvatarIsSkipped(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.Update(ctx, userID, domain.Patch{ProfileData: &domain.ProfileDataPatch{
		ProfileURL:     ptr("https://jane.dev"),
		ProfilePicture: ptr("https://avatars.example.com/jane.png"),
	}})
	require.NoError(t, err)

	_, err = f.svc.RenderQR(ctx, userID, 0)
	require.NoError(t, err)
	assert.Nil(t, f.renderer.overlay)
	assert.Equal(t, application.DefaultQRSize, f.renderer.size)
}

func TestClampQRSize(t *testing.T) {
	assert.Equal(t, application.DefaultQRSize, application.ClampQRSize(0))
	assert.Equal(t, application.MinQRSize, application.ClampQRSize(10))
	assert.Equal(t, 300, application.ClampQRSize(300))
	assert.Equal(t, application.MaxQRSize, application.ClampQRSize(5000))
}

// Walks the lifecycle of a new user through read, update, upload and removal.
func TestProfileShareLifecycle(t *testing.T) {
	f := newFixture(t, application.Options{})
	ctx := context.Background()
	userID := uuid.New()

	rec, err := f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PatternSquare, rec.QRSettings.Pattern)

	_, err = f.svc.Update(ctx, userID, domain.Patch{
		QRSettings: &domain.QRSettingsPatch{Pattern: ptr(domain.PatternDots), DotColor: ptr("#ff0000")},
	})
	require.NoError(t, err)
	rec, err = f.svc.GetOrCreate(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.PatternDots, rec.QRSettings.Pattern)
	assert.Equal(t, "#ff0000", rec.QRSettings.DotColor)
	assert.Equal(t, "transparent", rec.QRSettings.BgColor)

	res, err := f.svc.UploadLogo(ctx, userID, pngUpload("logo.png", 2<<20))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.LogoURL, "/uploads/profile-share/logo.png"))
	assert.Equal(t, domain.DisplaySettings{ShowAvatarInQR: false, ShowLogoInQR: true}, res.Record.DisplaySettings)

	rec, err = f.svc.RemoveLogo(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.DisplaySettings{ShowAvatarInQR: true, ShowLogoInQR: false}, rec.DisplaySettings)
	assert.Equal(t, "", rec.ProfileData.Logo)
	assert.Equal(t, domain.PatternDots, rec.QRSettings.Pattern)
}
