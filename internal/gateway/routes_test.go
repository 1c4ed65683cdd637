package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saransh1220/premium-profile/internal/gateway/middleware"
	"github.com/saransh1220/premium-profile/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/application"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
	profileshare_http "github.com/saransh1220/premium-profile/internal/modules/profileshare/interfaces/http"
	"github.com/saransh1220/premium-profile/internal/modules/realtime/infrastructure/websocket"
	realtime_http "github.com/saransh1220/premium-profile/internal/modules/realtime/interfaces/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService answers every call with a fresh default record.
type stubService struct{}

func (stubService) GetOrCreate(_ context.Context, userID uuid.UUID) (*domain.Record, error) {
	return domain.NewRecord(userID, time.Now()), nil
}

func (s stubService) Update(ctx context.Context, userID uuid.UUID, _ domain.Patch) (*domain.Record, error) {
	return s.GetOrCreate(ctx, userID)
}

func (s stubService) SetQRSnapshot(ctx context.Context, userID uuid.UUID, _ string) (*domain.Record, error) {
	return s.GetOrCreate(ctx, userID)
}

func (stubService) UploadLogo(context.Context, uuid.UUID, domain.LogoUpload) (*application.LogoResult, error) {
	return nil, domain.Reject(domain.ErrNoFile)
}

func (s stubService) RemoveLogo(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	return s.GetOrCreate(ctx, userID)
}

func (stubService) RenderQR(context.Context, uuid.UUID, int) ([]byte, error) {
	return nil, errors.New("not rendered")
}

type testEnv struct {
	handler http.Handler
	token   string
	userID  uuid.UUID
	uploads string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	provider := jwt.NewProvider("test-secret", "", time.Hour)
	userID := uuid.New()
	token, err := provider.GenerateToken(userID, "user")
	require.NoError(t, err)

	uploads := t.TempDir()
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mux := SetupRoutes(RouterConfig{
		AuthMiddleware:      middleware.NewAuthMiddleware(provider),
		ProfileShareHandler: profileshare_http.NewHandler(stubService{}, profileshare_http.Limits{}, logger),
		RealtimeHandler:     realtime_http.NewHandler(websocket.NewHub(nil, logger)),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		UploadsDir:          uploads,
	})
	handler := Chain(mux, middleware.NewHTTPMetrics(reg), "http://localhost:5173", logger)
	return testEnv{handler: handler, token: token, userID: userID, uploads: uploads}
}

func (e testEnv) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutes_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSetupRoutes_ProfileShareRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/profile-share"},
		{http.MethodPut, "/profile-share"},
		{http.MethodPost, "/profile-share/upload-logo"},
		{http.MethodDelete, "/profile-share/remove-logo"},
		{http.MethodPost, "/profile-share/save-qr"},
		{http.MethodGet, "/profile-share/qr.png"},
		{http.MethodGet, "/ws"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := env.do(r.method, r.path, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestSetupRoutes_GetProfileShare(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/profile-share", env.token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			UserID string `json:"userId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, env.userID.String(), body.Data.UserID)
}

func TestSetupRoutes_RemoveLogoMethod(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/profile-share/remove-logo", env.token)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(http.MethodDelete, "/profile-share/remove-logo", env.token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRoutes_Uploads(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(env.uploads, "profile-share"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.uploads, "profile-share", "logo.png"), []byte("png"), 0o644))

	rec := env.do(http.MethodGet, "/uploads/profile-share/logo.png", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	rec = env.do(http.MethodGet, "/uploads/profile-share/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/uploads/profile-share/missing.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChain_Preflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/profile-share", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChain_MetricsUseRoutePattern(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/profile-share", env.token)

	rec := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="GET /profile-share"`)
}

func TestChain_RecoversPanics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	handler := Chain(mux, nil, "*", slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
