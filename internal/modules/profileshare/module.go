package profileshare

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/premium-profile/internal/modules/filestorage"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/application"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/infrastructure/cache"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/infrastructure/persistence/postgres"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/infrastructure/qrcode"
	profileshare_http "github.com/saransh1220/premium-profile/internal/modules/profileshare/interfaces/http"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/config"
)

// EventUpdated is the realtime event type sent after every successful write.
const EventUpdated = "profile_share.updated"

const defaultLogoFolder = "profile-share"

// Notifier pushes events to a user's open sessions
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType, reason string, data any) error
}

// Module represents the profile share module
type Module struct {
	service *application.Service
	handler *profileshare_http.Handler
}

// NewModule wires the profile share module. rdb and notifier may be nil, in
// which case records are read straight from Postgres and no events are sent.
func NewModule(
	db *sqlx.DB,
	rdb *redis.Client,
	files *filestorage.Module,
	notifier Notifier,
	cfg config.ProfileShareConfig,
	reg prometheus.Registerer,
	logger *slog.Logger,
) (*Module, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LogoFolder == "" {
		cfg.LogoFolder = defaultLogoFolder
	}
	if err := files.Provision(cfg.LogoFolder); err != nil {
		return nil, fmt.Errorf("failed to provision logo folder: %w", err)
	}

	var repo domain.Repository = postgres.NewProfileShareRepository(db)
	if rdb != nil {
		repo = cache.NewCachedRepository(repo, rdb, cfg.CacheTTL, logger)
	}

	var events application.EventPublisher
	if notifier != nil {
		events = eventBridge{notifier: notifier, logger: logger}
	}

	service := application.NewService(
		repo,
		files.Service(),
		qrcode.NewRenderer(),
		events,
		application.NewMetrics(reg),
		logger,
		application.Options{
			LogoFolder:         cfg.LogoFolder,
			MaxLogoSize:        cfg.MaxLogoSize,
			MaxQRSnapshot:      cfg.MaxQRSnapshot,
			PerUserFolders:     cfg.PerUserFolders,
			DeleteReplacedLogo: cfg.DeleteReplacedLogo,
		},
	)
	handler := profileshare_http.NewHandler(service, profileshare_http.Limits{
		MaxLogoSize:   cfg.MaxLogoSize,
		MaxQRSnapshot: cfg.MaxQRSnapshot,
	}, logger)

	return &Module{service: service, handler: handler}, nil
}

// Service returns the profile share service
func (m *Module) Service() *application.Service {
	return m.service
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *profileshare_http.Handler {
	return m.handler
}

type eventBridge struct {
	notifier Notifier
	logger   *slog.Logger
}

func (b eventBridge) PublishProfileShare(ctx context.Context, userID uuid.UUID, reason string, record *domain.Record) {
	if err := b.notifier.Notify(ctx, userID, EventUpdated, reason, record); err != nil {
		b.logger.WarnContext(ctx, "failed to publish profile share event", "user_id", userID, "reason", reason, "error", err)
	}
}
