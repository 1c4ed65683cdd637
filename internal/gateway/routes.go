package gateway

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saransh1220/premium-profile/internal/gateway/middleware"
	profileshare_http "github.com/saransh1220/premium-profile/internal/modules/profileshare/interfaces/http"
	realtime_http "github.com/saransh1220/premium-profile/internal/modules/realtime/interfaces/http"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthMiddleware      *middleware.AuthMiddleWare
	ProfileShareHandler *profileshare_http.Handler
	RealtimeHandler     *realtime_http.Handler
	// MetricsHandler serves /metrics; nil uses the default Prometheus registry.
	MetricsHandler http.Handler
	// UploadsDir is served under /uploads/ when files are stored locally.
	UploadsDir string
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := config.AuthMiddleware.RequireAuth

	// Health Check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	metrics := config.MetricsHandler
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	mux.Handle("GET /metrics", metrics)

	// Locally stored uploads
	if config.UploadsDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", noListing(http.FileServer(http.Dir(config.UploadsDir)))))
	}

	// Profile Share Routes
	ps := config.ProfileShareHandler
	mux.Handle("GET /profile-share", auth(http.HandlerFunc(ps.Get)))
	mux.Handle("PUT /profile-share", auth(http.HandlerFunc(ps.Update)))
	mux.Handle("POST /profile-share/upload-logo", auth(http.HandlerFunc(ps.UploadLogo)))
	mux.Handle("DELETE /profile-share/remove-logo", auth(http.HandlerFunc(ps.RemoveLogo)))
	mux.Handle("POST /profile-share/save-qr", auth(http.HandlerFunc(ps.SaveQR)))
	mux.Handle("GET /profile-share/qr.png", auth(http.HandlerFunc(ps.QRImage)))

	// Realtime Routes
	if config.RealtimeHandler != nil {
		mux.Handle("GET /ws", auth(http.HandlerFunc(config.RealtimeHandler.Subscribe)))
	}

	return mux
}

// Chain wraps the routes with the global middleware. Metrics sit directly on
// the mux so the matched pattern is available as a label.
func Chain(mux http.Handler, metrics *middleware.HTTPMetrics, allowedOrigins string, logger *slog.Logger) http.Handler {
	var handler http.Handler = mux
	if metrics != nil {
		handler = metrics.Middleware(handler)
	}
	handler = middleware.CORSMiddleware(handler, allowedOrigins)
	handler = otelhttp.NewHandler(handler, "http.server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)
	return middleware.Recovery(logger)(handler)
}

// noListing hides directory indexes of the uploads folder.
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
