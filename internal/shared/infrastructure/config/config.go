package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/database"
)

// Config holds all configuration for the application
type Config struct {
	AppEnv         string
	MigrationsPath string
	Server         ServerConfig
	Database       database.PostgresConfig
	Redis          database.RedisConfig
	JWT            JWTConfig
	FileStorage    FileStorageConfig
	ProfileShare   ProfileShareConfig
	Telemetry      TelemetryConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// JWTConfig holds the settings used to verify bearer tokens issued by the account service
type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
}

// FileStorageConfig holds file storage configuration
type FileStorageConfig struct {
	UseS3            bool
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
	// PublicBaseURL is the externally visible prefix the local backend serves files under.
	PublicBaseURL string
}

// ProfileShareConfig holds the profile-share feature settings
type ProfileShareConfig struct {
	LogoFolder         string
	MaxLogoSize        int64
	MaxQRSnapshot      int64
	PerUserFolders     bool
	DeleteReplacedLogo bool
	CacheTTL           time.Duration
}

// TelemetryConfig holds OpenTelemetry exporter settings
type TelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
	OTLPProtocol   string
	OTLPInsecure   bool
	OTLPHeaders    map[string]string
	ExportTimeout  time.Duration
}

// Load reads configuration from environment variables
func Load() Config {
	port := getEnv("PORT", "8080")
	return Config{
		AppEnv:         getEnv("APP_ENV", "dev"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		Server: ServerConfig{
			Port:           port,
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "premium_profile"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: database.RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "default-dev-secret"),
			Issuer: getEnv("JWT_ISSUER", ""),
			Expiry: parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		},
		FileStorage: FileStorageConfig{
			UseS3:            getEnv("USE_S3", "false") == "true",
			S3Region:         getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:       getEnv("S3_ENDPOINT", ""),
			S3PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", getEnv("S3_ENDPOINT", "")),
			S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
			S3BucketName:     getEnv("S3_BUCKET", ""),
			S3UseSSL:         getEnv("S3_USE_SSL", "true") == "true",
			LocalPath:        getEnv("LOCAL_STORAGE_PATH", "./uploads"),
			PublicBaseURL:    strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/") + "/uploads",
		},
		ProfileShare: ProfileShareConfig{
			LogoFolder:         getEnv("PROFILE_SHARE_FOLDER", "profile-share"),
			MaxLogoSize:        parseInt64(getEnv("PROFILE_SHARE_MAX_LOGO_BYTES", ""), 5<<20),
			MaxQRSnapshot:      parseInt64(getEnv("PROFILE_SHARE_MAX_QR_BYTES", ""), 2<<20),
			PerUserFolders:     getEnv("PROFILE_SHARE_PER_USER_DIRS", "false") == "true",
			DeleteReplacedLogo: getEnv("PROFILE_SHARE_DELETE_REPLACED_LOGO", "false") == "true",
			CacheTTL:           parseDuration(getEnv("PROFILE_SHARE_CACHE_TTL", "10m"), 10*time.Minute),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "premium-profile"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			OTLPProtocol:   getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			OTLPInsecure:   getEnv("OTEL_EXPORTER_OTLP_INSECURE", "true") == "true",
			OTLPHeaders:    parseHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", "")),
			ExportTimeout:  parseDuration(getEnv("OTEL_EXPORTER_OTLP_TIMEOUT", "10s"), 10*time.Second),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return defaultValue
}

func parseInt64(value string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

// parseHeaders reads the OTLP "k1=v1,k2=v2" header format.
func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
