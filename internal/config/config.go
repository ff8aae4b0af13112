package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port    string
	LogMode string

	PostgresDSN string
	MongoURI    string
	MongoDB     string
	RecordStore string

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// GeminiAPIKey is read here but only checked when the first model call
	// is made, so the server can boot without it.
	GeminiAPIKey string
	GeminiModel  string

	UploadDir      string
	MaxUploadBytes int64

	JWTSecret      string
	JWTIssuer      string
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		LogMode:        getenv("LOG_MODE", "dev"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "research_workspace"),
		RecordStore:    strings.ToLower(getenv("RECORD_STORE", "mongo")),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "project-documents"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		GeminiAPIKey:   getenv("GEMINI_API_KEY", ""),
		GeminiModel:    getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		UploadDir:      getenv("UPLOAD_DIR", os.TempDir()),
		MaxUploadBytes: getenvInt64("MAX_UPLOAD_BYTES", 10<<20),
		JWTSecret:      getenv("JWT_SECRET", ""),
		JWTIssuer:      getenv("JWT_ISSUER", ""),
		AllowedOrigins: origins(getenv("FRONTEND_URL", "")),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// origins always allows the local dev servers and appends any
// comma-separated frontend URLs.
func origins(frontend string) []string {
	out := []string{"http://localhost:5173", "http://localhost:3000"}
	for _, o := range strings.Split(frontend, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
