package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. "prod"/"production" gives JSON output at info
// level; anything else gives the console development encoder at debug level.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

// Redact returns a field that hides the value of credential-like keys.
func Redact(key, value string) zap.Field {
	if isSecretKey(key) && value != "" {
		return zap.String(key, "[REDACTED]")
	}
	return zap.String(key, value)
}

// Preview truncates s to at most n bytes for diagnostic logging.
func Preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	for _, frag := range []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey"} {
		if strings.Contains(k, frag) {
			return true
		}
	}
	return false
}
