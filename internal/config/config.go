package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the server. Values come from
// the environment, optionally seeded from a .env file.
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration
	UploadDir string
	// MaxUploadBytes bounds multipart uploads (default 20 MiB, same cap the
	// client enforces).
	MaxUploadBytes int64
	LogLevel       string
	// AdminUser/AdminPass gate the reserved admin login, separate from
	// database users flagged isAdmin.
	AdminUser string
	AdminPass string
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:           getenv("HEYCHAT_ADDR", "127.0.0.1:8080"),
		DBPath:         getenv("HEYCHAT_DB_PATH", "heychat.db"),
		JWTSecret:      os.Getenv("HEYCHAT_JWT_SECRET"),
		TokenTTL:       7 * 24 * time.Hour,
		UploadDir:      getenv("HEYCHAT_UPLOAD_DIR", "uploads"),
		MaxUploadBytes: 20 << 20,
		LogLevel:       getenv("HEYCHAT_LOG_LEVEL", "info"),
		AdminUser:      os.Getenv("HEYCHAT_ADMIN_USER"),
		AdminPass:      os.Getenv("HEYCHAT_ADMIN_PASS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("HEYCHAT_JWT_SECRET must be set")
	}
	if v := os.Getenv("HEYCHAT_TOKEN_TTL_HOURS"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("invalid HEYCHAT_TOKEN_TTL_HOURS %q", v)
		}
		cfg.TokenTTL = time.Duration(h) * time.Hour
	}
	if v := os.Getenv("HEYCHAT_MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("invalid HEYCHAT_MAX_UPLOAD_MB %q", v)
		}
		cfg.MaxUploadBytes = int64(mb) << 20
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
