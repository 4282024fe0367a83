package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// APIキーは環境変数以外（キーチェーン・設定ファイル）からも解決できるため
// ここでは必須としない。キー解決はcredentialsパッケージが担う。
type Config struct {
	// Upstream API
	APIKey        string
	APIBaseURL    string
	APITimeout    time.Duration
	UploadTimeout time.Duration

	// Media
	MediaMaxSize      int64
	MediaFetchTimeout time.Duration

	// Server (HTTPモード)
	ServerPort        string
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// DefaultAPIBaseURL は上流APIの既定エンドポイント。
const DefaultAPIBaseURL = "https://api.postproxy.dev/v1"

// Load は環境変数からConfigを読み込む。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.APIKey = os.Getenv("POSTPROXY_API_KEY")
	cfg.APIBaseURL = strings.TrimRight(getEnvString("POSTPROXY_API_BASE_URL", DefaultAPIBaseURL), "/")
	cfg.APITimeout = getEnvDuration("POSTPROXY_API_TIMEOUT", 30*time.Second)
	cfg.UploadTimeout = getEnvDuration("POSTPROXY_UPLOAD_TIMEOUT", 60*time.Second)
	cfg.MediaMaxSize = getEnvInt64("POSTPROXY_MEDIA_MAX_SIZE", 52428800)
	cfg.MediaFetchTimeout = getEnvDuration("POSTPROXY_MEDIA_FETCH_TIMEOUT", 30*time.Second)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
