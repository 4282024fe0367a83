// Package credentials は上流APIキーの解決を提供する。
// 解決順序は 環境変数 → OSキーチェーン → 設定ファイル で、
// 最初に見つかった非空の値を採用する。どこにも無ければ空文字列を返し、
// キー未設定の扱いは呼び出し側（postproxy_auth_status等）に委ねる。
package credentials

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/zalando/go-keyring"
)

const (
	envKey         = "POSTPROXY_API_KEY"
	keyringService = "postproxy"
	keyringUser    = "api_key"
	configFileName = "config.json"
)

// Provider はAPIキーを解決する。
type Provider struct {
	logger *slog.Logger

	// テスト用に差し替え可能
	keyringGet func(service, user string) (string, error)
	configPath func() (string, error)
}

// NewProvider はProviderの新しいインスタンスを生成する。
func NewProvider(logger *slog.Logger) *Provider {
	return &Provider{
		logger:     logger,
		keyringGet: keyring.Get,
		configPath: defaultConfigPath,
	}
}

// Resolve はAPIキーを解決する。見つからない場合は空文字列を返す。
// キーチェーンや設定ファイルの読み取り失敗は致命的ではなく、
// 次のソースへフォールバックする。
func (p *Provider) Resolve() string {
	if key := strings.TrimSpace(os.Getenv(envKey)); key != "" {
		p.logger.Debug("api_key_resolved", slog.String("source", "env"))
		return key
	}

	if key, err := p.keyringGet(keyringService, keyringUser); err == nil {
		if key = strings.TrimSpace(key); key != "" {
			p.logger.Debug("api_key_resolved", slog.String("source", "keyring"))
			return key
		}
	}

	if key := p.resolveFromConfigFile(); key != "" {
		p.logger.Debug("api_key_resolved", slog.String("source", "config_file"))
		return key
	}

	return ""
}

// configFile は設定ファイルの形式。コメント付きJSON（JSONC）を許容する。
type configFile struct {
	APIKey string `json:"api_key"`
}

func (p *Provider) resolveFromConfigFile() string {
	path, err := p.configPath()
	if err != nil {
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var cfg configFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		p.logger.Warn("config_file_parse_failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return strings.TrimSpace(cfg.APIKey)
}

// defaultConfigPath は $XDG_CONFIG_HOME/postproxy/config.json を返す。
// XDG_CONFIG_HOME未設定時は os.UserConfigDir に従う。
func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "postproxy", configFileName), nil
}
