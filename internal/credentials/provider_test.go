package credentials

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	var buf bytes.Buffer
	p := NewProvider(slog.New(slog.NewJSONHandler(&buf, nil)))
	// 実際のOSキーチェーンと設定ファイルにはテストから触れない
	p.keyringGet = func(service, user string) (string, error) {
		return "", errors.New("not found")
	}
	p.configPath = func() (string, error) {
		return "", errors.New("no config dir")
	}
	return p
}

func TestResolve_EnvTakesPrecedence(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "env-key")

	p := newTestProvider(t)
	p.keyringGet = func(service, user string) (string, error) {
		return "keyring-key", nil
	}

	if got := p.Resolve(); got != "env-key" {
		t.Errorf("Resolve() = %q, want env-key（環境変数が最優先）", got)
	}
}

func TestResolve_FallsBackToKeyring(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "")

	p := newTestProvider(t)
	p.keyringGet = func(service, user string) (string, error) {
		if service != "postproxy" || user != "api_key" {
			t.Errorf("キーチェーン参照 = %s/%s, want postproxy/api_key", service, user)
		}
		return "keyring-key", nil
	}

	if got := p.Resolve(); got != "keyring-key" {
		t.Errorf("Resolve() = %q, want keyring-key", got)
	}
}

func TestResolve_FallsBackToConfigFile(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.json")
	// コメント付きJSONを許容する
	content := []byte("{\n  // APIキー\n  \"api_key\": \"file-key\",\n}\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	p := newTestProvider(t)
	p.configPath = func() (string, error) { return path, nil }

	if got := p.Resolve(); got != "file-key" {
		t.Errorf("Resolve() = %q, want file-key", got)
	}
}

func TestResolve_NoSourceReturnsEmpty(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "")

	p := newTestProvider(t)
	if got := p.Resolve(); got != "" {
		t.Errorf("Resolve() = %q, want 空文字列", got)
	}
}

func TestResolve_MalformedConfigFileIsNonFatal(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := newTestProvider(t)
	p.configPath = func() (string, error) { return path, nil }

	if got := p.Resolve(); got != "" {
		t.Errorf("Resolve() = %q, want 空文字列（壊れた設定ファイルは無視）", got)
	}
}
