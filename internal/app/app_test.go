package app

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestInit_Succeeds(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "pk-test")

	var buf bytes.Buffer
	cfg, log, err := Init(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.APIKey != "pk-test" {
		t.Errorf("APIKey = %q, want pk-test", cfg.APIKey)
	}

	// ロガーがJSON出力に設定されていることを検証
	log.Info("init test")
	var entry map[string]interface{}
	if uerr := json.Unmarshal(buf.Bytes(), &entry); uerr != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", uerr, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
}

func TestWire_BuildsServer(t *testing.T) {
	t.Setenv("POSTPROXY_API_KEY", "pk-test")

	var buf bytes.Buffer
	cfg, log, err := Init(&buf)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	deps := wire(cfg, log)
	if deps.server == nil {
		t.Error("expected non-nil MCP server")
	}
	if deps.registry == nil {
		t.Error("expected non-nil metrics registry")
	}
}
