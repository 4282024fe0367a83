package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/postproxy/postproxy-mcp/internal/config"
	"github.com/postproxy/postproxy-mcp/internal/credentials"
	"github.com/postproxy/postproxy-mcp/internal/handler"
	"github.com/postproxy/postproxy-mcp/internal/logger"
	"github.com/postproxy/postproxy-mcp/internal/mcpserver"
	"github.com/postproxy/postproxy-mcp/internal/media"
	"github.com/postproxy/postproxy-mcp/internal/metrics"
	"github.com/postproxy/postproxy-mcp/internal/publish"
	"github.com/postproxy/postproxy-mcp/internal/resolver"
	"github.com/postproxy/postproxy-mcp/internal/upstream"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 設定を先に読み、指定されたログレベルでロガーを初期化する
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.SetupDefault(w, cfg.LogLevel)
	return cfg, log, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, log, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Info("starting postproxy-mcp",
		slog.String("command", string(cmd)),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	deps := wire(cfg, log)

	switch cmd {
	case CommandHTTP:
		return runHTTP(cfg, log, deps)
	default:
		return runServe(log, deps)
	}
}

// wired はwireが組み立てた依存関係。
type wired struct {
	server   *mcpserver.Server
	registry *prometheus.Registry
}

// wire は全依存関係を組み立てる。
// APIキーは 環境変数 → OSキーチェーン → 設定ファイル の順に解決する。
func wire(cfg *config.Config, log *slog.Logger) *wired {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = credentials.NewProvider(log).Resolve()
	}

	client := upstream.NewClient(upstream.Options{
		BaseURL:       cfg.APIBaseURL,
		APIKey:        apiKey,
		Timeout:       cfg.APITimeout,
		UploadTimeout: cfg.UploadTimeout,
		Logger:        log,
		Metrics:       collector,
	})

	res := resolver.New(client, log)
	fetcher := media.NewFetcher(media.NewSafeClient(cfg.MediaFetchTimeout), cfg.MediaMaxSize)
	svc := publish.NewService(client, res, fetcher, log)

	return &wired{
		server:   mcpserver.New(svc, log, collector),
		registry: registry,
	}
}

// runServe はstdioトランスポートでMCPサーバーを起動する。
// 標準出力はプロトコルチャネルのため、ログは標準エラーに出る前提。
// クライアント切断またはシグナルで終了する。
func runServe(log *slog.Logger, deps *wired) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("MCP server starting (stdio)")
	if err := deps.server.RunStdio(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server failed: %w", err)
	}

	log.Info("MCP server stopped")
	return nil
}

// runHTTP はStreamable HTTPトランスポートでMCPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runHTTP(cfg *config.Config, log *slog.Logger, deps *wired) error {
	router := handler.NewRouter(&handler.RouterDeps{
		MCPServer:         deps.server.MCP(),
		Logger:            log,
		Gatherer:          deps.registry,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("MCP server starting (http)",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	log.Info("shutting down MCP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("MCP server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
