// Package handler はHTTPモードのルーティングを提供する。
// MCPのStreamable HTTPトランスポートに加えて、運用用の
// ヘルスチェックとPrometheusメトリクスを公開する。
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/postproxy/postproxy-mcp/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/postproxy/postproxy-mcp/internal/metrics"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	MCPServer         *mcp.Server
	Logger            *slog.Logger
	Gatherer          prometheus.Gatherer
	CORSAllowedOrigin string
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS
//
// /metricsと/healthzはCORSの対象外（同一オリジンの運用アクセスのみ想定）。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	// 運用エンドポイント
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler(deps.Gatherer))

	// MCP Streamable HTTPトランスポート
	mcpHandler := mcp.NewStreamableHTTPHandler(
		func(req *http.Request) *mcp.Server { return deps.MCPServer },
		nil,
	)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Handle("/mcp", mcpHandler)
		r.Handle("/mcp/*", mcpHandler)
	})

	return r
}
