// Package mcpserver はMCPツールサーフェスを提供する。
// 各ツールはサービス層の1操作に対応し、結果をJSONテキストとして返す。
// ドメインエラーはトランスポートエラーにせず、IsErrorを立てた上で
// 安定したエラーコードを含むJSONとして帯域内で返す。
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/postproxy/postproxy-mcp/internal/model"
	"github.com/postproxy/postproxy-mcp/internal/publish"
)

// Version はサーバーのバージョン文字列。ビルド時に上書きされる。
var Version = "dev"

// ToolMetrics はツール呼び出しメトリクスの記録インターフェース。
type ToolMetrics interface {
	RecordToolCall(tool, outcome string)
}

// Server はMCPツールサーバー。
type Server struct {
	mcp     *mcp.Server
	svc     *publish.Service
	logger  *slog.Logger
	metrics ToolMetrics // nil可
}

// New はServerを生成し、全ツールを登録する。
func New(svc *publish.Service, logger *slog.Logger, m ToolMetrics) *Server {
	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "postproxy-mcp",
			Version: Version,
		}, nil),
		svc:     svc,
		logger:  logger,
		metrics: m,
	}
	s.registerTools()
	return s
}

// RunStdio は標準入出力トランスポートでサーバーを起動する。
// クライアントが切断するかctxがキャンセルされるまでブロックする。
func (s *Server) RunStdio(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCP は内部のMCPサーバーを返す。HTTPトランスポートの組み立てに使う。
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// errorPayload は帯域内エラーのJSON形式。
type errorPayload struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// result は任意の値をJSONテキストのツール結果へ変換する。
func (s *Server) result(tool string, v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return s.errorResult(tool, err)
	}

	data, merr := json.Marshal(v)
	if merr != nil {
		return s.errorResult(tool, model.NewValidationError("結果のエンコードに失敗しました"))
	}

	s.record(tool, "success")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// errorResult はドメインエラーを帯域内のエラー結果へ変換する。
// *model.APIError以外のエラーもAPI_ERRORへ畳み、トランスポートエラーは返さない。
func (s *Server) errorResult(tool string, err error) (*mcp.CallToolResult, any, error) {
	apiErr := model.AsAPIError(err)

	s.record(tool, apiErr.Code)
	s.logger.Warn("tool_call_failed",
		slog.String("tool", tool),
		slog.String("code", apiErr.Code),
		slog.String("message", apiErr.Message),
	)

	data, merr := json.Marshal(errorPayload{Error: errorBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}})
	if merr != nil {
		data = []byte(`{"error":{"code":"API_ERROR","message":"internal error"}}`)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: true,
	}, nil, nil
}

func (s *Server) record(tool, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordToolCall(tool, outcome)
	}
}
