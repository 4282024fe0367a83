// Package upstream はソーシャル投稿APIへのHTTPトランスポートを提供する。
// リクエスト組み立て、認証ヘッダー付与、タイムアウト区別、
// エラーエンベロープの正規化、応答形状の揺れ吸収デコードを含む。
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postproxy/postproxy-mcp/internal/model"
)

// MetricsRecorder は上流呼び出しのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordUpstreamStatus(statusCode int)
	RecordUpstreamLatency(duration time.Duration)
}

// Client はソーシャル投稿APIのクライアント。
// 呼び出しごとに独立しており、プロセス内に共有可変状態を持たない。
type Client struct {
	httpClient   *http.Client
	uploadClient *http.Client // マルチパートアップロード用（長めのタイムアウト）
	baseURL      string       // テスト用に差し替え可能
	apiKey       string
	logger       *slog.Logger
	metrics      MetricsRecorder
}

// Options はClient生成時の設定。
type Options struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration // 通常のJSON呼び出しのタイムアウト
	UploadTimeout time.Duration // マルチパートアップロードのタイムアウト
	Logger        *slog.Logger
	Metrics       MetricsRecorder // nil可
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = 60 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		uploadClient: &http.Client{Timeout: opts.UploadTimeout},
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// HasKey はAPIキーが設定されているかを返す。
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// request は1回の上流呼び出しのパラメータ。
type request struct {
	method  string
	path    string
	query   url.Values
	body    io.Reader
	headers map[string]string
	upload  bool
}

// do は上流APIを1回呼び出し、成功応答のボディを返す。
// キー未設定はネットワーク呼び出し前にAUTH_MISSINGで失敗する。
// タイムアウトはAPI_TIMEOUTとして他のHTTP失敗と区別する。
func (c *Client) do(ctx context.Context, req request) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, model.NewAuthMissingError()
	}

	reqURL := c.baseURL + req.path
	if len(req.query) > 0 {
		reqURL += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, reqURL, req.body)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Client-Request-Id", requestID)
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	client := c.httpClient
	if req.upload {
		client = c.uploadClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	latency := time.Since(start)
	if c.metrics != nil {
		c.metrics.RecordUpstreamLatency(latency)
	}
	if err != nil {
		if isTimeout(err) {
			c.logger.Error("上流APIの呼び出しがタイムアウトしました",
				slog.String("method", req.method),
				slog.String("path", req.path),
				slog.String("client_request_id", requestID),
			)
			return nil, model.NewAPITimeoutError(req.path)
		}
		c.logger.Error("上流APIの呼び出しに失敗しました",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("error", err.Error()),
		)
		return nil, model.NewAPIErrorFromUpstream(0, err.Error(), requestID)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordUpstreamStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := c.mapHTTPError(req.path, resp, body)
		c.logger.Warn("上流APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("code", apiErr.Code),
		)
		return nil, apiErr
	}

	c.logger.Info("upstream_request",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Float64("duration_ms", float64(latency.Nanoseconds())/float64(time.Millisecond)),
	)

	return json.RawMessage(body), nil
}

// doJSON はJSONボディ付きで上流APIを呼び出す。
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, headers map[string]string) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/json"
	return c.do(ctx, request{method: method, path: path, body: body, headers: headers})
}

// mapHTTPError は上流のHTTPエラーステータスをエラー分類へ対応付ける。
// 401→AUTH_INVALID、404→TARGET_NOT_FOUND、その他4xx→VALIDATION_ERROR、
// 5xx→API_ERROR。メッセージはエラーエンベロープから合成する。
func (c *Client) mapHTTPError(path string, resp *http.Response, body []byte) *model.APIError {
	requestID := resp.Header.Get("x-request-id")
	message := coalesceErrorMessage(resp.StatusCode, body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return model.NewAuthInvalidError(requestID)
	case resp.StatusCode == http.StatusNotFound:
		return model.NewResourceNotFoundError(path, requestID)
	case resp.StatusCode < 500:
		return model.NewUpstreamValidationError(resp.StatusCode, message, requestID)
	default:
		return model.NewAPIErrorFromUpstream(resp.StatusCode, message, requestID)
	}
}

// coalesceErrorMessage は上流の3種類のエラーエンベロープを
// 1つのメッセージ文字列へ畳み込む:
//   - {"errors": ["...", ...]}           (422系)
//   - {"status":..,"error":..,"message":..} (400系)
//   - 非JSONボディ                        (HTTPステータス行のみ)
func coalesceErrorMessage(statusCode int, body []byte) string {
	var envelope struct {
		Errors  []string `json:"errors"`
		Error   string   `json:"error"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Errors) > 0 {
			return strings.Join(envelope.Errors, "; ")
		}
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}

	text := http.StatusText(statusCode)
	if text == "" {
		text = "unknown error"
	}
	return fmt.Sprintf("HTTP %d %s", statusCode, text)
}

// isTimeout はエラーがタイムアウト起因かを判定する。
// http.Clientのタイムアウトとコンテキスト期限切れの両方を扱う。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
