package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
)

// createPostMultipart はマルチパートフォームで投稿作成を呼び出す。
// JSON版と同じ論理呼び出しで、フィールドの対応は次の通り:
//
//	post[body]          本文
//	post[scheduled_at]  予約時刻（設定時のみ）
//	post[draft]         下書きフラグ（設定時のみ）
//	profiles[]          プラットフォーム名（繰り返し）
//	media[]             バイナリパート（繰り返し、拡張子からContent-Type推定済み）
//	platforms           プラットフォーム別パラメータのJSON文字列（設定時のみ）
func (c *Client) createPostMultipart(ctx context.Context, req CreatePostRequest, headers map[string]string) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("post[body]", req.Content); err != nil {
		return nil, fmt.Errorf("マルチパートフィールドの書き込みに失敗しました: %w", err)
	}
	if req.ScheduledAt != "" {
		if err := w.WriteField("post[scheduled_at]", req.ScheduledAt); err != nil {
			return nil, fmt.Errorf("マルチパートフィールドの書き込みに失敗しました: %w", err)
		}
	}
	if req.Draft != nil {
		if err := w.WriteField("post[draft]", strconv.FormatBool(*req.Draft)); err != nil {
			return nil, fmt.Errorf("マルチパートフィールドの書き込みに失敗しました: %w", err)
		}
	}

	for _, platform := range req.Platforms {
		if err := w.WriteField("profiles[]", platform); err != nil {
			return nil, fmt.Errorf("マルチパートフィールドの書き込みに失敗しました: %w", err)
		}
	}

	for _, file := range req.MediaFiles {
		part, err := createFilePart(w, "media[]", file.Name, file.ContentType)
		if err != nil {
			return nil, fmt.Errorf("マルチパートのファイルパート作成に失敗しました: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("メディアデータの書き込みに失敗しました: %w", err)
		}
	}

	if len(req.PlatformParams) > 0 {
		encoded, err := json.Marshal(req.PlatformParams)
		if err != nil {
			return nil, fmt.Errorf("プラットフォームパラメータのエンコードに失敗しました: %w", err)
		}
		if err := w.WriteField("platforms", string(encoded)); err != nil {
			return nil, fmt.Errorf("マルチパートフィールドの書き込みに失敗しました: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("マルチパートフォームのクローズに失敗しました: %w", err)
	}

	reqHeaders := map[string]string{"Content-Type": w.FormDataContentType()}
	for k, v := range headers {
		reqHeaders[k] = v
	}

	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/posts",
		body:    &buf,
		headers: reqHeaders,
		upload:  true,
	})
}

// createFilePart はContent-Typeを明示したファイルパートを作成する。
// multipart.WriterのCreateFormFileはapplication/octet-stream固定のため、
// ヘッダーを直接組み立てる。
func createFilePart(w *multipart.Writer, fieldName, fileName, contentType string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	header.Set("Content-Type", contentType)
	return w.CreatePart(header)
}
