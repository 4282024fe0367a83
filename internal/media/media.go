// Package media は投稿メディアの分類と取り込みを提供する。
// メディア指定はリモートURLまたはローカルファイルパスのどちらかで、
// 1件でもローカルファイルが含まれると投稿作成はマルチパート送信になる。
// その場合、残りのURL指定メディアもSSRF防止付きクライアントで取得して
// バイナリパートとして同送する。
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/postproxy/postproxy-mcp/internal/upstream"
)

// IsRemoteURL はメディア指定がリモートURLかを返す。
// http/https以外はローカルファイルパスとして扱う。
func IsRemoteURL(entry string) bool {
	return strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://")
}

// Classify はメディア指定をリモートURLとローカルファイルパスに分ける。
// 指定順序は各分類の中で保存される。
func Classify(entries []string) (urls, files []string) {
	for _, entry := range entries {
		if IsRemoteURL(entry) {
			urls = append(urls, entry)
		} else {
			files = append(files, entry)
		}
	}
	return urls, files
}

// ContentTypeForFile はファイル拡張子からContent-Typeを推定する。
// 判定できない場合はapplication/octet-streamを返す。
func ContentTypeForFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct := mime.TypeByExtension(ext); ct != "" {
		// mimeパッケージはcharset付きを返すことがあるため主要部のみ使う
		if idx := strings.Index(ct, ";"); idx >= 0 {
			return ct[:idx]
		}
		return ct
	}
	return "application/octet-stream"
}

// ReadFile はローカルファイルをアップロード用のMediaFileとして読み込む。
func ReadFile(path string) (upstream.MediaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return upstream.MediaFile{}, fmt.Errorf("メディアファイルの読み込みに失敗しました: %w", err)
	}
	return upstream.MediaFile{
		Name:        filepath.Base(path),
		ContentType: ContentTypeForFile(path),
		Data:        data,
	}, nil
}

// Fetcher はリモートメディアをSSRF防止付きで取得する。
type Fetcher struct {
	client   *http.Client
	maxSize  int64
	validate func(string) error // テスト用に差し替え可能
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// clientにはNewSafeClientで生成したSSRF防止付きクライアントを渡す。
func NewFetcher(client *http.Client, maxSize int64) *Fetcher {
	if maxSize <= 0 {
		maxSize = 50 << 20
	}
	return &Fetcher{client: client, maxSize: maxSize, validate: ValidateURL}
}

// Fetch はリモートメディアを取得してアップロード用のMediaFileとして返す。
// 取得前にURLの静的検証を行い、危険なURLはネットワーク呼び出しの前に弾く。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (upstream.MediaFile, error) {
	if err := f.validate(rawURL); err != nil {
		return upstream.MediaFile{}, fmt.Errorf("メディアURLが不正です: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return upstream.MediaFile{}, fmt.Errorf("メディア取得リクエストの作成に失敗しました: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return upstream.MediaFile{}, fmt.Errorf("メディアの取得に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return upstream.MediaFile{}, fmt.Errorf("メディアの取得がステータス %d で失敗しました: %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return upstream.MediaFile{}, fmt.Errorf("メディアデータの読み取りに失敗しました: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return upstream.MediaFile{}, fmt.Errorf("メディアサイズが上限を超えています: %s (> %d bytes)", rawURL, f.maxSize)
	}

	name := filepath.Base(rawURL)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" || name == "." || name == "/" {
		name = "media"
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = ContentTypeForFile(name)
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}

	return upstream.MediaFile{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}, nil
}
