package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/postproxy/postproxy-mcp/internal/model"
)

// MediaFile はマルチパートアップロードする1ファイル分のデータ。
type MediaFile struct {
	Name        string // multipart内のファイル名
	ContentType string
	Data        []byte
}

// CreatePostRequest は投稿作成呼び出しの入力。
// Platformsは解決済みのプラットフォーム名列（上流の"profiles"フィールド）。
type CreatePostRequest struct {
	Content        string
	Platforms      []string
	ScheduledAt    string
	Draft          *bool
	MediaURLs      []string
	MediaFiles     []MediaFile
	PlatformParams map[string]any
	IdempotencyKey string
}

// ListProfileGroups は全プロファイルグループを取得する。
func (c *Client) ListProfileGroups(ctx context.Context) ([]model.ProfileGroup, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/profile_groups/"})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}

	groups := make([]model.ProfileGroup, 0, len(items))
	for _, item := range items {
		g, err := decodeProfileGroup(item)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// ListProfiles は指定グループ配下のプロファイルを取得する。
func (c *Client) ListProfiles(ctx context.Context, groupID string) ([]model.Profile, error) {
	query := url.Values{"group_id": []string{groupID}}
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/profiles", query: query})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}

	profiles := make([]model.Profile, 0, len(items))
	for _, item := range items {
		p, err := decodeProfile(item)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// CreatePost は投稿を作成する。
// ファイルメディアが含まれる場合は同じ論理呼び出しをマルチパートフォームで、
// それ以外はJSONで送信する。IdempotencyKeyはヘッダーで渡す。
func (c *Client) CreatePost(ctx context.Context, req CreatePostRequest) (*model.Post, error) {
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers["Idempotency-Key"] = req.IdempotencyKey
	}

	var raw json.RawMessage
	var err error
	if len(req.MediaFiles) > 0 {
		raw, err = c.createPostMultipart(ctx, req, headers)
	} else {
		raw, err = c.createPostJSON(ctx, req, headers)
	}
	if err != nil {
		return nil, err
	}

	return decodePost(raw)
}

// createPostJSON はJSONボディで投稿作成を呼び出す。
func (c *Client) createPostJSON(ctx context.Context, req CreatePostRequest, headers map[string]string) (json.RawMessage, error) {
	post := map[string]any{"body": req.Content}
	if req.ScheduledAt != "" {
		post["scheduled_at"] = req.ScheduledAt
	}
	if req.Draft != nil {
		post["draft"] = *req.Draft
	}

	media := req.MediaURLs
	if media == nil {
		media = []string{}
	}

	payload := map[string]any{
		"post":     post,
		"profiles": req.Platforms,
		"media":    media,
	}
	if len(req.PlatformParams) > 0 {
		payload["platforms"] = req.PlatformParams
	}

	return c.doJSON(ctx, http.MethodPost, "/posts", payload, headers)
}

// GetPost は投稿を1件取得する。
func (c *Client) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/posts/" + url.PathEscape(postID)})
	if err != nil {
		return nil, err
	}
	return decodePost(raw)
}

// ListPosts は投稿一覧をページ指定で取得する。
func (c *Client) ListPosts(ctx context.Context, perPage, page int) ([]model.Post, error) {
	query := url.Values{
		"per_page": []string{strconv.Itoa(perPage)},
		"page":     []string{strconv.Itoa(page)},
	}
	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/posts", query: query})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}

	posts := make([]model.Post, 0, len(items))
	for _, item := range items {
		p, err := decodePost(item)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

// DeletePost は投稿を削除する。
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/posts/" + url.PathEscape(postID)})
	return err
}

// PublishPost は下書き投稿の配信を開始する。
// 下書き以外への呼び出しは上流でエラーになるため、呼び出し側が
// 事前にローカルで状態を確認する。
func (c *Client) PublishPost(ctx context.Context, postID string) (*model.Post, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/publish", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodePost(raw)
}

// ListPlacements はプロファイル配下の投稿先区分を取得する。
func (c *Client) ListPlacements(ctx context.Context, profileID string) ([]model.Placement, error) {
	path := "/profiles/" + url.PathEscape(profileID) + "/placements"
	raw, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}

	placements := make([]model.Placement, 0, len(items))
	for _, item := range items {
		p, err := decodePlacement(item)
		if err != nil {
			return nil, err
		}
		placements = append(placements, p)
	}
	return placements, nil
}

// StatsQuery は統計取得のクエリパラメータ。
type StatsQuery struct {
	PostIDs  []string
	Profiles []string
	From     string
	To       string
}

// GetStats は投稿IDをキーとした統計構造を取得する。
// 統計の内側の形状はプラットフォーム依存のためデコードせず、
// そのままJSONとして返す。
func (c *Client) GetStats(ctx context.Context, q StatsQuery) (map[string]any, error) {
	query := url.Values{"post_ids": []string{strings.Join(q.PostIDs, ",")}}
	if len(q.Profiles) > 0 {
		query.Set("profiles", strings.Join(q.Profiles, ","))
	}
	if q.From != "" {
		query.Set("from", q.From)
	}
	if q.To != "" {
		query.Set("to", q.To)
	}

	raw, err := c.do(ctx, request{method: http.MethodGet, path: "/posts/stats", query: query})
	if err != nil {
		return nil, err
	}

	var stats map[string]any
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("統計応答のパースに失敗しました: %w", err)
	}
	return stats, nil
}
