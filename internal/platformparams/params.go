// Package platformparams はプラットフォーム別投稿パラメータの検証を提供する。
// 上流APIの"platforms"パラメータはプラットフォーム名をタグとする直和であり、
// 型のない辞書のまま転送すると不正なパラメータがネットワーク呼び出し後に
// しか検出できない。ここでプラットフォームごとの既知スキーマへデコードし、
// 不正な形状をネットワーク呼び出しの前に弾く。
package platformparams

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/postproxy/postproxy-mcp/internal/model"
)

// InstagramParams はInstagram固有の投稿パラメータ。
type InstagramParams struct {
	MediaType     string   `json:"media_type,omitempty"` // reel | stories
	ShareToFeed   *bool    `json:"share_to_feed,omitempty"`
	Collaborators []string `json:"collaborators,omitempty"`
}

// YouTubeParams はYouTube固有の投稿パラメータ。
type YouTubeParams struct {
	Title         string `json:"title,omitempty"`
	PrivacyStatus string `json:"privacy_status,omitempty"` // public | unlisted | private
	MadeForKids   *bool  `json:"made_for_kids,omitempty"`
}

// TikTokParams はTikTok固有の投稿パラメータ。
type TikTokParams struct {
	PrivacyLevel    string `json:"privacy_level,omitempty"` // public | friends | private
	DisableComments *bool  `json:"disable_comments,omitempty"`
	DisableDuet     *bool  `json:"disable_duet,omitempty"`
	DisableStitch   *bool  `json:"disable_stitch,omitempty"`
}

// FacebookParams はFacebook固有の投稿パラメータ。
type FacebookParams struct {
	MediaType string `json:"media_type,omitempty"` // posts | reels | stories
}

// LinkedInParams はLinkedIn固有の投稿パラメータ。
type LinkedInParams struct {
	Visibility string `json:"visibility,omitempty"` // public | connections
}

// TwitterParams はTwitter/X固有の投稿パラメータ。現状は追加パラメータなし。
type TwitterParams struct{}

// ThreadsParams はThreads固有の投稿パラメータ。現状は追加パラメータなし。
type ThreadsParams struct{}

// enumFields はプラットフォームごとの列挙値制約。
var enumFields = map[string]map[string][]string{
	"instagram": {"media_type": {"reel", "stories"}},
	"youtube":   {"privacy_status": {"public", "unlisted", "private"}},
	"tiktok":    {"privacy_level": {"public", "friends", "private"}},
	"facebook":  {"media_type": {"posts", "reels", "stories"}},
	"linkedin":  {"visibility": {"public", "connections"}},
}

// Validate は生のプラットフォームパラメータ群を検証し、
// 上流へ転送可能な形へデコードして返す。
// 未知のプラットフォーム名、未知のフィールド、列挙値違反は
// すべてVALIDATION_ERRORになる。
func Validate(raw map[string]json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	validated := make(map[string]any, len(raw))
	for platform, params := range raw {
		decoded, err := decodeFor(platform, params)
		if err != nil {
			return nil, err
		}
		validated[platform] = decoded
	}
	return validated, nil
}

// decodeFor は1プラットフォーム分のパラメータを既知スキーマへデコードする。
func decodeFor(platform string, params json.RawMessage) (any, error) {
	var target any
	switch platform {
	case "instagram":
		target = &InstagramParams{}
	case "youtube":
		target = &YouTubeParams{}
	case "tiktok":
		target = &TikTokParams{}
	case "facebook":
		target = &FacebookParams{}
	case "linkedin":
		target = &LinkedInParams{}
	case "twitter", "x":
		target = &TwitterParams{}
	case "threads":
		target = &ThreadsParams{}
	default:
		return nil, model.NewValidationError(
			fmt.Sprintf("プラットフォームパラメータの対象が未知です: %s", platform))
	}

	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, model.NewValidationError(
			fmt.Sprintf("%s のパラメータが不正です: %v", platform, err))
	}

	if err := checkEnums(platform, params); err != nil {
		return nil, err
	}

	return target, nil
}

// checkEnums は列挙値制約のあるフィールドを検証する。
func checkEnums(platform string, params json.RawMessage) error {
	constraints, ok := enumFields[platform]
	if !ok {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(params, &fields); err != nil {
		return model.NewValidationError(
			fmt.Sprintf("%s のパラメータがオブジェクトではありません", platform))
	}

	for field, allowed := range constraints {
		raw, present := fields[field]
		if !present {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return model.NewValidationError(
				fmt.Sprintf("%s.%s は文字列である必要があります", platform, field))
		}
		if !contains(allowed, value) {
			return model.NewValidationError(
				fmt.Sprintf("%s.%s の値が不正です: %s (許可値: %v)", platform, field, value, allowed))
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
