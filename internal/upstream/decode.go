package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/postproxy/postproxy-mcp/internal/model"
)

// このファイルは上流応答の形状の揺れを境界で吸収するデコード層。
// 揺れの種類:
//   - リストが素の配列または {"data":[...]} のどちらでも届く
//   - 投稿本文が "body" または "content"（bodyを優先）
//   - プラットフォーム結果が {platform,status,error} または
//     旧形式の {network,status,error_reason}
//   - IDが文字列または数値
//
// 判定はフィールドの有無のみで行い、バージョンフラグには依存しない。
// ビジネスロジック側には正規化済みのmodel型だけを渡す。

// decodeList は素の配列と {"data":[...]} の両形状をリストへ復元する。
func decodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("リスト応答のパースに失敗しました: %w", err)
	}
	return wrapped.Data, nil
}

// flexString は文字列・数値のどちらで届いても文字列として保持するID表現。
type flexString string

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (f *flexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// wireOutcome はプラットフォーム結果の上流表現（新旧両形式）。
type wireOutcome struct {
	Platform    string         `json:"platform"`
	Network     string         `json:"network"` // 旧形式
	Status      string         `json:"status"`
	Error       *string        `json:"error"`
	ErrorReason *string        `json:"error_reason"` // 旧形式
	URL         string         `json:"url"`
	PostID      flexString     `json:"post_id"`
	AttemptedAt *string        `json:"attempted_at"`
	Insights    map[string]any `json:"insights"`
}

// normalize は上流表現を現行形式のPlatformOutcomeへ正規化する。
func (w wireOutcome) normalize() model.PlatformOutcome {
	outcome := model.PlatformOutcome{
		Platform: w.Platform,
		Status:   model.OutcomeStatus(w.Status),
		URL:      w.URL,
		PostID:   string(w.PostID),
		Insights: w.Insights,
	}
	if outcome.Platform == "" {
		outcome.Platform = w.Network
	}
	// errorを優先し、旧形式のerror_reasonへフォールバックする
	if w.Error != nil && *w.Error != "" {
		outcome.Error = *w.Error
	} else if w.ErrorReason != nil {
		outcome.Error = *w.ErrorReason
	}
	if w.AttemptedAt != nil {
		outcome.AttemptedAt = *w.AttemptedAt
	}
	return outcome
}

// wirePost は投稿レコードの上流表現。
type wirePost struct {
	ID          flexString      `json:"id"`
	Body        *string         `json:"body"`
	Content     *string         `json:"content"`
	Status      string          `json:"status"`
	Draft       *bool           `json:"draft"`
	ScheduledAt *string         `json:"scheduled_at"`
	CreatedAt   *string         `json:"created_at"`
	Platforms   json.RawMessage `json:"platforms"`
	Results     json.RawMessage `json:"results"`
	Networks    json.RawMessage `json:"networks"` // 旧形式
}

// decodePost は投稿応答を正規化済みのPostへデコードする。
func decodePost(raw json.RawMessage) (*model.Post, error) {
	var w wirePost
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("投稿応答のパースに失敗しました: %w", err)
	}

	post := &model.Post{
		ID:     string(w.ID),
		Status: model.PostStatus(w.Status),
	}

	// 本文はbodyを優先し、contentへフォールバックする
	if w.Body != nil {
		post.Content = *w.Body
	} else if w.Content != nil {
		post.Content = *w.Content
	}

	if w.Draft != nil {
		post.Draft = *w.Draft
	}
	if w.ScheduledAt != nil {
		post.ScheduledAt = *w.ScheduledAt
	}
	if w.CreatedAt != nil {
		post.CreatedAt = *w.CreatedAt
	}

	// 結果配列はplatforms、results、旧形式networksの順で最初に
	// 配列として解釈できたものを採用する
	for _, candidate := range []json.RawMessage{w.Platforms, w.Results, w.Networks} {
		if len(candidate) == 0 || string(candidate) == "null" {
			continue
		}
		var wires []wireOutcome
		if err := json.Unmarshal(candidate, &wires); err != nil {
			// 作成リクエストのパラメータマップ等、配列でない形状は読み飛ばす
			continue
		}
		post.Outcomes = make([]model.PlatformOutcome, len(wires))
		for i, o := range wires {
			post.Outcomes[i] = o.normalize()
		}
		break
	}

	return post, nil
}

// wireProfile はプロファイルの上流表現。
type wireProfile struct {
	ID             flexString `json:"id"`
	Name           string     `json:"name"`
	Platform       string     `json:"platform"`
	Network        string     `json:"network"` // 旧形式
	ProfileGroupID flexString `json:"profile_group_id"`
	GroupID        flexString `json:"group_id"` // 旧形式
	ExpiresAt      *string    `json:"expires_at"`
	PostCount      int        `json:"post_count"`
}

// decodeProfile はプロファイル応答を正規化済みのProfileへデコードする。
func decodeProfile(raw json.RawMessage) (model.Profile, error) {
	var w wireProfile
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Profile{}, fmt.Errorf("プロファイル応答のパースに失敗しました: %w", err)
	}

	p := model.Profile{
		ID:             string(w.ID),
		Name:           w.Name,
		Platform:       w.Platform,
		ProfileGroupID: string(w.ProfileGroupID),
		PostCount:      w.PostCount,
	}
	if p.Platform == "" {
		p.Platform = w.Network
	}
	if p.ProfileGroupID == "" {
		p.ProfileGroupID = string(w.GroupID)
	}
	if w.ExpiresAt != nil {
		p.ExpiresAt = *w.ExpiresAt
	}
	return p, nil
}

// decodeProfileGroup はプロファイルグループ応答をデコードする。
func decodeProfileGroup(raw json.RawMessage) (model.ProfileGroup, error) {
	var w struct {
		ID            flexString `json:"id"`
		Name          string     `json:"name"`
		ProfilesCount int        `json:"profiles_count"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.ProfileGroup{}, fmt.Errorf("プロファイルグループ応答のパースに失敗しました: %w", err)
	}
	return model.ProfileGroup{
		ID:            string(w.ID),
		Name:          w.Name,
		ProfilesCount: w.ProfilesCount,
	}, nil
}

// decodePlacement は投稿先区分応答をデコードする。
func decodePlacement(raw json.RawMessage) (model.Placement, error) {
	var w struct {
		ID   *flexString `json:"id"`
		Name string      `json:"name"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.Placement{}, fmt.Errorf("投稿先区分応答のパースに失敗しました: %w", err)
	}
	p := model.Placement{Name: w.Name}
	if w.ID != nil {
		s := string(*w.ID)
		p.ID = &s
	}
	return p, nil
}
