package model

// Profile は接続済みソーシャルアカウント。
// 毎回上流から取得する読み取り専用データで、ローカルにはキャッシュしない
// （鮮度の許容幅は1リクエスト）。
type Profile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Platform       string `json:"platform"`
	ProfileGroupID string `json:"profile_group_id,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	PostCount      int    `json:"post_count,omitempty"`
}

// ProfileGroup はプロファイルの集合。
// 上流APIは全プロファイルの取得にグループ単位の列挙を要求する。
type ProfileGroup struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ProfilesCount int    `json:"profiles_count,omitempty"`
}

// Placement はプロファイル配下の投稿先区分（ボード、チャンネル等）。
// IDを持たないプラットフォームではIDがnilになる。
type Placement struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// knownPlatforms は裸のプラットフォーム名として受け付ける語彙。
// プロファイル一覧との突き合わせは行わない（投稿可否の最終判断は上流API）。
var knownPlatforms = map[string]struct{}{
	"twitter":   {},
	"x":         {},
	"instagram": {},
	"facebook":  {},
	"linkedin":  {},
	"tiktok":    {},
	"youtube":   {},
	"threads":   {},
	"bluesky":   {},
	"mastodon":  {},
	"pinterest": {},
}

// IsKnownPlatform は文字列が既知のプラットフォーム名かを返す。
func IsKnownPlatform(name string) bool {
	_, ok := knownPlatforms[name]
	return ok
}
