// Package model はドメインモデルを定義する。
package model

// PostStatus は上流APIが返す投稿ステータスの閉じた語彙。
type PostStatus string

const (
	// PostStatusDraft は下書き状態を示す。
	PostStatusDraft PostStatus = "draft"
	// PostStatusPending は配信待ち状態を示す。
	PostStatusPending PostStatus = "pending"
	// PostStatusProcessing は配信処理中を示す。
	PostStatusProcessing PostStatus = "processing"
	// PostStatusProcessed は上流側の処理が完了したことを示す。
	// 各プラットフォームの成否はPlatformOutcomeが持つ。
	PostStatusProcessed PostStatus = "processed"
	// PostStatusScheduled は予約投稿として登録済みであることを示す。
	PostStatusScheduled PostStatus = "scheduled"
)

// OutcomeStatus はプラットフォーム単位の配信結果ステータス。
// APIバージョン間の上位集合であり、リコンサイラが全体ステータスへ畳み込む。
type OutcomeStatus string

const (
	// OutcomeStatusPending は配信待ちを示す。
	OutcomeStatusPending OutcomeStatus = "pending"
	// OutcomeStatusProcessing は配信処理中を示す。
	OutcomeStatusProcessing OutcomeStatus = "processing"
	// OutcomeStatusPublished は配信成功を示す。
	OutcomeStatusPublished OutcomeStatus = "published"
	// OutcomeStatusFailed は配信失敗を示す。
	OutcomeStatusFailed OutcomeStatus = "failed"
	// OutcomeStatusDeleted はプラットフォーム側で削除済みであることを示す。
	OutcomeStatusDeleted OutcomeStatus = "deleted"
)

// OverallStatus はリコンサイラが導出する正規化済み全体ステータス。
// 「まだ処理が続いているか」を答える語彙であり、個別の成否は
// PlatformOutcomeで別途提示する。
type OverallStatus string

const (
	// OverallStatusDraft は下書きとして保存済みであることを示す。
	OverallStatusDraft OverallStatus = "draft"
	// OverallStatusPending は配信開始待ちであることを示す。
	OverallStatusPending OverallStatus = "pending"
	// OverallStatusProcessing は配信処理が進行中であることを示す。
	OverallStatusProcessing OverallStatus = "processing"
	// OverallStatusComplete は配信処理が終了したことを示す。
	// 一部プラットフォームが失敗していても処理終了ならcompleteになる。
	OverallStatusComplete OverallStatus = "complete"
	// OverallStatusFailed は全プラットフォームで配信が失敗したことを示す。
	OverallStatusFailed OverallStatus = "failed"
)

// PlatformOutcome は投稿1件に対するプラットフォーム単位の配信結果。
// タイムスタンプは上流の表現をそのまま保持する（空文字列=未設定）。
type PlatformOutcome struct {
	Platform    string         `json:"platform"`
	Status      OutcomeStatus  `json:"status"`
	URL         string         `json:"url,omitempty"`
	PostID      string         `json:"post_id,omitempty"`
	Error       string         `json:"error,omitempty"`
	AttemptedAt string         `json:"attempted_at,omitempty"`
	Insights    map[string]any `json:"insights,omitempty"`
}

// Post は上流APIの投稿レコード（ジョブ）。
// ローカルでは一切変更しない読み取り専用の写像であり、
// 状態遷移はすべて上流側で起きる。
type Post struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	Status      PostStatus        `json:"status"`
	Draft       bool              `json:"draft"`
	ScheduledAt string            `json:"scheduled_at,omitempty"`
	CreatedAt   string            `json:"created_at,omitempty"`
	Outcomes    []PlatformOutcome `json:"outcomes"`
}
