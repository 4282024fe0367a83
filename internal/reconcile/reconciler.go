// Package reconcile は上流の投稿レコードから正規化済み全体ステータスを
// 導出するステータスリコンサイラを提供する。
// 上流のステータス語彙はAPIバージョン間で揺れがあるため、
// バージョンフラグではなくフィールドの実値だけで判定する純粋関数として実装する。
package reconcile

import "github.com/postproxy/postproxy-mcp/internal/model"

// Overall は投稿の全体ステータスを導出する。
// 判定は上から順に評価し、最初に一致した行で確定する:
//
//  1. status==draft または draft==true            → draft
//  2. status==scheduled                           → pending
//  3. status==processing                          → processing
//  4. status==processed かつ outcomes空           → pending
//  5. status==processed かつ pending/processing有 → processing
//  6. status==processed かつ 全てpublished        → complete
//  7. status==processed かつ 全てfailed           → failed
//  8. status==processed かつ 成否混在             → complete
//  9. status==pending                             → pending
// 10. それ以外                                    → pending
//
// 混在（一部published、一部failed、pendingなし）がcompleteになるのは、
// 全体ステータスが「まだ処理が続いているか」を答える値であり、
// 個別の失敗はPlatformOutcome側で提示されるため。
// 未知のステータス文字列は例外にせずpendingへ畳む。
func Overall(post *model.Post) model.OverallStatus {
	if post.Status == model.PostStatusDraft || post.Draft {
		return model.OverallStatusDraft
	}

	switch post.Status {
	case model.PostStatusScheduled:
		return model.OverallStatusPending
	case model.PostStatusProcessing:
		return model.OverallStatusProcessing
	case model.PostStatusProcessed:
		return reconcileProcessed(post.Outcomes)
	case model.PostStatusPending:
		return model.OverallStatusPending
	}

	return model.OverallStatusPending
}

// reconcileProcessed は上流処理完了後のプラットフォーム結果集約を行う。
func reconcileProcessed(outcomes []model.PlatformOutcome) model.OverallStatus {
	if len(outcomes) == 0 {
		return model.OverallStatusPending
	}

	published := 0
	failed := 0
	for _, o := range outcomes {
		switch o.Status {
		case model.OutcomeStatusPending, model.OutcomeStatusProcessing:
			// 1件でも進行中なら全体は処理中
			return model.OverallStatusProcessing
		case model.OutcomeStatusPublished:
			published++
		case model.OutcomeStatusFailed:
			failed++
		}
	}

	if failed == len(outcomes) {
		return model.OverallStatusFailed
	}
	if published > 0 {
		return model.OverallStatusComplete
	}

	// published/failed以外（deleted等）のみの場合は処理終了として扱う
	return model.OverallStatusComplete
}

// DraftOverridden は「下書きで作成してほしい」という要求が上流に
// 黙って上書きされたかを判定する。
// 要求がdraft=trueで、応答のdraftがtrueでない、または応答ステータスが
// processed（即時処理済み）の場合に上書きとみなす。
// 上書きはエラーではなく、投稿自体は作成されている。
func DraftOverridden(requestedDraft bool, post *model.Post) bool {
	if !requestedDraft {
		return false
	}
	return !post.Draft || post.Status == model.PostStatusProcessed
}

// OverrideWarning は下書き上書き時に成功応答へ添える警告文を返す。
// 上書きされていない場合は空文字列を返す。
func OverrideWarning(requestedDraft bool, post *model.Post) string {
	if !DraftOverridden(requestedDraft, post) {
		return ""
	}
	return "下書きとして作成するよう要求しましたが、上流APIは投稿を即時処理しました。投稿は作成されています。"
}

// FailedPlatforms は失敗状態のプラットフォーム名を重複なしで返す。
// filterが空でない場合はそのプラットフォーム名に限定する。
// 同一プラットフォームの失敗結果が複数行あっても再試行対象は1件とする。
// 再試行対象の選別に使用する。
func FailedPlatforms(post *model.Post, filter []string) []string {
	allowed := make(map[string]struct{}, len(filter))
	for _, p := range filter {
		allowed[p] = struct{}{}
	}

	seen := make(map[string]struct{}, len(post.Outcomes))
	var failed []string
	for _, o := range post.Outcomes {
		if o.Status != model.OutcomeStatusFailed {
			continue
		}
		if len(filter) > 0 {
			if _, ok := allowed[o.Platform]; !ok {
				continue
			}
		}
		if _, ok := seen[o.Platform]; ok {
			continue
		}
		seen[o.Platform] = struct{}{}
		failed = append(failed, o.Platform)
	}
	return failed
}
