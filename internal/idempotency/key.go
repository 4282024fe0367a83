// Package idempotency は投稿リクエストの冪等キー導出を提供する。
// 同一の論理リクエストからは常に同一のキーが得られ、上流APIの
// 重複排除に使用される。キー自体は状態を持たない純粋な導出値である。
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// canonicalInput はキー導出の正規化済み入力。
// フィールド順序はエンコード結果を固定するため変更してはならない。
type canonicalInput struct {
	Content  string   `json:"content"`
	Targets  []string `json:"targets"`
	Schedule string   `json:"schedule"`
}

// DeriveKey は正規化済み投稿入力から決定的な冪等キーを導出する。
// 正規化規則:
//   - contentは前後の空白を除去する
//   - targetsは辞書順にソートする（意味的には集合のため順序はキーに影響しない）
//   - scheduleが空の場合は空文字列として扱う
//
// 正規化した三つ組をJSONエンコードし、SHA-256ダイジェストを
// 小文字16進数64文字で返す。
func DeriveKey(content string, targets []string, schedule string) string {
	sorted := make([]string, len(targets))
	copy(sorted, targets)
	sort.Strings(sorted)

	// canonicalInputのJSONエンコードはフィールド宣言順で安定している
	encoded, err := json.Marshal(canonicalInput{
		Content:  strings.TrimSpace(content),
		Targets:  sorted,
		Schedule: schedule,
	})
	if err != nil {
		// 文字列とスライスのみのためMarshalは失敗しない
		panic(err)
	}

	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:])
}
