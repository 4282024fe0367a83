package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// Codeはツール呼び出し側がプログラム的に照合するための安定値で、
// Detailsには上流ステータスコードやリクエストID等の構造化情報を入れる。
type APIError struct {
	Code    string         // エラーコード
	Message string         // エラーメッセージ
	Details map[string]any // 構造化された補足情報（省略可）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// AsAPIError は任意のエラーをAPIErrorへ変換する。
// APIErrorでない場合はAPI_ERRORコードへ畳む。
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Code:    ErrCodeAPIError,
		Message: err.Error(),
	}
}

// 定義済みエラーコード
const (
	ErrCodeAuthMissing            = "AUTH_MISSING"
	ErrCodeAuthInvalid            = "AUTH_INVALID"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeTargetNotFound         = "TARGET_NOT_FOUND"
	ErrCodePublishFailed          = "PUBLISH_FAILED"
	ErrCodePlatformError          = "PLATFORM_ERROR"
	ErrCodeAPIError               = "API_ERROR"
	ErrCodeAPITimeout             = "API_TIMEOUT"
	ErrCodeNoFailedPlatforms      = "NO_FAILED_PLATFORMS"
	ErrCodeNoProfilesForPlatforms = "NO_PROFILES_FOR_PLATFORMS"
)

// NewAuthMissingError はAPIキー未設定エラーを生成する。
func NewAuthMissingError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthMissing,
		Message: "APIキーが設定されていません。環境変数 POSTPROXY_API_KEY、OSキーチェーン、または設定ファイルでAPIキーを指定してください。",
	}
}

// NewAuthInvalidError はAPIキー認証失敗エラーを生成する。
func NewAuthInvalidError(requestID string) *APIError {
	e := &APIError{
		Code:    ErrCodeAuthInvalid,
		Message: "APIキーの認証に失敗しました。キーが有効か確認してください。",
	}
	if requestID != "" {
		e.Details = map[string]any{"request_id": requestID}
	}
	return e
}

// NewValidationError は入力検証エラーを生成する。
// ネットワーク呼び出しの前に検出された不正入力に使用する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("入力が不正です: %s", reason),
	}
}

// NewTargetNotFoundError は投稿先解決失敗エラーを生成する。
// 解決はリクエスト全体でオール・オア・ナッシング（部分成功はしない）。
func NewTargetNotFoundError(target string) *APIError {
	return &APIError{
		Code:    ErrCodeTargetNotFound,
		Message: fmt.Sprintf("投稿先を解決できませんでした: %s", target),
		Details: map[string]any{"target": target},
	}
}

// NewPublishFailedError は投稿作成失敗エラーを生成する。
func NewPublishFailedError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodePublishFailed,
		Message: fmt.Sprintf("投稿の作成に失敗しました: %s", reason),
	}
}

// NewResourceNotFoundError は上流の404応答からエラーを生成する。
// 存在しないジョブIDやプロファイルIDの参照に対応する。
func NewResourceNotFoundError(path, requestID string) *APIError {
	details := map[string]any{"path": path}
	if requestID != "" {
		details["request_id"] = requestID
	}
	return &APIError{
		Code:    ErrCodeTargetNotFound,
		Message: fmt.Sprintf("リソースが見つかりません: %s", path),
		Details: details,
	}
}

// NewUpstreamValidationError は上流の4xx応答からエラーを生成する。
func NewUpstreamValidationError(statusCode int, message, requestID string) *APIError {
	details := map[string]any{"status_code": statusCode}
	if requestID != "" {
		details["request_id"] = requestID
	}
	return &APIError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("上流APIがリクエストを拒否しました: %s", message),
		Details: details,
	}
}

// NewAPIErrorFromUpstream は上流APIの失敗応答からエラーを生成する。
func NewAPIErrorFromUpstream(statusCode int, message, requestID string) *APIError {
	details := map[string]any{"status_code": statusCode}
	if requestID != "" {
		details["request_id"] = requestID
	}
	return &APIError{
		Code:    ErrCodeAPIError,
		Message: fmt.Sprintf("上流APIがエラーを返しました: %s", message),
		Details: details,
	}
}

// NewAPITimeoutError はタイムアウトエラーを生成する。
// 他のHTTP失敗とは区別し、再試行判断の材料にする。
func NewAPITimeoutError(path string) *APIError {
	return &APIError{
		Code:    ErrCodeAPITimeout,
		Message: fmt.Sprintf("上流APIの呼び出しがタイムアウトしました: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNoFailedPlatformsError は再試行対象なしエラーを生成する。
func NewNoFailedPlatformsError(jobID string) *APIError {
	return &APIError{
		Code:    ErrCodeNoFailedPlatforms,
		Message: fmt.Sprintf("失敗状態のプラットフォームがないため再試行できません: %s", jobID),
		Details: map[string]any{"job_id": jobID},
	}
}

// NewNoProfilesForPlatformsError は再試行先プロファイル解決失敗エラーを生成する。
func NewNoProfilesForPlatformsError(platforms []string) *APIError {
	return &APIError{
		Code:    ErrCodeNoProfilesForPlatforms,
		Message: fmt.Sprintf("失敗したプラットフォームに対応するプロファイルが見つかりません: %v", platforms),
		Details: map[string]any{"platforms": platforms},
	}
}
