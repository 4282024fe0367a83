// Package publish は投稿操作のドメインロジックを提供する。
// ツール呼び出し1回が論理トランザクション1回に対応し、上流呼び出しは
// すべて逐次実行する。プロセス内に呼び出しをまたぐ状態は持たない。
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/postproxy/postproxy-mcp/internal/idempotency"
	"github.com/postproxy/postproxy-mcp/internal/media"
	"github.com/postproxy/postproxy-mcp/internal/model"
	"github.com/postproxy/postproxy-mcp/internal/platformparams"
	"github.com/postproxy/postproxy-mcp/internal/reconcile"
	"github.com/postproxy/postproxy-mcp/internal/resolver"
	"github.com/postproxy/postproxy-mcp/internal/upstream"
)

// contentPreviewLimit は履歴一覧の本文プレビューの最大文字数。
const contentPreviewLimit = 100

// UpstreamAPI はサービス層が必要とする上流呼び出しのインターフェース。
type UpstreamAPI interface {
	resolver.ProfileAPI
	CreatePost(ctx context.Context, req upstream.CreatePostRequest) (*model.Post, error)
	GetPost(ctx context.Context, postID string) (*model.Post, error)
	ListPosts(ctx context.Context, perPage, page int) ([]model.Post, error)
	DeletePost(ctx context.Context, postID string) error
	PublishPost(ctx context.Context, postID string) (*model.Post, error)
	ListPlacements(ctx context.Context, profileID string) ([]model.Placement, error)
	GetStats(ctx context.Context, q upstream.StatsQuery) (map[string]any, error)
	HasKey() bool
}

// MediaFetcher はリモートメディア取得のインターフェース。
type MediaFetcher interface {
	Fetch(ctx context.Context, rawURL string) (upstream.MediaFile, error)
}

// Service は投稿操作のサービス層。
type Service struct {
	api       UpstreamAPI
	resolver  *resolver.Resolver
	fetcher   MediaFetcher
	logger    *slog.Logger
	sanitizer *bluemonday.Policy // 本文プレビューからHTMLタグを除去する
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(api UpstreamAPI, res *resolver.Resolver, fetcher MediaFetcher, logger *slog.Logger) *Service {
	return &Service{
		api:       api,
		resolver:  res,
		fetcher:   fetcher,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// AuthStatusResult は認証状態確認の結果。
type AuthStatusResult struct {
	Authenticated bool   `json:"authenticated"`
	Reason        string `json:"reason,omitempty"`
	ProfileGroups int    `json:"profile_groups,omitempty"`
}

// AuthStatus はAPIキーの有無と有効性を確認する。
// キーが無効な場合もエラーではなく結果として報告する。
func (s *Service) AuthStatus(ctx context.Context) (*AuthStatusResult, error) {
	if !s.api.HasKey() {
		return &AuthStatusResult{Authenticated: false, Reason: "api_key_missing"}, nil
	}

	groups, err := s.api.ListProfileGroups(ctx)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeAuthInvalid {
			return &AuthStatusResult{Authenticated: false, Reason: "api_key_invalid"}, nil
		}
		return nil, err
	}

	return &AuthStatusResult{Authenticated: true, ProfileGroups: len(groups)}, nil
}

// ProfilesResult はプロファイル一覧の結果。
type ProfilesResult struct {
	Profiles []model.Profile `json:"profiles"`
	Count    int             `json:"count"`
}

// Profiles は全プロファイルを平坦化して返す。
func (s *Service) Profiles(ctx context.Context) (*ProfilesResult, error) {
	profiles, err := s.resolver.ListAllProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return &ProfilesResult{Profiles: profiles, Count: len(profiles)}, nil
}

// PublishInput は投稿作成の入力。
type PublishInput struct {
	Content             string
	Targets             []string
	Schedule            string
	Media               []string // URLまたはローカルファイルパス
	MediaFiles          []string // 明示的なローカルファイルパス
	IdempotencyKey      string
	Draft               *bool
	PlatformParams      map[string]json.RawMessage
	RequireConfirmation bool
}

// PublishResult は投稿作成の結果。
type PublishResult struct {
	JobID          string                  `json:"job_id"`
	Status         model.OverallStatus     `json:"status"`
	Platforms      []string                `json:"platforms"`
	Outcomes       []model.PlatformOutcome `json:"outcomes"`
	ScheduledAt    string                  `json:"scheduled_at,omitempty"`
	IdempotencyKey string                  `json:"idempotency_key"`
	Warning        string                  `json:"warning,omitempty"`
}

// ConfirmationPreview は確認要求時に投稿を作成せずに返すプレビュー。
type ConfirmationPreview struct {
	RequiresConfirmation bool     `json:"requires_confirmation"`
	Content              string   `json:"content"`
	Platforms            []string `json:"platforms"`
	ScheduledAt          string   `json:"scheduled_at,omitempty"`
	MediaCount           int      `json:"media_count"`
	IdempotencyKey       string   `json:"idempotency_key"`
}

// Publish は投稿を作成する。
// 入力検証はすべてネットワーク呼び出しの前に行う。
// 結果にはリコンサイル済みの全体ステータスと、下書き要求が上流に
// 上書きされた場合の非致命的な警告を含む。
func (s *Service) Publish(ctx context.Context, in PublishInput) (*PublishResult, *ConfirmationPreview, error) {
	if err := validatePublishInput(in); err != nil {
		return nil, nil, err
	}

	params, err := platformparams.Validate(in.PlatformParams)
	if err != nil {
		return nil, nil, err
	}

	platforms, err := s.resolver.ResolveTargets(ctx, in.Targets)
	if err != nil {
		return nil, nil, err
	}

	key := in.IdempotencyKey
	if key == "" {
		key = idempotency.DeriveKey(in.Content, in.Targets, in.Schedule)
	}

	if in.RequireConfirmation {
		return nil, &ConfirmationPreview{
			RequiresConfirmation: true,
			Content:              in.Content,
			Platforms:            platforms,
			ScheduledAt:          in.Schedule,
			MediaCount:           len(in.Media) + len(in.MediaFiles),
			IdempotencyKey:       key,
		}, nil
	}

	mediaURLs, mediaFiles, err := s.prepareMedia(ctx, in.Media, in.MediaFiles)
	if err != nil {
		return nil, nil, err
	}

	post, err := s.api.CreatePost(ctx, upstream.CreatePostRequest{
		Content:        in.Content,
		Platforms:      platforms,
		ScheduledAt:    in.Schedule,
		Draft:          in.Draft,
		MediaURLs:      mediaURLs,
		MediaFiles:     mediaFiles,
		PlatformParams: params,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, nil, err
	}

	requestedDraft := in.Draft != nil && *in.Draft
	result := &PublishResult{
		JobID:          post.ID,
		Status:         reconcile.Overall(post),
		Platforms:      platforms,
		Outcomes:       normalizeOutcomes(post.Outcomes),
		ScheduledAt:    post.ScheduledAt,
		IdempotencyKey: key,
		Warning:        reconcile.OverrideWarning(requestedDraft, post),
	}

	s.logger.Info("post_created",
		slog.String("job_id", post.ID),
		slog.String("status", string(result.Status)),
		slog.Int("platform_count", len(platforms)),
		slog.Bool("draft_requested", requestedDraft),
		slog.Bool("draft_overridden", result.Warning != ""),
	)

	return result, nil, nil
}

// validatePublishInput は投稿作成入力を検証する。
func validatePublishInput(in PublishInput) error {
	if strings.TrimSpace(in.Content) == "" {
		return model.NewValidationError("投稿本文が空です")
	}
	if len(in.Targets) == 0 {
		return model.NewValidationError("投稿先が指定されていません")
	}
	if in.Schedule != "" {
		if _, err := time.Parse(time.RFC3339, in.Schedule); err != nil {
			return model.NewValidationError(
				fmt.Sprintf("予約時刻の形式が不正です（RFC 3339形式が必要）: %s", in.Schedule))
		}
	}
	return nil
}

// prepareMedia はメディア指定をJSON用URLとマルチパート用ファイルに準備する。
// ローカルファイルが1件でも含まれる場合は呼び出し全体がマルチパートになるため、
// URL指定のメディアも取得してバイナリパートへ変換する。
func (s *Service) prepareMedia(ctx context.Context, entries, explicitFiles []string) ([]string, []upstream.MediaFile, error) {
	urls, paths := media.Classify(entries)
	paths = append(paths, explicitFiles...)

	if len(paths) == 0 {
		return urls, nil, nil
	}

	var files []upstream.MediaFile
	for _, path := range paths {
		file, err := media.ReadFile(path)
		if err != nil {
			return nil, nil, model.NewValidationError(err.Error())
		}
		files = append(files, file)
	}

	for _, rawURL := range urls {
		file, err := s.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, nil, model.NewValidationError(err.Error())
		}
		files = append(files, file)
	}

	return nil, files, nil
}

// normalizeOutcomes はnilスライスを空スライスへ正規化する。
// ツール呼び出し側には常にJSON配列として見せる。
func normalizeOutcomes(outcomes []model.PlatformOutcome) []model.PlatformOutcome {
	if outcomes == nil {
		return []model.PlatformOutcome{}
	}
	return outcomes
}

// StatusResult は投稿状態照会の結果。
type StatusResult struct {
	JobID       string                  `json:"job_id"`
	Status      model.OverallStatus     `json:"status"`
	Draft       bool                    `json:"draft"`
	Content     string                  `json:"content"`
	ScheduledAt string                  `json:"scheduled_at,omitempty"`
	CreatedAt   string                  `json:"created_at,omitempty"`
	Outcomes    []model.PlatformOutcome `json:"outcomes"`
}

// Status は投稿の現在状態をリコンサイルして返す。
func (s *Service) Status(ctx context.Context, jobID string) (*StatusResult, error) {
	if jobID == "" {
		return nil, model.NewValidationError("ジョブIDが指定されていません")
	}

	post, err := s.api.GetPost(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		JobID:       post.ID,
		Status:      reconcile.Overall(post),
		Draft:       post.Draft,
		Content:     post.Content,
		ScheduledAt: post.ScheduledAt,
		CreatedAt:   post.CreatedAt,
		Outcomes:    normalizeOutcomes(post.Outcomes),
	}, nil
}

// PublishDraft は下書き投稿の配信を開始する。
// 対象が下書きでない場合は上流を呼び出さずローカルで拒否する。
func (s *Service) PublishDraft(ctx context.Context, jobID string) (*StatusResult, error) {
	if jobID == "" {
		return nil, model.NewValidationError("ジョブIDが指定されていません")
	}

	post, err := s.api.GetPost(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if reconcile.Overall(post) != model.OverallStatusDraft {
		return nil, model.NewValidationError(
			fmt.Sprintf("投稿 %s は下書きではないため配信開始できません", jobID))
	}

	published, err := s.api.PublishPost(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		JobID:       published.ID,
		Status:      reconcile.Overall(published),
		Draft:       published.Draft,
		Content:     published.Content,
		ScheduledAt: published.ScheduledAt,
		CreatedAt:   published.CreatedAt,
		Outcomes:    normalizeOutcomes(published.Outcomes),
	}, nil
}

// DeleteResult は投稿削除の結果。
type DeleteResult struct {
	JobID   string `json:"job_id"`
	Deleted bool   `json:"deleted"`
}

// Delete は投稿を削除する。
func (s *Service) Delete(ctx context.Context, jobID string) (*DeleteResult, error) {
	if jobID == "" {
		return nil, model.NewValidationError("ジョブIDが指定されていません")
	}
	if err := s.api.DeletePost(ctx, jobID); err != nil {
		return nil, err
	}
	return &DeleteResult{JobID: jobID, Deleted: true}, nil
}

// RetryResult は再試行の結果。
type RetryResult struct {
	NewJobID         string   `json:"new_job_id"`
	OriginalJobID    string   `json:"original_job_id"`
	RetriedPlatforms []string `json:"retried_platforms"`
	IdempotencyKey   string   `json:"idempotency_key"`
}

// Retry は失敗したプラットフォームへの配信を新しい投稿として再試行する。
// 手順:
//  1. 元投稿の現在状態を取得し、失敗状態のプラットフォームを
//     （フィルタ指定があれば交差して）選別する。空ならNO_FAILED_PLATFORMS。
//  2. 失敗プラットフォーム名を最新のプロファイルIDへ逆引きする。
//     1件も解決できなければNO_PROFILES_FOR_PLATFORMS。
//  3. 再試行の入力から冪等キーを新規に導出する（元のキーは再利用しない。
//     再試行は意味的に新しい投稿試行である）。
//  4. 新しい投稿を作成する。元の投稿は変更も削除もしない。
func (s *Service) Retry(ctx context.Context, jobID string, platformFilter []string) (*RetryResult, error) {
	if jobID == "" {
		return nil, model.NewValidationError("ジョブIDが指定されていません")
	}

	original, err := s.api.GetPost(ctx, jobID)
	if err != nil {
		return nil, err
	}

	failed := reconcile.FailedPlatforms(original, platformFilter)
	if len(failed) == 0 {
		return nil, model.NewNoFailedPlatformsError(jobID)
	}

	index, err := s.resolver.PlatformsToProfileIDs(ctx, failed)
	if err != nil {
		return nil, err
	}

	var profileIDs []string
	var retriable []string
	for _, platform := range failed {
		ids, ok := index[platform]
		if !ok || len(ids) == 0 {
			continue
		}
		profileIDs = append(profileIDs, ids...)
		retriable = append(retriable, platform)
	}
	if len(retriable) == 0 {
		return nil, model.NewNoProfilesForPlatformsError(failed)
	}

	// 再試行入力から新規にキーを導出する。入力が元と完全一致する場合に
	// 限りキーが一致しうるが、それを特別扱いで避けることはしない。
	key := idempotency.DeriveKey(original.Content, profileIDs, original.ScheduledAt)

	// 上流にはキー導出と同じプロファイルIDを渡す。プラットフォーム名のまま
	// 送ると同一プラットフォームに複数プロファイルがある場合に曖昧になる。
	created, err := s.api.CreatePost(ctx, upstream.CreatePostRequest{
		Content:        original.Content,
		Platforms:      profileIDs,
		ScheduledAt:    original.ScheduledAt,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("post_retried",
		slog.String("original_job_id", jobID),
		slog.String("new_job_id", created.ID),
		slog.Int("platform_count", len(retriable)),
	)

	return &RetryResult{
		NewJobID:         created.ID,
		OriginalJobID:    jobID,
		RetriedPlatforms: retriable,
		IdempotencyKey:   key,
	}, nil
}

// JobSummary は履歴一覧の1件分。
type JobSummary struct {
	JobID          string              `json:"job_id"`
	Status         model.OverallStatus `json:"status"`
	ContentPreview string              `json:"content_preview"`
	Platforms      []string            `json:"platforms"`
	ScheduledAt    string              `json:"scheduled_at,omitempty"`
	CreatedAt      string              `json:"created_at,omitempty"`
}

// HistoryResult は履歴一覧の結果。
type HistoryResult struct {
	Jobs  []JobSummary `json:"jobs"`
	Count int          `json:"count"`
}

// History は直近の投稿をリコンサイル済みの要約として返す。
// limitは既定10、最大50。
func (s *Service) History(ctx context.Context, limit int) (*HistoryResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	posts, err := s.api.ListPosts(ctx, limit, 1)
	if err != nil {
		return nil, err
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}

	jobs := make([]JobSummary, len(posts))
	for i := range posts {
		post := &posts[i]
		platforms := make([]string, 0, len(post.Outcomes))
		for _, o := range post.Outcomes {
			platforms = append(platforms, o.Platform)
		}
		jobs[i] = JobSummary{
			JobID:          post.ID,
			Status:         reconcile.Overall(post),
			ContentPreview: s.contentPreview(post.Content),
			Platforms:      platforms,
			ScheduledAt:    post.ScheduledAt,
			CreatedAt:      post.CreatedAt,
		}
	}

	return &HistoryResult{Jobs: jobs, Count: len(jobs)}, nil
}

// contentPreview は本文からHTMLタグを除去し、100文字に切り詰める。
// 切り詰めた場合のみ"..."を付ける。
func (s *Service) contentPreview(content string) string {
	plain := strings.TrimSpace(s.sanitizer.Sanitize(content))
	runes := []rune(plain)
	if len(runes) <= contentPreviewLimit {
		return plain
	}
	return string(runes[:contentPreviewLimit]) + "..."
}

// Stats は投稿IDをキーとした統計を取得する。
func (s *Service) Stats(ctx context.Context, postIDs, profiles []string, from, to string) (map[string]any, error) {
	if len(postIDs) == 0 {
		return nil, model.NewValidationError("投稿IDが指定されていません")
	}
	return s.api.GetStats(ctx, upstream.StatsQuery{
		PostIDs:  postIDs,
		Profiles: profiles,
		From:     from,
		To:       to,
	})
}

// PlacementsResult は投稿先区分一覧の結果。
type PlacementsResult struct {
	ProfileID  string            `json:"profile_id"`
	Placements []model.Placement `json:"placements"`
}

// Placements はプロファイル配下の投稿先区分を返す。
func (s *Service) Placements(ctx context.Context, profileID string) (*PlacementsResult, error) {
	if profileID == "" {
		return nil, model.NewValidationError("プロファイルIDが指定されていません")
	}
	placements, err := s.api.ListPlacements(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if placements == nil {
		placements = []model.Placement{}
	}
	return &PlacementsResult{ProfileID: profileID, Placements: placements}, nil
}
