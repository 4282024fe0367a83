// Package resolver は投稿先の解決を提供する。
// 呼び出し側が指定する投稿先（プロファイルIDまたは裸のプラットフォーム名）を
// 上流の作成呼び出しが要求するプラットフォーム名へ変換し、
// 再試行時にはプラットフォーム名からプロファイルIDへの逆引きも行う。
package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/postproxy/postproxy-mcp/internal/model"
)

// ProfileAPI はリゾルバが必要とする上流呼び出しのインターフェース。
type ProfileAPI interface {
	// ListProfileGroups は全プロファイルグループを取得する。
	ListProfileGroups(ctx context.Context) ([]model.ProfileGroup, error)
	// ListProfiles は指定グループ配下のプロファイルを取得する。
	ListProfiles(ctx context.Context, groupID string) ([]model.Profile, error)
}

// Resolver は投稿先解決のサービス層。
// プロファイル情報は毎回上流から取得し、リクエストをまたいで保持しない。
type Resolver struct {
	api    ProfileAPI
	logger *slog.Logger
}

// New はResolverの新しいインスタンスを生成する。
func New(api ProfileAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		logger: logger,
	}
}

// ListAllProfiles は全プロファイルグループを列挙し、配下のプロファイルを
// 平坦化して返す。あるグループの取得に失敗した場合はログに記録して
// スキップし、残りのグループの列挙は継続する（部分失敗許容の集約）。
// グループ一覧自体の取得失敗は呼び出し全体の失敗になる。
func (r *Resolver) ListAllProfiles(ctx context.Context) ([]model.Profile, error) {
	groups, err := r.api.ListProfileGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロファイルグループ一覧の取得に失敗しました: %w", err)
	}

	var profiles []model.Profile
	for _, group := range groups {
		groupProfiles, err := r.api.ListProfiles(ctx, group.ID)
		if err != nil {
			r.logger.Error("グループのプロファイル取得に失敗したためスキップします",
				slog.String("group_id", group.ID),
				slog.String("group_name", group.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		profiles = append(profiles, groupProfiles...)
	}

	return profiles, nil
}

// ResolveTargets は投稿先指定の列をプラットフォーム名の列へ解決する。
// 各投稿先について:
//   - 既知のプロファイルIDに一致すればそのプロファイルのプラットフォーム名
//   - 既知のプラットフォーム名そのものであればそのまま通す
//     （プロファイル一覧との突き合わせは行わない。投稿可否の最終判断は上流API）
//   - どちらでもなければTARGET_NOT_FOUND
//
// 解決はリクエスト全体でオール・オア・ナッシングで、1件でも解決できなければ
// 呼び出し全体が失敗する（有効な投稿先だけへの部分投稿はしない）。
// プロファイルIDは不透明な文字列として大文字小文字を区別して比較する。
func (r *Resolver) ResolveTargets(ctx context.Context, targets []string) ([]string, error) {
	profiles, err := r.ListAllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	resolved := make([]string, 0, len(targets))
	for _, target := range targets {
		if profile, ok := byID[target]; ok {
			resolved = append(resolved, profile.Platform)
			continue
		}
		if model.IsKnownPlatform(target) {
			resolved = append(resolved, target)
			continue
		}
		return nil, model.NewTargetNotFoundError(target)
	}

	return resolved, nil
}

// PlatformsToProfileIDs はプラットフォーム名からプロファイルIDの列への
// 逆引き索引を構築する。再試行時に、失敗結果レコードのプラットフォーム名を
// 投稿可能な最新の投稿先識別子へ変換するために使用する。
// 該当プロファイルのないプラットフォーム名は結果に含まれない。
func (r *Resolver) PlatformsToProfileIDs(ctx context.Context, platforms []string) (map[string][]string, error) {
	profiles, err := r.ListAllProfiles(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(platforms))
	for _, p := range platforms {
		wanted[p] = struct{}{}
	}

	index := make(map[string][]string)
	for _, profile := range profiles {
		if _, ok := wanted[profile.Platform]; !ok {
			continue
		}
		index[profile.Platform] = append(index[profile.Platform], profile.ID)
	}

	return index, nil
}
