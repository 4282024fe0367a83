package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/postproxy/postproxy-mcp/internal/publish"
)

// 各ツールの入力スキーマはSDKが構造体タグから導出する。

type emptyInput struct{}

type publishInput struct {
	Content             string                     `json:"content" jsonschema:"投稿本文"`
	Targets             []string                   `json:"targets" jsonschema:"投稿先。プロファイルIDまたはプラットフォーム名"`
	Schedule            string                     `json:"schedule,omitempty" jsonschema:"予約時刻（RFC 3339形式）"`
	Media               []string                   `json:"media,omitempty" jsonschema:"メディアのURLまたはローカルファイルパス"`
	MediaFiles          []string                   `json:"media_files,omitempty" jsonschema:"ローカルメディアファイルのパス"`
	IdempotencyKey      string                     `json:"idempotency_key,omitempty" jsonschema:"冪等キー。省略時は入力から導出"`
	Draft               *bool                      `json:"draft,omitempty" jsonschema:"下書きとして作成する"`
	PlatformParams      map[string]json.RawMessage `json:"platform_params,omitempty" jsonschema:"プラットフォーム固有パラメータ"`
	RequireConfirmation bool                       `json:"require_confirmation,omitempty" jsonschema:"trueの場合は投稿せずプレビューを返す"`
}

type jobIDInput struct {
	JobID string `json:"job_id" jsonschema:"投稿ジョブID"`
}

type retryInput struct {
	JobID     string   `json:"job_id" jsonschema:"再試行する投稿ジョブID"`
	Platforms []string `json:"platforms,omitempty" jsonschema:"再試行対象を限定するプラットフォーム名"`
}

type historyInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"取得件数。既定10、最大50"`
}

type statsInput struct {
	PostIDs  []string `json:"post_ids" jsonschema:"統計を取得する投稿ID"`
	Profiles []string `json:"profiles,omitempty" jsonschema:"プロファイルIDで絞り込む"`
	From     string   `json:"from,omitempty" jsonschema:"期間の開始日"`
	To       string   `json:"to,omitempty" jsonschema:"期間の終了日"`
}

type placementsInput struct {
	ProfileID string `json:"profile_id" jsonschema:"プロファイルID"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "auth_status",
		Description: "上流APIの認証状態を確認する。APIキーの有無と有効性を報告する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in emptyInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.AuthStatus(ctx)
		return s.result("auth_status", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "profiles_list",
		Description: "接続済みのソーシャルプロファイルを全プロファイルグループ横断で一覧する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in emptyInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.Profiles(ctx)
		return s.result("profiles_list", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "post_publish",
		Description: "投稿を作成する。投稿先はプロファイルIDまたはプラットフォーム名で指定でき、予約投稿・下書き・メディア添付に対応する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in publishInput) (*mcp.CallToolResult, any, error) {
		result, preview, err := s.svc.Publish(ctx, publish.PublishInput{
			Content:             in.Content,
			Targets:             in.Targets,
			Schedule:            in.Schedule,
			Media:               in.Media,
			MediaFiles:          in.MediaFiles,
			IdempotencyKey:      in.IdempotencyKey,
			Draft:               in.Draft,
			PlatformParams:      in.PlatformParams,
			RequireConfirmation: in.RequireConfirmation,
		})
		if err != nil {
			return s.errorResult("post_publish", err)
		}
		if preview != nil {
			return s.result("post_publish", preview, nil)
		}
		return s.result("post_publish", result, nil)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "post_status",
		Description: "投稿の現在状態をプラットフォーム別結果とあわせて取得する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in jobIDInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.Status(ctx, in.JobID)
		return s.result("post_status", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "post_publish_draft",
		Description: "下書き投稿の配信を開始する。対象が下書きでない場合は拒否する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in jobIDInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.PublishDraft(ctx, in.JobID)
		return s.result("post_publish_draft", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "post_delete",
		Description: "投稿を削除する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in jobIDInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.Delete(ctx, in.JobID)
		return s.result("post_delete", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "post_retry",
		Description: "失敗したプラットフォームへの配信を新しい投稿として再試行する。元の投稿は変更しない。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in retryInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.Retry(ctx, in.JobID, in.Platforms)
		return s.result("post_retry", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "history_list",
		Description: "直近の投稿を状態の要約つきで一覧する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in historyInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.History(ctx, in.Limit)
		return s.result("history_list", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "post_stats",
		Description: "公開済み投稿のエンゲージメント統計を取得する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in statsInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.Stats(ctx, in.PostIDs, in.Profiles, in.From, in.To)
		return s.result("post_stats", result, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "profiles_placements",
		Description: "プロファイル配下の投稿先区分（ボード・コミュニティ等）を一覧する。",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in placementsInput) (*mcp.CallToolResult, any, error) {
		result, err := s.svc.Placements(ctx, in.ProfileID)
		return s.result("profiles_placements", result, err)
	})
}
