package publish

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/postproxy/postproxy-mcp/internal/model"
	"github.com/postproxy/postproxy-mcp/internal/resolver"
	"github.com/postproxy/postproxy-mcp/internal/upstream"
)

// fakeUpstream はUpstreamAPIのテスト用実装。
type fakeUpstream struct {
	hasKey    bool
	groups    []model.ProfileGroup
	groupsErr error
	profiles  map[string][]model.Profile

	posts      map[string]*model.Post
	listResult []model.Post

	createReqs []upstream.CreatePostRequest
	createResp *model.Post
	createErr  error

	deleted   []string
	published []string

	placements map[string][]model.Placement
	stats      map[string]any
	statsQuery upstream.StatsQuery
}

func (f *fakeUpstream) HasKey() bool { return f.hasKey }

func (f *fakeUpstream) ListProfileGroups(ctx context.Context) ([]model.ProfileGroup, error) {
	return f.groups, f.groupsErr
}

func (f *fakeUpstream) ListProfiles(ctx context.Context, groupID string) ([]model.Profile, error) {
	return f.profiles[groupID], nil
}

func (f *fakeUpstream) CreatePost(ctx context.Context, req upstream.CreatePostRequest) (*model.Post, error) {
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResp != nil {
		return f.createResp, nil
	}
	return &model.Post{ID: fmt.Sprintf("job-%d", len(f.createReqs)), Content: req.Content, Status: model.PostStatusProcessed}, nil
}

func (f *fakeUpstream) GetPost(ctx context.Context, postID string) (*model.Post, error) {
	post, ok := f.posts[postID]
	if !ok {
		return nil, model.NewResourceNotFoundError("/posts/"+postID, "")
	}
	return post, nil
}

func (f *fakeUpstream) ListPosts(ctx context.Context, perPage, page int) ([]model.Post, error) {
	if perPage < len(f.listResult) {
		return f.listResult[:perPage], nil
	}
	return f.listResult, nil
}

func (f *fakeUpstream) DeletePost(ctx context.Context, postID string) error {
	f.deleted = append(f.deleted, postID)
	return nil
}

func (f *fakeUpstream) PublishPost(ctx context.Context, postID string) (*model.Post, error) {
	f.published = append(f.published, postID)
	post := f.posts[postID]
	return &model.Post{ID: postID, Content: post.Content, Status: model.PostStatusProcessing}, nil
}

func (f *fakeUpstream) ListPlacements(ctx context.Context, profileID string) ([]model.Placement, error) {
	return f.placements[profileID], nil
}

func (f *fakeUpstream) GetStats(ctx context.Context, q upstream.StatsQuery) (map[string]any, error) {
	f.statsQuery = q
	return f.stats, nil
}

// fakeFetcher はMediaFetcherのテスト用実装。
type fakeFetcher struct {
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (upstream.MediaFile, error) {
	f.fetched = append(f.fetched, rawURL)
	return upstream.MediaFile{Name: "remote.png", ContentType: "image/png", Data: []byte("x")}, nil
}

func newTestService(api *fakeUpstream) (*Service, *fakeFetcher) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	fetcher := &fakeFetcher{}
	return NewService(api, resolver.New(api, logger), fetcher, logger), fetcher
}

func singleProfileFixture() *fakeUpstream {
	return &fakeUpstream{
		hasKey: true,
		groups: []model.ProfileGroup{{ID: "g1", Name: "default"}},
		profiles: map[string][]model.Profile{
			"g1": {{ID: "p1", Name: "me", Platform: "twitter", ProfileGroupID: "g1"}},
		},
		posts: map[string]*model.Post{},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError ではないエラーが返った: %v", err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %s, want %s", apiErr.Code, code)
	}
}

func TestPublish_EndToEnd(t *testing.T) {
	api := singleProfileFixture()
	api.createResp = &model.Post{
		ID:      "job-1",
		Content: "Hello",
		Status:  model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusPublished},
		},
	}
	svc, _ := newTestService(api)

	result, preview, err := svc.Publish(context.Background(), PublishInput{
		Content: "Hello",
		Targets: []string{"p1"},
	})
	if err != nil {
		t.Fatalf("Publish がエラーを返した: %v", err)
	}
	if preview != nil {
		t.Fatal("確認要求なしでプレビューが返った")
	}

	// 上流はプラットフォーム名で受け取り、メディアは空
	req := api.createReqs[0]
	if diff := cmp.Diff([]string{"twitter"}, req.Platforms); diff != "" {
		t.Errorf("上流へのプラットフォーム指定 (-want +got):\n%s", diff)
	}
	if len(req.MediaURLs) != 0 || len(req.MediaFiles) != 0 {
		t.Errorf("メディア = %v / %v, want 空", req.MediaURLs, req.MediaFiles)
	}

	// 冪等キーは正規化エンコードのSHA-256
	sum := sha256.Sum256([]byte(`{"content":"Hello","targets":["p1"],"schedule":""}`))
	wantKey := hex.EncodeToString(sum[:])
	if req.IdempotencyKey != wantKey {
		t.Errorf("IdempotencyKey = %s, want %s", req.IdempotencyKey, wantKey)
	}
	if result.IdempotencyKey != wantKey {
		t.Errorf("結果のIdempotencyKey = %s, want %s", result.IdempotencyKey, wantKey)
	}

	if result.Status != model.OverallStatusComplete {
		t.Errorf("Status = %s, want complete", result.Status)
	}
	if result.Warning != "" {
		t.Errorf("Warning = %q, want 空", result.Warning)
	}
}

func TestPublish_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		input PublishInput
	}{
		{"空本文", PublishInput{Content: "   ", Targets: []string{"p1"}}},
		{"投稿先なし", PublishInput{Content: "x"}},
		{"不正な予約時刻", PublishInput{Content: "x", Targets: []string{"p1"}, Schedule: "tomorrow"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := singleProfileFixture()
			svc, _ := newTestService(api)

			_, _, err := svc.Publish(context.Background(), tt.input)
			assertCode(t, err, model.ErrCodeValidation)
			if len(api.createReqs) != 0 {
				t.Error("検証エラー時は上流を呼び出してはならない")
			}
		})
	}
}

func TestPublish_UnknownTargetFailsWholeCall(t *testing.T) {
	api := singleProfileFixture()
	svc, _ := newTestService(api)

	_, _, err := svc.Publish(context.Background(), PublishInput{
		Content: "hi",
		Targets: []string{"p1", "unknown-id", "mastodon"},
	})
	assertCode(t, err, model.ErrCodeTargetNotFound)
	if len(api.createReqs) != 0 {
		t.Error("解決失敗時は部分投稿してはならない")
	}
}

func TestPublish_DraftOverrideWarning(t *testing.T) {
	api := singleProfileFixture()
	api.createResp = &model.Post{ID: "job-1", Content: "hi", Status: model.PostStatusProcessed, Draft: false}
	svc, _ := newTestService(api)

	draft := true
	result, _, err := svc.Publish(context.Background(), PublishInput{
		Content: "hi",
		Targets: []string{"p1"},
		Draft:   &draft,
	})
	if err != nil {
		t.Fatalf("下書き上書きはエラーではなく警告になるべき: %v", err)
	}
	if result.Warning == "" {
		t.Error("下書き上書き時は警告が付くべき")
	}
}

func TestPublish_DraftHonoredNoWarning(t *testing.T) {
	api := singleProfileFixture()
	api.createResp = &model.Post{ID: "job-1", Content: "hi", Status: model.PostStatusDraft, Draft: true}
	svc, _ := newTestService(api)

	draft := true
	result, _, err := svc.Publish(context.Background(), PublishInput{
		Content: "hi",
		Targets: []string{"p1"},
		Draft:   &draft,
	})
	if err != nil {
		t.Fatalf("Publish がエラーを返した: %v", err)
	}
	if result.Warning != "" {
		t.Errorf("Warning = %q, want 空", result.Warning)
	}
	if result.Status != model.OverallStatusDraft {
		t.Errorf("Status = %s, want draft", result.Status)
	}
}

func TestPublish_RequireConfirmationReturnsPreview(t *testing.T) {
	api := singleProfileFixture()
	svc, _ := newTestService(api)

	result, preview, err := svc.Publish(context.Background(), PublishInput{
		Content:             "hi",
		Targets:             []string{"p1"},
		RequireConfirmation: true,
	})
	if err != nil {
		t.Fatalf("Publish がエラーを返した: %v", err)
	}
	if result != nil {
		t.Error("確認要求時は投稿結果を返してはならない")
	}
	if preview == nil || !preview.RequiresConfirmation {
		t.Fatal("確認プレビューが返るべき")
	}
	if len(api.createReqs) != 0 {
		t.Error("確認要求時は投稿を作成してはならない")
	}
}

func TestPublish_RemoteMediaFetchedWhenLocalFilePresent(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "local.png")
	if err := os.WriteFile(localPath, []byte("png"), 0o600); err != nil {
		t.Fatal(err)
	}

	api := singleProfileFixture()
	svc, fetcher := newTestService(api)

	_, _, err := svc.Publish(context.Background(), PublishInput{
		Content: "hi",
		Targets: []string{"p1"},
		Media:   []string{"https://cdn.example.com/a.png", localPath},
	})
	if err != nil {
		t.Fatalf("Publish がエラーを返した: %v", err)
	}

	req := api.createReqs[0]
	if len(req.MediaURLs) != 0 {
		t.Errorf("マルチパート時はMediaURLsが空になるべき: %v", req.MediaURLs)
	}
	if len(req.MediaFiles) != 2 {
		t.Errorf("ファイル数 = %d, want 2 (ローカル+取得済みリモート)", len(req.MediaFiles))
	}
	if diff := cmp.Diff([]string{"https://cdn.example.com/a.png"}, fetcher.fetched); diff != "" {
		t.Errorf("取得したリモートURL (-want +got):\n%s", diff)
	}
}

func TestPublish_URLOnlyMediaStaysJSON(t *testing.T) {
	api := singleProfileFixture()
	svc, fetcher := newTestService(api)

	_, _, err := svc.Publish(context.Background(), PublishInput{
		Content: "hi",
		Targets: []string{"p1"},
		Media:   []string{"https://cdn.example.com/a.png"},
	})
	if err != nil {
		t.Fatalf("Publish がエラーを返した: %v", err)
	}

	req := api.createReqs[0]
	if len(req.MediaURLs) != 1 || len(req.MediaFiles) != 0 {
		t.Errorf("URLのみのメディアはJSON送信のまま: urls=%v files=%d", req.MediaURLs, len(req.MediaFiles))
	}
	if len(fetcher.fetched) != 0 {
		t.Error("URLのみの場合はリモート取得しない")
	}
}

func TestStatus_Reconciled(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{
		ID:      "job-1",
		Content: "hi",
		Status:  model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusPublished},
			{Platform: "linkedin", Status: model.OutcomeStatusFailed, Error: "expired"},
		},
	}
	svc, _ := newTestService(api)

	result, err := svc.Status(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Status がエラーを返した: %v", err)
	}
	if result.Status != model.OverallStatusComplete {
		t.Errorf("Status = %s, want complete (成否混在)", result.Status)
	}
	if len(result.Outcomes) != 2 {
		t.Errorf("Outcomes数 = %d, want 2", len(result.Outcomes))
	}
}

func TestPublishDraft_RejectsNonDraftLocally(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{ID: "job-1", Status: model.PostStatusProcessed}
	svc, _ := newTestService(api)

	_, err := svc.PublishDraft(context.Background(), "job-1")
	assertCode(t, err, model.ErrCodeValidation)
	if len(api.published) != 0 {
		t.Error("下書きでない投稿に対して上流のpublishを呼んではならない")
	}
}

func TestPublishDraft_Success(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{ID: "job-1", Content: "hi", Status: model.PostStatusDraft, Draft: true}
	svc, _ := newTestService(api)

	result, err := svc.PublishDraft(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("PublishDraft がエラーを返した: %v", err)
	}
	if result.Status != model.OverallStatusProcessing {
		t.Errorf("Status = %s, want processing", result.Status)
	}
	if len(api.published) != 1 {
		t.Errorf("publish呼び出し回数 = %d, want 1", len(api.published))
	}
}

func TestRetry_NoFailedPlatforms(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{
		ID:     "job-1",
		Status: model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusPublished},
		},
	}
	svc, _ := newTestService(api)

	_, err := svc.Retry(context.Background(), "job-1", nil)
	assertCode(t, err, model.ErrCodeNoFailedPlatforms)
	if len(api.createReqs) != 0 {
		t.Error("再試行対象がない場合は新しい投稿を作成してはならない")
	}
}

func TestRetry_FilterExcludesAllFailures(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{
		ID:     "job-1",
		Status: model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusFailed},
		},
	}
	svc, _ := newTestService(api)

	_, err := svc.Retry(context.Background(), "job-1", []string{"linkedin"})
	assertCode(t, err, model.ErrCodeNoFailedPlatforms)
}

func TestRetry_NoProfilesForPlatforms(t *testing.T) {
	api := singleProfileFixture() // twitterのプロファイルのみ
	api.posts["job-1"] = &model.Post{
		ID:     "job-1",
		Status: model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "linkedin", Status: model.OutcomeStatusFailed},
		},
	}
	svc, _ := newTestService(api)

	_, err := svc.Retry(context.Background(), "job-1", nil)
	assertCode(t, err, model.ErrCodeNoProfilesForPlatforms)
}

func TestRetry_Success(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{
		ID:      "job-1",
		Content: "original text",
		Status:  model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusFailed, Error: "rate limited"},
			{Platform: "mastodon", Status: model.OutcomeStatusFailed},
		},
	}
	api.createResp = &model.Post{ID: "job-2", Content: "original text", Status: model.PostStatusProcessing}
	svc, _ := newTestService(api)

	result, err := svc.Retry(context.Background(), "job-1", nil)
	if err != nil {
		t.Fatalf("Retry がエラーを返した: %v", err)
	}

	if result.NewJobID != "job-2" || result.OriginalJobID != "job-1" {
		t.Errorf("ジョブID = %s/%s, want job-2/job-1", result.NewJobID, result.OriginalJobID)
	}
	// mastodonにはプロファイルがないため再試行対象はtwitterのみ
	if diff := cmp.Diff([]string{"twitter"}, result.RetriedPlatforms); diff != "" {
		t.Errorf("再試行プラットフォーム (-want +got):\n%s", diff)
	}

	req := api.createReqs[0]
	if req.Content != "original text" {
		t.Errorf("再試行の本文 = %q, want 元の本文", req.Content)
	}
	// 上流にはキー導出と同じプロファイルIDが渡る
	if diff := cmp.Diff([]string{"p1"}, req.Platforms); diff != "" {
		t.Errorf("上流への投稿先指定 (-want +got):\n%s", diff)
	}
	if req.IdempotencyKey == "" {
		t.Error("再試行にも冪等キーを付けるべき")
	}
}

func TestRetry_DerivesNewKeyFromRefreshedTargets(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{
		ID:      "job-1",
		Content: "text",
		Status:  model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusFailed},
		},
	}
	svc, _ := newTestService(api)

	result, err := svc.Retry(context.Background(), "job-1", nil)
	if err != nil {
		t.Fatalf("Retry がエラーを返した: %v", err)
	}

	// キーは再試行入力（プロファイルIDベース）から新規に導出される
	sum := sha256.Sum256([]byte(`{"content":"text","targets":["p1"],"schedule":""}`))
	want := hex.EncodeToString(sum[:])
	if result.IdempotencyKey != want {
		t.Errorf("IdempotencyKey = %s, want %s", result.IdempotencyKey, want)
	}
}

func TestRetry_DuplicateFailureRowsDoNotDuplicateTargets(t *testing.T) {
	api := singleProfileFixture()
	api.posts["job-1"] = &model.Post{
		ID:      "job-1",
		Content: "text",
		Status:  model.PostStatusProcessed,
		Outcomes: []model.PlatformOutcome{
			{Platform: "twitter", Status: model.OutcomeStatusFailed, Error: "rate limited"},
			{Platform: "twitter", Status: model.OutcomeStatusFailed, Error: "expired"},
		},
	}
	svc, _ := newTestService(api)

	result, err := svc.Retry(context.Background(), "job-1", nil)
	if err != nil {
		t.Fatalf("Retry がエラーを返した: %v", err)
	}

	if diff := cmp.Diff([]string{"twitter"}, result.RetriedPlatforms); diff != "" {
		t.Errorf("再試行プラットフォーム (-want +got):\n%s", diff)
	}

	// プロファイルIDは重複せず、キーも1件分の投稿先から導出される
	if diff := cmp.Diff([]string{"p1"}, api.createReqs[0].Platforms); diff != "" {
		t.Errorf("上流への投稿先指定 (-want +got):\n%s", diff)
	}
	sum := sha256.Sum256([]byte(`{"content":"text","targets":["p1"],"schedule":""}`))
	if want := hex.EncodeToString(sum[:]); result.IdempotencyKey != want {
		t.Errorf("IdempotencyKey = %s, want %s", result.IdempotencyKey, want)
	}
}

func TestHistory_LimitAndPreviewTruncation(t *testing.T) {
	long := strings.Repeat("あ", 150)
	api := singleProfileFixture()
	api.listResult = []model.Post{
		{ID: "j1", Content: long, Status: model.PostStatusProcessed, Outcomes: []model.PlatformOutcome{{Platform: "twitter", Status: model.OutcomeStatusPublished}}},
		{ID: "j2", Content: "short", Status: model.PostStatusPending},
		{ID: "j3", Content: "x", Status: model.PostStatusDraft},
		{ID: "j4", Content: "x", Status: model.PostStatusDraft},
		{ID: "j5", Content: "x", Status: model.PostStatusDraft},
	}
	svc, _ := newTestService(api)

	result, err := svc.History(context.Background(), 2)
	if err != nil {
		t.Fatalf("History がエラーを返した: %v", err)
	}
	if result.Count != 2 {
		t.Fatalf("件数 = %d, want 2", result.Count)
	}

	preview := result.Jobs[0].ContentPreview
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("100文字超の本文は...付きで切り詰めるべき: %q", preview)
	}
	if got := len([]rune(preview)); got != contentPreviewLimit+3 {
		t.Errorf("プレビュー長 = %d, want %d", got, contentPreviewLimit+3)
	}
	if result.Jobs[1].ContentPreview != "short" {
		t.Errorf("短い本文は切り詰めない: %q", result.Jobs[1].ContentPreview)
	}
}

func TestHistory_StripsHTMLFromPreview(t *testing.T) {
	api := singleProfileFixture()
	api.listResult = []model.Post{
		{ID: "j1", Content: `<b>bold</b> and <script>alert(1)</script>plain`, Status: model.PostStatusPending},
	}
	svc, _ := newTestService(api)

	result, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History がエラーを返した: %v", err)
	}
	preview := result.Jobs[0].ContentPreview
	if strings.Contains(preview, "<") {
		t.Errorf("プレビューにHTMLタグが残っている: %q", preview)
	}
	if !strings.Contains(preview, "bold") {
		t.Errorf("テキスト内容は保持すべき: %q", preview)
	}
}

func TestAuthStatus(t *testing.T) {
	t.Run("キー未設定", func(t *testing.T) {
		api := singleProfileFixture()
		api.hasKey = false
		svc, _ := newTestService(api)

		result, err := svc.AuthStatus(context.Background())
		if err != nil {
			t.Fatalf("AuthStatus がエラーを返した: %v", err)
		}
		if result.Authenticated || result.Reason != "api_key_missing" {
			t.Errorf("結果 = %+v, want 未認証/api_key_missing", result)
		}
	})

	t.Run("キー無効", func(t *testing.T) {
		api := singleProfileFixture()
		api.groupsErr = model.NewAuthInvalidError("req-1")
		svc, _ := newTestService(api)

		result, err := svc.AuthStatus(context.Background())
		if err != nil {
			t.Fatalf("キー無効はエラーではなく結果で報告すべき: %v", err)
		}
		if result.Authenticated || result.Reason != "api_key_invalid" {
			t.Errorf("結果 = %+v, want 未認証/api_key_invalid", result)
		}
	})

	t.Run("認証成功", func(t *testing.T) {
		api := singleProfileFixture()
		svc, _ := newTestService(api)

		result, err := svc.AuthStatus(context.Background())
		if err != nil {
			t.Fatalf("AuthStatus がエラーを返した: %v", err)
		}
		if !result.Authenticated || result.ProfileGroups != 1 {
			t.Errorf("結果 = %+v, want 認証済み/グループ1", result)
		}
	})
}

func TestDelete(t *testing.T) {
	api := singleProfileFixture()
	svc, _ := newTestService(api)

	result, err := svc.Delete(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Delete がエラーを返した: %v", err)
	}
	if !result.Deleted || result.JobID != "job-1" {
		t.Errorf("結果 = %+v", result)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "job-1" {
		t.Errorf("削除呼び出し = %v, want [job-1]", api.deleted)
	}
}

func TestStats_RequiresPostIDs(t *testing.T) {
	api := singleProfileFixture()
	svc, _ := newTestService(api)

	_, err := svc.Stats(context.Background(), nil, nil, "", "")
	assertCode(t, err, model.ErrCodeValidation)
}

func TestStats_PassesQuery(t *testing.T) {
	api := singleProfileFixture()
	api.stats = map[string]any{"p1": map[string]any{}}
	svc, _ := newTestService(api)

	_, err := svc.Stats(context.Background(), []string{"p1"}, []string{"twitter"}, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("Stats がエラーを返した: %v", err)
	}
	if api.statsQuery.From != "2026-08-01" || api.statsQuery.To != "2026-08-31" {
		t.Errorf("期間指定が渡っていない: %+v", api.statsQuery)
	}
}

func TestPlacements(t *testing.T) {
	api := singleProfileFixture()
	boardID := "b1"
	api.placements = map[string][]model.Placement{
		"p1": {{ID: &boardID, Name: "Tech Board"}},
	}
	svc, _ := newTestService(api)

	result, err := svc.Placements(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Placements がエラーを返した: %v", err)
	}
	if len(result.Placements) != 1 || result.Placements[0].Name != "Tech Board" {
		t.Errorf("結果 = %+v", result)
	}
}
