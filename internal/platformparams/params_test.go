package platformparams

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/postproxy/postproxy-mcp/internal/model"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("APIError ではないエラーが返った: %v", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("Code = %s, want %s", apiErr.Code, model.ErrCodeValidation)
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	got, err := Validate(nil)
	if err != nil {
		t.Fatalf("Validate がエラーを返した: %v", err)
	}
	if got != nil {
		t.Errorf("空入力の結果 = %v, want nil", got)
	}
}

func TestValidate_KnownPlatforms(t *testing.T) {
	raw := map[string]json.RawMessage{
		"instagram": json.RawMessage(`{"media_type":"reel","share_to_feed":true}`),
		"youtube":   json.RawMessage(`{"title":"demo","privacy_status":"unlisted"}`),
		"twitter":   json.RawMessage(`{}`),
	}

	got, err := Validate(raw)
	if err != nil {
		t.Fatalf("Validate がエラーを返した: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("検証済みプラットフォーム数 = %d, want 3", len(got))
	}

	ig, ok := got["instagram"].(*InstagramParams)
	if !ok {
		t.Fatalf("instagramの型 = %T, want *InstagramParams", got["instagram"])
	}
	if ig.MediaType != "reel" {
		t.Errorf("media_type = %q, want reel", ig.MediaType)
	}
}

func TestValidate_UnknownPlatformRejected(t *testing.T) {
	_, err := Validate(map[string]json.RawMessage{
		"myspace": json.RawMessage(`{}`),
	})
	assertValidationError(t, err)
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	_, err := Validate(map[string]json.RawMessage{
		"instagram": json.RawMessage(`{"media_type":"reel","bogus":1}`),
	})
	assertValidationError(t, err)
}

func TestValidate_EnumViolationRejected(t *testing.T) {
	_, err := Validate(map[string]json.RawMessage{
		"youtube": json.RawMessage(`{"privacy_status":"secret"}`),
	})
	assertValidationError(t, err)
}

func TestValidate_TwitterRejectsAnyParams(t *testing.T) {
	// Twitter/Threadsは空レコードのため、任意のフィールドは未知フィールド扱い
	_, err := Validate(map[string]json.RawMessage{
		"twitter": json.RawMessage(`{"media_type":"reel"}`),
	})
	assertValidationError(t, err)
}
