package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_ErrorFormat(t *testing.T) {
	err := NewValidationError("本文が空です")
	if got := err.Error(); got != fmt.Sprintf("[%s] %s", err.Code, err.Message) {
		t.Errorf("Error() = %q", got)
	}
}

func TestAsAPIError_PassesThroughAPIError(t *testing.T) {
	original := NewTargetNotFoundError("p-missing")
	got := AsAPIError(fmt.Errorf("wrapped: %w", original))
	if got != original {
		t.Errorf("ラップされたAPIErrorは元のまま取り出すべき: %v", got)
	}
}

func TestAsAPIError_FoldsUnknownErrors(t *testing.T) {
	got := AsAPIError(errors.New("connection refused"))
	if got.Code != ErrCodeAPIError {
		t.Errorf("Code = %s, want %s", got.Code, ErrCodeAPIError)
	}
	if got.Message != "connection refused" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestErrorConstructors_StableCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		code string
	}{
		{"AuthMissing", NewAuthMissingError(), ErrCodeAuthMissing},
		{"AuthInvalid", NewAuthInvalidError("r1"), ErrCodeAuthInvalid},
		{"Validation", NewValidationError("x"), ErrCodeValidation},
		{"TargetNotFound", NewTargetNotFoundError("t"), ErrCodeTargetNotFound},
		{"PublishFailed", NewPublishFailedError("x"), ErrCodePublishFailed},
		{"ResourceNotFound", NewResourceNotFoundError("/posts/x", ""), ErrCodeTargetNotFound},
		{"APITimeout", NewAPITimeoutError("/posts"), ErrCodeAPITimeout},
		{"NoFailedPlatforms", NewNoFailedPlatformsError("j1"), ErrCodeNoFailedPlatforms},
		{"NoProfilesForPlatforms", NewNoProfilesForPlatformsError([]string{"x"}), ErrCodeNoProfilesForPlatforms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Messageが空")
			}
		})
	}
}

func TestIsKnownPlatform(t *testing.T) {
	known := []string{"twitter", "x", "instagram", "facebook", "linkedin", "tiktok", "youtube", "threads", "bluesky", "mastodon", "pinterest"}
	for _, p := range known {
		if !IsKnownPlatform(p) {
			t.Errorf("IsKnownPlatform(%q) = false, want true", p)
		}
	}

	// 大文字やIDらしき文字列はプラットフォーム名として扱わない
	for _, p := range []string{"Twitter", "TWITTER", "p-abc123", ""} {
		if IsKnownPlatform(p) {
			t.Errorf("IsKnownPlatform(%q) = true, want false", p)
		}
	}
}
