package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "resource not found",
			},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to process",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		check    func(error) bool
	}{
		{"not found", NotFound("missing"), ErrCodeNotFound, IsNotFound},
		{"conflict", Conflict("dup"), ErrCodeConflict, IsConflict},
		{"validation", Validation("bad"), ErrCodeValidation, IsValidation},
		{"unauthorized", Unauthorized("no session"), ErrCodeUnauthorized, IsUnauthorized},
		{"forbidden", Forbidden("admin only"), ErrCodeForbidden, IsForbidden},
		{"foreign key", ForeignKey("in use"), ErrCodeForeignKey, IsForeignKey},
		{"internal", Internal("boom"), ErrCodeInternal, IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if !tt.check(tt.err) {
				t.Errorf("predicate for %v rejected its own constructor", tt.wantCode)
			}
		})
	}
}

func TestFormattedConstructors(t *testing.T) {
	if got := NotFoundf("profile %s not found", "u-1").Message; got != "profile u-1 not found" {
		t.Errorf("NotFoundf message = %q", got)
	}
	if got := Validationf("limit %d out of range", 500).Message; got != "limit 500 out of range" {
		t.Errorf("Validationf message = %q", got)
	}
	if got := Internalf("stage %q failed", "exchange").Message; got != `stage "exchange" failed` {
		t.Errorf("Internalf message = %q", got)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "invalid email")
	if err.Field != "email" {
		t.Errorf("Field = %q, want email", err.Field)
	}
	if GetField(err) != "email" {
		t.Errorf("GetField = %q, want email", GetField(err))
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "ignored") != nil {
		t.Fatal("Wrap(nil) should be nil")
	}

	cause := errors.New("redis: connection refused")
	err := Wrap(cause, ErrCodeInternal, "session lookup failed")
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !IsInternal(err) {
		t.Errorf("wrapped code = %v, want internal", GetCode(err))
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, ErrCodeInternal, "ignored %d", 1) != nil {
		t.Fatal("Wrapf(nil) should be nil")
	}
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeTimeout, "op %s timed out", "get")
	if err.Message != "op get timed out" {
		t.Errorf("Wrapf message = %q", err.Message)
	}
	if !IsTimeout(err) {
		t.Errorf("Wrapf code = %v, want timeout", GetCode(err))
	}
}

func TestGetCode_ThroughWrapping(t *testing.T) {
	inner := Forbidden("admin role required")
	outer := fmt.Errorf("authorize: %w", inner)

	if GetCode(outer) != ErrCodeForbidden {
		t.Errorf("GetCode through fmt wrapping = %v, want forbidden", GetCode(outer))
	}
	if !IsForbidden(outer) {
		t.Error("IsForbidden should see through fmt wrapping")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode on plain error should be empty")
	}
}
