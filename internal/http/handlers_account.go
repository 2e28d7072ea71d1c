package httpx

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// AccountServiceInterface defines what the account handlers need.
type AccountServiceInterface interface {
	ResetPassword(ctx context.Context, in service.ResetPasswordInput) error
	EmergencyLogin(ctx context.Context, in service.EmergencyLoginInput) (*service.EmergencyLoginResult, error)
}

// AccountHandlers serves password reset and emergency login.
type AccountHandlers struct {
	Svc          AccountServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

type resetPasswordRequest struct {
	Email         string `json:"email"`
	NewPassword   string `json:"newPassword"`
	AdminPassword string `json:"adminPassword"`
}

// ResetPassword handles POST /api/admin/reset-user-password. The admin gate
// runs first; the admin shared secret in the body is verified again by the
// service before any account lookup.
func (h *AccountHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.Svc.ResetPassword(r.Context(), service.ResetPasswordInput{
		Email:         req.Email,
		NewPassword:   req.NewPassword,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		switch status := statusForError(err); status {
		case http.StatusUnauthorized:
			WriteError(w, ErrorParams{Code: status, ErrCode: "unauthorized", Err: err})
		case http.StatusBadRequest:
			WriteError(w, ErrorParams{Code: status, ErrCode: "validation_failed", Err: err})
		case http.StatusNotFound:
			WriteError(w, ErrorParams{Code: status, ErrCode: "user_not_found", Err: err})
		default:
			h.Logger.ErrorContext(r.Context(), "password reset", "err", err)
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "reset_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "password updated",
	})
}

type emergencyLoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	EmergencyCode string `json:"emergencyCode"`
}

// EmergencyLogin handles POST /api/auth/emergency-login. The route is rate
// limited per client IP; the service applies its fixed delay before any
// credential is examined.
func (h *AccountHandlers) EmergencyLogin(w http.ResponseWriter, r *http.Request) {
	var req emergencyLoginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.Svc.EmergencyLogin(r.Context(), service.EmergencyLoginInput{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.EmergencyCode,
	})
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unauthorized", Err: err})
			return
		}
		h.Logger.ErrorContext(r.Context(), "emergency login", "err", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "login_failed", Err: err})
		return
	}

	writeSessionCookie(w, r, h.CookieDomain, result.Session)
	WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": map[string]any{
			"id":        result.Session.UserID,
			"email":     result.Session.Email,
			"full_name": result.Session.FullName,
			"role":      result.Session.Role,
		},
	})
}
