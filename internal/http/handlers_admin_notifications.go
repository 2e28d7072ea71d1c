package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// NotificationServiceInterface defines what the notification handlers need.
type NotificationServiceInterface interface {
	List(ctx context.Context, userID string, opts *model.NotificationsListOptions) (*service.ListResult, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// NotificationHandlers serves the admin notification endpoints. The admin
// gate runs before these handlers, so a session is always present in the
// request context.
type NotificationHandlers struct {
	Svc    NotificationServiceInterface
	Logger *slog.Logger
}

type notificationsListResponse struct {
	Notifications []*model.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// List handles GET /api/admin/notifications.
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	limit, offset := ParseLimitOffset(r, DefaultNotificationsLimit, MaxNotificationsLimit)
	opts := &model.NotificationsListOptions{
		Limit:         limit,
		Offset:        offset,
		UnreadOnly:    r.URL.Query().Get("unread") == "true",
		PayloadFilter: r.URL.Query().Get("filter"),
	}

	result, err := h.Svc.List(r.Context(), sess.UserID, opts)
	if err != nil {
		if apperrors.IsValidation(err) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
			return
		}
		h.Logger.ErrorContext(r.Context(), "list notifications", "user_id", sess.UserID, "err", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	resp := notificationsListResponse{
		Notifications: result.Notifications,
		Unread:        result.Unread,
	}
	if resp.Notifications == nil {
		resp.Notifications = []*model.Notification{}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// MarkAllRead handles POST /api/admin/notifications/read-all.
func (h *NotificationHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	count, err := h.Svc.MarkAllRead(r.Context(), sess.UserID)
	if err != nil {
		if apperrors.IsValidation(err) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
			return
		}
		h.Logger.ErrorContext(r.Context(), "mark notifications read", "user_id", sess.UserID, "err", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "update_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "count": count})
}
