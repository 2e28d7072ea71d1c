//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

const (
	maxNotificationTitleLen = 255

	// DefaultNotificationLimit bounds list queries when no limit is given.
	DefaultNotificationLimit = 20
	// MaxNotificationLimit is the hard ceiling for a single page.
	MaxNotificationLimit = 100
)

// Notification represents a per-user notification row. Payload carries
// arbitrary structured context as JSONB.
type Notification struct {
	ID        string          `json:"id"                    db:"id"`
	UserID    string          `json:"user_id"               db:"user_id"`
	Title     string          `json:"title"                 db:"title"`
	Payload   json.RawMessage `json:"payload,omitempty"     db:"payload"`
	IsRead    bool            `json:"is_read"               db:"is_read"`
	CreatedAt time.Time       `json:"created_at"            db:"created_at"`
	ReadAt    *time.Time      `json:"read_at,omitempty"     db:"read_at"`
}

// CreateNotificationRequest represents parameters to create a Notification.
type CreateNotificationRequest struct {
	UserID  string          `json:"user_id"`
	Title   string          `json:"title"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate validates CreateNotificationRequest.
func (r *CreateNotificationRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return apperrors.ValidationField("user_id", "user_id is required")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return apperrors.ValidationField("title", "title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxNotificationTitleLen {
		return apperrors.ValidationField("title", "title cannot exceed 255 characters")
	}
	r.Title = title
	if len(r.Payload) > 0 && !json.Valid(r.Payload) {
		return apperrors.ValidationField("payload", "payload must be valid JSON")
	}
	return nil
}

// NotificationsListOptions controls paging and filtering for listing
// notifications. Results are always newest first.
type NotificationsListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
	// PayloadFilter is an optional JMESPath expression evaluated against
	// each notification payload; rows whose result is falsy are dropped.
	PayloadFilter string
}

// Normalize clamps paging values to safe bounds.
func (o *NotificationsListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = DefaultNotificationLimit
	}
	if o.Limit > MaxNotificationLimit {
		o.Limit = MaxNotificationLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	o.PayloadFilter = strings.TrimSpace(o.PayloadFilter)
}
