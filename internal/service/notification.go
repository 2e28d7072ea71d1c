package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/Shiki0138/fleeksonline/internal/core"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Repo      core.NotificationRepository
	Evaluator JMESPathEvaluator
	Logger    *slog.Logger
}

// NotificationService encapsulates business logic for member notifications.
type NotificationService struct {
	repo   core.NotificationRepository
	jems   JMESPathEvaluator
	logger *slog.Logger
}

// NewNotificationService constructs a new NotificationService.
func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   opts.Repo,
		jems:   jems,
		logger: logger.With("component", "notification_service"),
	}
}

// Create validates and stores a notification.
func (s *NotificationService) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

// ListResult is the outcome of a notifications listing.
type ListResult struct {
	Notifications []*model.Notification
	Unread        int
}

// List returns notifications for a user, newest first. When opts carries a
// PayloadFilter, each notification's payload is matched against the JMESPath
// expression and only truthy results are kept; the filter runs after the
// database page is fetched, so a filtered page may be shorter than the limit.
func (s *NotificationService) List(ctx context.Context, userID string, opts *model.NotificationsListOptions) (*ListResult, error) {
	if userID == "" {
		return nil, apperrors.Validation("user id is required")
	}
	if opts == nil {
		opts = &model.NotificationsListOptions{}
	}
	opts.Normalize()

	if opts.PayloadFilter != "" {
		if err := s.jems.Validate(opts.PayloadFilter); err != nil {
			return nil, apperrors.ValidationField("filter", fmt.Sprintf("invalid filter expression: %v", err))
		}
	}

	items, err := s.repo.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	if opts.PayloadFilter != "" {
		items = s.filterByPayload(ctx, items, opts.PayloadFilter)
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Notifications: items, Unread: unread}, nil
}

// MarkAllRead marks every unread notification for userID as read and
// returns the number of rows updated. Calling it with nothing unread is
// not an error.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperrors.Validation("user id is required")
	}
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "notifications marked read", "user_id", userID, "count", count)
	}
	return count, nil
}

// Delete removes a notification by id.
func (s *NotificationService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// filterByPayload keeps notifications whose payload matches the expression.
// A payload that fails to decode or evaluate is dropped rather than failing
// the whole page.
func (s *NotificationService) filterByPayload(ctx context.Context, items []*model.Notification, expr string) []*model.Notification {
	kept := make([]*model.Notification, 0, len(items))
	for _, n := range items {
		var payload any
		if len(n.Payload) > 0 {
			if err := json.Unmarshal(n.Payload, &payload); err != nil {
				s.logger.WarnContext(ctx, "notification payload is not valid JSON",
					"notification_id", n.ID, "err", err)
				continue
			}
		}
		result, err := s.jems.Evaluate(expr, payload)
		if err != nil {
			s.logger.WarnContext(ctx, "filter evaluation failed",
				"notification_id", n.ID, "err", err)
			continue
		}
		if truthy(result) {
			kept = append(kept, n)
		}
	}
	return kept
}

// truthy mirrors JMESPath truthiness: false, null, empty string, empty
// collection are all false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
