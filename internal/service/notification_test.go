package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
	repomocks "github.com/Shiki0138/fleeksonline/internal/mocks"
)

func notif(id, title string, payload string) *model.Notification {
	return &model.Notification{
		ID:      id,
		UserID:  "user-1",
		Title:   title,
		Payload: json.RawMessage(payload),
	}
}

func TestNotificationService_List_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().
		ListByUser(gomock.Any(), "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, opts *model.NotificationsListOptions) ([]*model.Notification, error) {
			assert.Equal(t, 20, opts.Limit) // default applied
			return []*model.Notification{
				notif("n-1", "newest", `{}`),
				notif("n-2", "older", `{}`),
			}, nil
		})
	repo.EXPECT().CountUnread(gomock.Any(), "user-1").Return(2, nil)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	result, err := svc.List(context.Background(), "user-1", nil)

	require.NoError(t, err)
	require.Len(t, result.Notifications, 2)
	assert.Equal(t, "n-1", result.Notifications[0].ID)
	assert.Equal(t, 2, result.Unread)
}

func TestNotificationService_List_CapsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().
		ListByUser(gomock.Any(), "user-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, opts *model.NotificationsListOptions) ([]*model.Notification, error) {
			assert.Equal(t, 100, opts.Limit)
			return nil, nil
		})
	repo.EXPECT().CountUnread(gomock.Any(), "user-1").Return(0, nil)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	result, err := svc.List(context.Background(), "user-1", &model.NotificationsListOptions{Limit: 5000})

	require.NoError(t, err)
	assert.Empty(t, result.Notifications)
}

func TestNotificationService_List_EmptyUserID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	_, err := svc.List(context.Background(), "", nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestNotificationService_List_PayloadFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().
		ListByUser(gomock.Any(), "user-1", gomock.Any()).
		Return([]*model.Notification{
			notif("n-1", "video", `{"kind":"video","level":"info"}`),
			notif("n-2", "billing", `{"kind":"billing","level":"urgent"}`),
			notif("n-3", "broken", `not-json`),
		}, nil)
	repo.EXPECT().CountUnread(gomock.Any(), "user-1").Return(0, nil)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	result, err := svc.List(context.Background(), "user-1", &model.NotificationsListOptions{
		PayloadFilter: "kind == 'billing'",
	})

	require.NoError(t, err)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, "n-2", result.Notifications[0].ID)
}

func TestNotificationService_List_InvalidFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Repository is never consulted when the expression cannot compile.
	repo := repomocks.NewMockNotificationRepository(ctrl)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	_, err := svc.List(context.Background(), "user-1", &model.NotificationsListOptions{
		PayloadFilter: "][ not jmespath",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "filter", apperrors.GetField(err))
}

func TestNotificationService_List_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().
		ListByUser(gomock.Any(), "user-1", gomock.Any()).
		Return(nil, errors.New("connection refused"))

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	_, err := svc.List(context.Background(), "user-1", nil)

	require.Error(t, err)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkAllRead(gomock.Any(), "user-1").Return(3, nil)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	count, err := svc.MarkAllRead(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNotificationService_MarkAllRead_NothingUnread(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)
	repo.EXPECT().MarkAllRead(gomock.Any(), "user-1").Return(0, nil)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	count, err := svc.MarkAllRead(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationService_MarkAllRead_EmptyUserID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	_, err := svc.MarkAllRead(context.Background(), "")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestNotificationService_Create_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := repomocks.NewMockNotificationRepository(ctrl)

	svc := NewNotificationService(NotificationServiceOptions{Repo: repo})

	_, err := svc.Create(context.Background(), &model.CreateNotificationRequest{
		UserID: "user-1",
		Title:  "",
	})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"empty slice", []any{}, false},
		{"slice", []any{1}, true},
		{"empty map", map[string]any{}, false},
		{"map", map[string]any{"k": 1}, true},
		{"number", float64(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truthy(tt.in))
		})
	}
}
