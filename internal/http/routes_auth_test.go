package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/domain/model"
	"github.com/Shiki0138/fleeksonline/internal/mocks"
	authmocks "github.com/Shiki0138/fleeksonline/internal/mocks/auth"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// testRouterDeps bundles the mocks behind a fully wired router.
type testRouterDeps struct {
	router        http.Handler
	profiles      *mocks.MockProfileRepository
	notifications *mocks.MockNotificationRepository
	store         *authmocks.MemorySessionStore
}

func newTestRouter(t *testing.T) *testRouterDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	profiles := mocks.NewMockProfileRepository(ctrl)
	notifications := mocks.NewMockNotificationRepository(ctrl)
	store := authmocks.NewMemorySessionStore()

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Sessions: store,
		Logger:   testLogger(),
	})
	roleResolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles: profiles,
		Logger:   testLogger(),
	})
	notificationSvc := service.NewNotificationService(service.NotificationServiceOptions{
		Repo:   notifications,
		Logger: testLogger(),
	})

	router := NewRouter(RouterServices{
		Auth:          authSvc,
		Roles:         roleResolver,
		Notifications: notificationSvc,
		Logger:        testLogger(),
	})

	return &testRouterDeps{
		router:        router,
		profiles:      profiles,
		notifications: notifications,
		store:         store,
	}
}

func (d *testRouterDeps) saveSession(t *testing.T, id string, role domainauth.Role) {
	t.Helper()
	err := d.store.Save(context.Background(), domainauth.Session{
		ID:        id,
		UserID:    "user-" + id,
		Email:     id + "@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	assert.NoError(t, err)
}

func adminProfileFor(userID string, role domainauth.Role) *model.Profile {
	return &model.Profile{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
	}
}

func TestRouter_AdminNotificationsGate(t *testing.T) {
	deps := newTestRouter(t)

	t.Run("unauthenticated gets 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/admin/notifications", nil)
		deps.router.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
	})

	t.Run("non-admin gets 403", func(t *testing.T) {
		deps.saveSession(t, "member", domainauth.RoleUser)
		deps.profiles.EXPECT().
			GetByUserID(gomock.Any(), "user-member").
			Return(adminProfileFor("user-member", domainauth.RoleUser), nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/admin/notifications", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "member"})
		deps.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
	})

	t.Run("admin gets the listing", func(t *testing.T) {
		deps.saveSession(t, "boss", domainauth.RoleAdmin)
		deps.profiles.EXPECT().
			GetByUserID(gomock.Any(), "user-boss").
			Return(adminProfileFor("user-boss", domainauth.RoleAdmin), nil)
		deps.notifications.EXPECT().
			ListByUser(gomock.Any(), "user-boss", gomock.Any()).
			Return([]*model.Notification{}, nil)
		deps.notifications.EXPECT().
			CountUnread(gomock.Any(), "user-boss").
			Return(0, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/admin/notifications", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "boss"})
		deps.router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"notifications":[]`)
	})
}

func TestRouter_MarkAllReadThroughGate(t *testing.T) {
	deps := newTestRouter(t)

	deps.saveSession(t, "boss", domainauth.RoleAdmin)
	deps.profiles.EXPECT().
		GetByUserID(gomock.Any(), "user-boss").
		Return(adminProfileFor("user-boss", domainauth.RoleAdmin), nil)
	deps.notifications.EXPECT().
		MarkAllRead(gomock.Any(), "user-boss").
		Return(3, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/admin/notifications/read-all", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "boss"})
	deps.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"count":3}`, w.Body.String())
}

func TestRouter_HealthEndpoint(t *testing.T) {
	deps := newTestRouter(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	deps.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_AuthStatusWithoutSession(t *testing.T) {
	deps := newTestRouter(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	deps.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}
