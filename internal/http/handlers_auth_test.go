package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// mockAuthService is a test double for service.AuthService.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	getSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc        func(ctx context.Context, sessionID string) error

	completeCalls int
}

func (m *mockAuthService) BeginLogin(
	ctx context.Context,
	redirectURL string,
) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://example.com/auth?state=test-state&nonce=test-nonce",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(
	ctx context.Context,
	input service.CompleteLoginInput,
) (*service.CompleteLoginResult, error) {
	m.completeCalls++
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return &service.CompleteLoginResult{
		Session: domainauth.Session{
			ID:        "test-session-id",
			UserID:    "test-user",
			Email:     "test@example.com",
			Role:      domainauth.RoleUser,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}, nil
}

func (m *mockAuthService) GetSession(
	ctx context.Context,
	sessionID string,
) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	return &domainauth.Session{
		ID:        sessionID,
		UserID:    "test-user",
		Email:     "test@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	resp := w.Result()
	defer resp.Body.Close()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestAuthHandlers_Login_Success(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w := httptest.NewRecorder()

	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Len(t, resp.Cookies(), 3) // oauth_state, oauth_nonce, post_login_redirect

	assert.Contains(t, w.Header().Get("Location"), "https://example.com/auth")
}

func TestAuthHandlers_Login_WithRedirectURI(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/settings", nil)
	w := httptest.NewRecorder()

	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	redirectCookie := findCookie(t, w, PostLoginRedirectCookie)
	require.NotNil(t, redirectCookie)
	assert.Equal(t, "/settings", redirectCookie.Value)
}

func TestAuthHandlers_Login_InvalidRedirectURI(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=https://evil.example", nil)
	w := httptest.NewRecorder()

	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	redirectCookie := findCookie(t, w, PostLoginRedirectCookie)
	require.NotNil(t, redirectCookie)
	assert.Equal(t, DashboardPath, redirectCookie.Value)
}

func TestAuthHandlers_Login_BeginFails(t *testing.T) {
	mockSvc := &mockAuthService{
		beginLoginFunc: func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
			return nil, errors.New("provider unreachable")
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	w := httptest.NewRecorder()

	handlers.Login(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath+"?error=auth_failed", w.Header().Get("Location"))
}

func TestAuthHandlers_Callback_Success(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(
		http.MethodGet,
		"/auth/callback?code=test-code&state=test-state",
		nil,
	)
	req.AddCookie(&http.Cookie{Name: OAuthStateCookie, Value: "test-state"})
	req.AddCookie(&http.Cookie{Name: OAuthNonceCookie, Value: "test-nonce"})
	req.AddCookie(&http.Cookie{Name: PostLoginRedirectCookie, Value: "/dashboard"})

	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))

	sessionCookie := findCookie(t, w, SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.Equal(t, "test-session-id", sessionCookie.Value)
}

func TestAuthHandlers_Callback_ProviderError(t *testing.T) {
	// A provider error forwards to the login page with the error code,
	// and no exchange is attempted even when a code is also present.
	mockSvc := &mockAuthService{}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(
		http.MethodGet,
		"/auth/callback?error=access_denied&code=test-code",
		nil,
	)
	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath+"?error=access_denied", w.Header().Get("Location"))
	assert.Zero(t, mockSvc.completeCalls)
}

func TestAuthHandlers_Callback_NoParams_WithSession(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "existing-session"})
	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))
}

func TestAuthHandlers_Callback_NoParams_NoSession(t *testing.T) {
	mockSvc := &mockAuthService{
		getSessionFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return nil, errors.New("session not found")
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath, w.Header().Get("Location"))
}

func TestAuthHandlers_Callback_Idempotent(t *testing.T) {
	// Replaying the same request with unchanged cookies replays the decision.
	mockSvc := &mockAuthService{}
	handlers := &AuthHandlers{Svc: mockSvc}

	for range 2 {
		req := httptest.NewRequest(
			http.MethodGet,
			"/auth/callback?code=test-code&state=test-state",
			nil,
		)
		req.AddCookie(&http.Cookie{Name: OAuthStateCookie, Value: "test-state"})
		req.AddCookie(&http.Cookie{Name: OAuthNonceCookie, Value: "test-nonce"})

		w := httptest.NewRecorder()
		handlers.Callback(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, DashboardPath, w.Header().Get("Location"))
	}
	assert.Equal(t, 2, mockSvc.completeCalls)
}

func TestAuthHandlers_Callback_InvalidState(t *testing.T) {
	mockSvc := &mockAuthService{}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(
		http.MethodGet,
		"/auth/callback?code=test-code&state=wrong-state",
		nil,
	)
	req.AddCookie(&http.Cookie{Name: OAuthStateCookie, Value: "test-state"})

	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath+"?error=auth_failed", w.Header().Get("Location"))
	assert.Zero(t, mockSvc.completeCalls)
}

func TestAuthHandlers_Callback_ExchangeFails(t *testing.T) {
	mockSvc := &mockAuthService{
		completeLoginFunc: func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
			return nil, errors.New("token exchange failed")
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(
		http.MethodGet,
		"/auth/callback?code=test-code&state=test-state",
		nil,
	)
	req.AddCookie(&http.Cookie{Name: OAuthStateCookie, Value: "test-state"})
	req.AddCookie(&http.Cookie{Name: OAuthNonceCookie, Value: "test-nonce"})

	w := httptest.NewRecorder()

	handlers.Callback(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LoginPath+"?error=auth_failed", w.Header().Get("Location"))
}

func TestAuthHandlers_Signout_Success(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "test-session-id"})

	w := httptest.NewRecorder()

	handlers.Signout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	sessionCookie := findCookie(t, w, SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.Empty(t, sessionCookie.Value)
	assert.Equal(t, -1, sessionCookie.MaxAge)
}

func TestAuthHandlers_Signout_AJAX(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "test-session-id"})

	w := httptest.NewRecorder()

	handlers.Signout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
	assert.Contains(t, w.Body.String(), `"redirect_to":"/"`)
}

func TestAuthHandlers_Signout_LogoutErrorStillClearsCookie(t *testing.T) {
	mockSvc := &mockAuthService{
		logoutFunc: func(ctx context.Context, sessionID string) error {
			return errors.New("redis down")
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "test-session-id"})

	w := httptest.NewRecorder()

	handlers.Signout(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	sessionCookie := findCookie(t, w, SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.Equal(t, -1, sessionCookie.MaxAge)
}

func TestAuthHandlers_Status_Authenticated(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "test-session-id"})

	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), `"test@example.com"`)
}

func TestAuthHandlers_Status_NotAuthenticated(t *testing.T) {
	mockSvc := &mockAuthService{
		getSessionFunc: func(ctx context.Context, sessionID string) (*domainauth.Session, error) {
			return nil, errors.New("session not found")
		},
	}
	handlers := &AuthHandlers{Svc: mockSvc}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-session"})

	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	// Invalid session cookies are cleared on status checks.
	sessionCookie := findCookie(t, w, SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.Equal(t, -1, sessionCookie.MaxAge)
}

func TestAuthHandlers_Status_NoSession(t *testing.T) {
	handlers := &AuthHandlers{Svc: &mockAuthService{}}

	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	w := httptest.NewRecorder()

	handlers.Status(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestSafeRedirectPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", DashboardPath},
		{"/settings", "/settings"},
		{"/dashboard?tab=alerts", "/dashboard?tab=alerts"},
		{"https://evil.example/steal", DashboardPath},
		{"//evil.example", DashboardPath},
		{"relative/path", DashboardPath},
		{"://invalid", DashboardPath},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, safeRedirectPath(tc.in), "input %q", tc.in)
	}
}
