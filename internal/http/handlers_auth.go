package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
	"github.com/Shiki0138/fleeksonline/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Login handles the login initiation endpoint.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginLogin(r.Context(), redirectURI)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "begin login failed", "error", err)
		redirectWithError(w, r, "auth_failed")
		return
	}

	// Store state, nonce, and the original redirect URI in secure cookies
	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})

	// Redirect to the identity provider
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// Callback handles the post-signin landing.
// GET /auth/callback?code=<code>&state=<state> or ?error=<code>.
//
// The decision tree is fixed: a provider error forwards to the login page
// with the error code; an authorization code completes the exchange and
// lands on the post-login destination; with neither, the session cookie
// decides between dashboard and login. Exactly one redirect is issued,
// and replaying the request with unchanged cookies replays the decision.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		redirectWithError(w, r, errParam)
		return
	}

	if code := q.Get("code"); code != "" {
		h.completeCallback(w, r, code, q.Get("state"))
		return
	}

	// No error and no code: land based on current session state.
	if getSessionFromRequest(r, h.Svc) != nil {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

// completeCallback finishes the code exchange leg of the callback.
// Every failure is a redirect to the login page with auth_failed; protocol
// errors never surface as raw error pages.
func (h *AuthHandlers) completeCallback(w http.ResponseWriter, r *http.Request, code, state string) {
	stateCookie, err := r.Cookie(OAuthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		h.logger().WarnContext(r.Context(), "callback state mismatch")
		redirectWithError(w, r, "auth_failed")
		return
	}
	nonceCookie, err := r.Cookie(OAuthNonceCookie)
	if err != nil {
		h.logger().WarnContext(r.Context(), "callback nonce cookie missing")
		redirectWithError(w, r, "auth_failed")
		return
	}

	result, err := h.Svc.CompleteLogin(r.Context(), service.CompleteLoginInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "login completion failed", "error", err)
		redirectWithError(w, r, "auth_failed")
		return
	}

	writeSessionCookie(w, r, h.CookieDomain, result.Session)
	clearCookie(w, h.CookieDomain, OAuthStateCookie)
	clearCookie(w, h.CookieDomain, OAuthNonceCookie)

	http.Redirect(w, r, h.getPostLoginRedirect(w, r), http.StatusFound)
}

// Signout handles the sign-out endpoint.
// GET/POST /auth/signout.
func (h *AuthHandlers) Signout(w http.ResponseWriter, r *http.Request) {
	if sessionCookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			// Cookie is cleared regardless; a stale server-side entry
			// expires on its own TTL.
			h.logger().WarnContext(r.Context(), "signout failed", "error", logoutErr)
		}
	}

	clearCookie(w, h.CookieDomain, SessionCookieName)

	// AJAX callers get a JSON payload; regular requests redirect home.
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": "/",
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
		})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie
		clearCookie(w, h.CookieDomain, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{
			"authenticated": false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":        session.UserID,
			"full_name": session.FullName,
			"email":     session.Email,
			"role":      session.Role,
		},
		"expires_at": session.ExpiresAt,
	})
}

// redirectWithError sends the browser to the login page carrying the error
// code as a query parameter.
func redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	u := url.URL{Path: LoginPath}
	q := url.Values{}
	q.Set("error", code)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// clearCookie clears a cookie by setting it to expire immediately.
func clearCookie(w http.ResponseWriter, domain, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set OAuth cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := requestIsSecure(r)
	cd := h.CookieDomain

	http.SetCookie(w, &http.Cookie{
		Name:     OAuthStateCookie,
		Value:    p.State,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.SetCookie(w, &http.Cookie{
		Name:     OAuthNonceCookie,
		Value:    p.Nonce,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.SetCookie(w, &http.Cookie{
		Name:     PostLoginRedirectCookie,
		Value:    p.RedirectURI,
		Path:     "/",
		Domain:   cd,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
}

// writeSessionCookie writes the session cookie based on the session's expiry.
func writeSessionCookie(w http.ResponseWriter, r *http.Request, domain string, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

func requestIsSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := DashboardPath
	if redirectCookie, err := r.Cookie(PostLoginRedirectCookie); err == nil {
		// Only same-origin relative paths are honored
		redirectURI = safeRedirectPath(redirectCookie.Value)
		clearCookie(w, h.CookieDomain, PostLoginRedirectCookie)
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns the dashboard
// when invalid or empty.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return DashboardPath
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return DashboardPath
	}
	return candidate
}
