package httpx

// Cookie names shared between handlers and middleware.
const (
	// SessionCookieName carries the server-side session id.
	SessionCookieName = "session_id"

	// OAuthStateCookie and OAuthNonceCookie live for one login round trip.
	OAuthStateCookie = "oauth_state"
	OAuthNonceCookie = "oauth_nonce"

	// PostLoginRedirectCookie remembers where to land after the callback.
	PostLoginRedirectCookie = "post_login_redirect"
)

// Redirect targets of the auth flow.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Notification listing bounds.
const (
	DefaultNotificationsLimit = 20
	MaxNotificationsLimit     = 100
)
