package ports

import (
	"context"

	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
)

// IdentityUser is an account record held by the remote identity service.
type IdentityUser struct {
	ID       string
	Email    string
	FullName string
	Groups   []string
}

// IdentityAdmin exposes the privileged admin API of the identity service.
// Operations require the service-role key and must never be reachable
// from unauthenticated code paths.
type IdentityAdmin interface {
	// FindUserByEmail looks up an account by email. Returns a NotFound
	// application error when no account matches.
	FindUserByEmail(ctx context.Context, email string) (IdentityUser, error)

	// UpdatePassword sets a new password for the account.
	UpdatePassword(ctx context.Context, userID, newPassword string) error

	// VerifyPassword checks credentials without minting provider tokens.
	// Returns true only when email and password match an account.
	VerifyPassword(ctx context.Context, email, password string) (bool, error)

	// CreateUser provisions an account and returns its record.
	CreateUser(ctx context.Context, email, password, fullName string) (IdentityUser, error)
}

// SessionIssuer mints sessions outside the regular IdP flow, such as
// emergency login. Implementations persist via a SessionStore.
type SessionIssuer interface {
	IssueSession(ctx context.Context, identity domainauth.Identity, role domainauth.Role) (domainauth.Session, error)
}
