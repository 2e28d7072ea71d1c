package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shiki0138/fleeksonline/config"
	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
	"github.com/Shiki0138/fleeksonline/internal/ports"
)

// AccountServiceOptions groups dependencies for AccountService.
type AccountServiceOptions struct {
	Identity ports.IdentityAdmin
	Sessions ports.SessionIssuer
	Roles    *RoleResolver // optional; emergency sessions fall back to admin
	Admin    config.AdminConfig
	Logger   *slog.Logger

	// Wait overrides the fixed-delay sleep in tests.
	Wait func(ctx context.Context, d time.Duration) error
}

// AccountService handles privileged account maintenance: admin-gated
// password resets and the emergency login escape hatch.
type AccountService struct {
	identity ports.IdentityAdmin
	sessions ports.SessionIssuer
	roles    *RoleResolver
	cfg      config.AdminConfig
	logger   *slog.Logger
	wait     func(ctx context.Context, d time.Duration) error
}

// NewAccountService constructs a new AccountService.
func NewAccountService(opts AccountServiceOptions) *AccountService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	wait := opts.Wait
	if wait == nil {
		wait = sleepCtx
	}
	return &AccountService{
		identity: opts.Identity,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		cfg:      opts.Admin,
		logger:   logger.With("component", "account_service"),
		wait:     wait,
	}
}

// ResetPasswordInput carries the admin password reset request.
type ResetPasswordInput struct {
	Email         string
	NewPassword   string
	AdminPassword string
}

// ResetPassword sets a new password for the account identified by email.
// The shared admin secret is checked before anything else; a mismatch
// returns unauthorized without touching the identity service.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if !secretMatches(s.cfg.Password, in.AdminPassword) {
		s.logger.WarnContext(ctx, "password reset rejected: bad admin secret")
		return apperrors.Unauthorized("invalid admin password")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.ValidationField("email", "valid email is required")
	}
	if len(in.NewPassword) < 8 {
		return apperrors.ValidationField("newPassword", "password must be at least 8 characters")
	}

	user, err := s.identity.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.identity.UpdatePassword(ctx, user.ID, in.NewPassword); err != nil {
		return fmt.Errorf("update password for %s: %w", user.ID, err)
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

// EmergencyLoginInput carries an emergency login attempt.
type EmergencyLoginInput struct {
	Email    string
	Password string
	Code     string
}

// EmergencyLoginResult is the outcome of a successful emergency login.
type EmergencyLoginResult struct {
	Session domainauth.Session
}

// EmergencyLogin authenticates outside the regular provider flow. Every
// attempt pays the configured fixed delay up front, before any secret is
// examined, so timing does not reveal which check failed. The shared code
// and optional email restriction are verified locally, then credentials
// are checked against the identity service and a session is minted.
func (s *AccountService) EmergencyLogin(ctx context.Context, in EmergencyLoginInput) (*EmergencyLoginResult, error) {
	if err := s.wait(ctx, s.cfg.EmergencyDelay); err != nil {
		return nil, err
	}

	if !s.cfg.EmergencyLoginEnabled() {
		return nil, apperrors.Unauthorized("emergency login is disabled")
	}
	if !secretMatches(s.cfg.EmergencyCode, in.Code) {
		s.logger.WarnContext(ctx, "emergency login rejected: bad code")
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if s.cfg.EmergencyEmail != "" && email != s.cfg.EmergencyEmail {
		s.logger.WarnContext(ctx, "emergency login rejected: email not allowed", "email", email)
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	ok, err := s.identity.VerifyPassword(ctx, email, in.Password)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "emergency login rejected: bad credentials", "email", email)
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	user, err := s.identity.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	// The stored profile role wins when one exists; without a profile the
	// escape hatch grants admin, since recovering admin access is its job.
	role := domainauth.RoleAdmin
	if s.roles != nil {
		resolved, resolveErr := s.roles.Resolve(ctx, user.ID)
		if resolveErr == nil && resolved != domainauth.RoleGuest {
			role = resolved
		}
	}

	identity := domainauth.Identity{
		UserID:    user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(s.cfg.SessionTTL),
	}
	session, err := s.sessions.IssueSession(ctx, identity, role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "emergency login succeeded", "user_id", user.ID, "role", string(role))
	return &EmergencyLoginResult{Session: session}, nil
}

// secretMatches compares a presented secret against the configured one.
// Configured values starting with a bcrypt prefix are treated as hashes;
// anything else is compared in constant time.
func secretMatches(configured, presented string) bool {
	if configured == "" || presented == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2a$") ||
		strings.HasPrefix(configured, "$2b$") ||
		strings.HasPrefix(configured, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
