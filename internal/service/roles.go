package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/Shiki0138/fleeksonline/internal/core"
	domainauth "github.com/Shiki0138/fleeksonline/internal/domain/auth"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

// RoleResolverOptions groups dependencies for RoleResolver.
type RoleResolverOptions struct {
	Profiles core.ProfileRepository
	Logger   *slog.Logger
}

// RoleResolver resolves the authoritative role for a user from the
// profiles table. The session carries a role snapshot from login time;
// privileged routes re-check against the stored profile so demotions
// take effect without waiting for session expiry.
type RoleResolver struct {
	profiles core.ProfileRepository
	logger   *slog.Logger
	// group collapses concurrent lookups for the same user into one
	// profile query. Results are not cached beyond the in-flight call.
	group singleflight.Group
}

// NewRoleResolver constructs a new RoleResolver.
func NewRoleResolver(opts RoleResolverOptions) *RoleResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleResolver{
		profiles: opts.Profiles,
		logger:   logger.With("component", "role_resolver"),
	}
}

// Resolve returns the stored role for userID. A missing profile resolves
// to guest without error; any other lookup failure returns guest plus
// the error so callers can distinguish "no access" from "cannot tell".
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (domainauth.Role, error) {
	if userID == "" {
		return domainauth.RoleGuest, nil
	}

	v, err, _ := r.group.Do(userID, func() (any, error) {
		return r.lookup(ctx, userID)
	})
	if err != nil {
		return domainauth.RoleGuest, err
	}
	role, ok := v.(domainauth.Role)
	if !ok {
		return domainauth.RoleGuest, nil
	}
	return role, nil
}

func (r *RoleResolver) lookup(ctx context.Context, userID string) (domainauth.Role, error) {
	profile, err := r.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return domainauth.RoleGuest, nil
		}
		return domainauth.RoleGuest, fmt.Errorf("resolve role for %s: %w", userID, err)
	}

	if !profile.Role.Valid() {
		r.logger.WarnContext(ctx, "profile has unknown role",
			"user_id", userID, "role", string(profile.Role))
		return domainauth.RoleGuest, nil
	}
	return profile.Role, nil
}

// IsAdmin reports whether the stored profile for userID grants admin.
// Any resolution failure counts as not-admin.
func (r *RoleResolver) IsAdmin(ctx context.Context, userID string) bool {
	role, err := r.Resolve(ctx, userID)
	if err != nil {
		r.logger.WarnContext(ctx, "role resolution failed", "user_id", userID, "err", err)
		return false
	}
	return role == domainauth.RoleAdmin
}
