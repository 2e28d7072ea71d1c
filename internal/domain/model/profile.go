//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Shiki0138/fleeksonline/internal/domain/auth"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

const maxFullNameLen = 255

// MembershipTier represents the paid tier of a member profile.
type MembershipTier string

const (
	MembershipFree    MembershipTier = "free"
	MembershipPremium MembershipTier = "premium"
)

// Valid reports whether the membership tier is supported.
func (m MembershipTier) Valid() bool {
	switch m {
	case MembershipFree, MembershipPremium:
		return true
	default:
		return false
	}
}

// String returns the string representation of the membership tier.
func (m MembershipTier) String() string {
	return string(m)
}

// Profile represents a member profile row. Role is the authorization
// source of truth for privileged routes.
type Profile struct {
	UserID     string         `json:"user_id"             db:"user_id"`
	Email      string         `json:"email"               db:"email"`
	FullName   string         `json:"full_name"           db:"full_name"`
	Role       auth.Role      `json:"role"                db:"role"`
	Membership MembershipTier `json:"membership"          db:"membership"`
	CreatedAt  time.Time      `json:"created_at"          db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"          db:"updated_at"`
}

// UpsertProfileRequest represents parameters to create or refresh a Profile
// at sign-in time. Role is only applied to newly created rows; existing
// rows keep their stored role.
type UpsertProfileRequest struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     auth.Role `json:"role"`
}

// Validate validates UpsertProfileRequest.
func (r *UpsertProfileRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return apperrors.ValidationField("user_id", "user_id is required")
	}
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if email == "" {
		return apperrors.ValidationField("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return apperrors.ValidationField("email", "email must contain @")
	}
	r.Email = email
	r.FullName = strings.TrimSpace(r.FullName)
	if utf8.RuneCountInString(r.FullName) > maxFullNameLen {
		return apperrors.ValidationField("full_name", "full_name cannot exceed 255 characters")
	}
	if r.Role == "" {
		r.Role = auth.RoleUser
	}
	if !r.Role.Valid() {
		return apperrors.ValidationField("role", "invalid role")
	}
	return nil
}
