package auth

import (
	"testing"
	"time"
)

func TestSession_IsGuest(t *testing.T) {
	s := Session{Role: RoleGuest}
	if !s.IsGuest() {
		t.Fatalf("expected guest")
	}
	if (Session{Role: RoleUser}).IsGuest() {
		t.Fatalf("did not expect guest")
	}
}

func TestRole_AtLeast(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleModerator) {
		t.Fatalf("admin should satisfy moderator")
	}
	if !RoleModerator.AtLeast(RoleUser) {
		t.Fatalf("moderator should satisfy user")
	}
	if RoleUser.AtLeast(RoleAdmin) {
		t.Fatalf("user must not satisfy admin")
	}
	if Role("superuser").AtLeast(RoleGuest) {
		t.Fatalf("unknown role must not satisfy anything")
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	if (Session{}).Expired(now) {
		t.Fatalf("zero expiry should never expire")
	}
	if (Session{ExpiresAt: now.Add(time.Minute)}).Expired(now) {
		t.Fatalf("future expiry should not be expired")
	}
	if !(Session{ExpiresAt: now.Add(-time.Minute)}).Expired(now) {
		t.Fatalf("past expiry should be expired")
	}
}
