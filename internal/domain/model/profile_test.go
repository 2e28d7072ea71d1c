package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shiki0138/fleeksonline/internal/domain/auth"
	apperrors "github.com/Shiki0138/fleeksonline/internal/errors"
)

func TestUpsertProfileRequest_Validate(t *testing.T) {
	req := UpsertProfileRequest{
		UserID:   "u-1",
		Email:    " Member@Fleeks.JP ",
		FullName: "  Taro Yamada  ",
	}
	err := req.Validate()
	assert.NoError(t, err)
	assert.Equal(t, "member@fleeks.jp", req.Email)
	assert.Equal(t, "Taro Yamada", req.FullName)
	assert.Equal(t, auth.RoleUser, req.Role)
}

func TestUpsertProfileRequest_Validate_Errors(t *testing.T) {
	err := (&UpsertProfileRequest{Email: "a@b.c"}).Validate()
	assert.ErrorContains(t, err, "user_id")
	assert.True(t, apperrors.IsValidation(err))

	err = (&UpsertProfileRequest{UserID: "u", Email: "not-an-email"}).Validate()
	assert.ErrorContains(t, err, "email")
	assert.True(t, apperrors.IsValidation(err))

	err = (&UpsertProfileRequest{UserID: "u", Email: "a@b.c", Role: "root"}).Validate()
	assert.ErrorContains(t, err, "invalid role")
	assert.True(t, apperrors.IsValidation(err))
}

func TestMembershipTier_Valid(t *testing.T) {
	assert.True(t, MembershipFree.Valid())
	assert.True(t, MembershipPremium.Valid())
	assert.False(t, MembershipTier("gold").Valid())
}
