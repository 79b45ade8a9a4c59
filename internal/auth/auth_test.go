package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("S3cure-pass!")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("S3cure-pass!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("anything", ""))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attrs    []string
		want     error
	}{
		{"ok", "Lagune-Cotonou-88", []string{"ada@mail.bj", "ada"}, nil},
		{"too short", "abc12", nil, ErrPasswordTooShort},
		{"numeric", "1234567890123", nil, ErrPasswordNumeric},
		{"common", "Password123", nil, ErrPasswordCommon},
		{"contains email local part", "koffi2024!", []string{"koffi@mail.bj"}, ErrPasswordSimilarity},
		{"contains username", "xx-mariam-xx", []string{"", "mariam"}, ErrPasswordSimilarity},
		{"short attr ignored", "ab-strong-pass", []string{"ab"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password, tt.attrs...))
		})
	}
}

func TestTokenManager_AccessAndRefresh(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	access, err := m.GenerateAccessToken("user-1", RoleUser)
	require.NoError(t, err)

	claims, err := m.ParseToken(access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, RoleUser, claims.Role)

	// refresh нельзя использовать как access
	refresh, expiresAt, err := m.GenerateRefreshToken("user-1", RoleUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	_, err = m.ParseToken(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, _, err := m.GenerateRefreshToken("user-1", RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, refresh, other)
}

func TestTokenManager_RejectsExpiredAndForeign(t *testing.T) {
	expired := NewTokenManager("test-secret", -time.Minute, time.Hour)
	token, err := expired.GenerateAccessToken("user-1", RoleUser)
	require.NoError(t, err)

	m := NewTokenManager("test-secret", time.Minute, time.Hour)
	_, err = m.ParseToken(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := NewTokenManager("other-secret", time.Minute, time.Hour)
	token, err = foreign.GenerateAccessToken("user-1", RoleUser)
	require.NoError(t, err)
	_, err = m.ParseToken(token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseToken("not-a-jwt", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIdentityFromClaims(t *testing.T) {
	id, err := identityFromClaims(map[string]interface{}{
		"email":       " Ada@Gmail.com ",
		"given_name":  "Ada",
		"family_name": "Hounkpe",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@gmail.com", id.Email)
	assert.Equal(t, "Ada", id.GivenName)
	assert.Equal(t, "Hounkpe", id.FamilyName)

	_, err = identityFromClaims(map[string]interface{}{"given_name": "Ada"})
	assert.ErrorIs(t, err, ErrGoogleNoEmail)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermContactRead))
	assert.False(t, HasPermission(RoleUser, PermContactRead))
	assert.True(t, HasPermission(RoleUser, PermPaymentsSelf))
	assert.False(t, HasPermission("ghost", PermPaymentsSelf))
	assert.Error(t, ValidateRole("moderator"))
}
