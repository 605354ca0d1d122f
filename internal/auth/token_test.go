package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessToken_RoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 42, 123456} {
		tok, err := NewAccessToken(testSecret, id, "gerante", []string{"magasinier"}, 60)
		require.NoError(t, err)

		claims, err := VerifyAccess(testSecret, tok.Token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.Subject)
		assert.Equal(t, "gerante", claims.Role)
		assert.Equal(t, []string{"magasinier"}, claims.Capabilities)
		assert.NotEmpty(t, claims.TokenID)
		assert.WithinDuration(t, tok.Exp, claims.ExpiresAt, time.Second)
	}
}

func TestAccessToken_UniqueTokenIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := NewAccessToken(testSecret, 7, "salarie", nil, 60)
		require.NoError(t, err)
		claims, err := VerifyAccess(testSecret, tok.Token)
		require.NoError(t, err)
		assert.False(t, seen[claims.TokenID], "duplicate jti %s", claims.TokenID)
		seen[claims.TokenID] = true
	}
}

func TestVerifyAccess_Expired(t *testing.T) {
	// A negative TTL puts exp in the past while the signature stays valid.
	tok, err := NewAccessToken(testSecret, 9, "salarie", nil, -10)
	require.NoError(t, err)

	_, err = VerifyAccess(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyAccess_TamperedSignature(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 9, "salarie", nil, 60)
	require.NoError(t, err)

	parts := strings.Split(tok.Token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = VerifyAccess(testSecret, tampered)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestVerifyAccess_WrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 9, "salarie", nil, 60)
	require.NoError(t, err)

	_, err = VerifyAccess("another-secret", tok.Token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestVerifyAccess_Malformed(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := VerifyAccess(testSecret, raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}

func TestRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96) // 48 random bytes hex encoded
	assert.True(t, rt.Exp.After(time.Now().UTC().Add(29*24*time.Hour)))

	// Hashing is deterministic and never echoes the raw value.
	h1 := HashRefreshRaw(rt.Raw)
	h2 := HashRefreshRaw(rt.Raw)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotContains(t, rt.Raw, h1)

	other, err := NewRefreshToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, rt.Raw, other.Raw)
	assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}
