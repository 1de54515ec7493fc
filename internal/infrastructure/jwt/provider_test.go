package jwtinfra

import (
	"testing"
	"time"

	"github.com/go-matchmaker/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, secret string) *Provider {
	t.Helper()
	p, err := NewProvider(&config.Config{Session: config.SessionConfig{Secret: secret, TTL: time.Hour}})
	require.NoError(t, err)
	return p
}

func TestNewProvider_RequiresSecret(t *testing.T) {
	_, err := NewProvider(&config.Config{Session: config.SessionConfig{TTL: time.Hour}})
	assert.Error(t, err)
}

func TestNewProvider_RequiresTTL(t *testing.T) {
	_, err := NewProvider(&config.Config{Session: config.SessionConfig{Secret: "s"}})
	assert.Error(t, err)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, "secret")
	tok, err := p.Sign("u1")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1", claims.Subject)
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := newTestProvider(t, "one").Sign("u1")
	require.NoError(t, err)

	_, err = newTestProvider(t, "two").Verify(tok)
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t, "secret")
	p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := p.Sign("u1")
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	p := newTestProvider(t, "secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer},
	})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = p.Verify(s)
	assert.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := newTestProvider(t, "secret").Verify("not.a.token")
	assert.Error(t, err)
}
