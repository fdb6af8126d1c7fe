package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := NewTokenManager([]byte("secret"), 2*time.Hour, "club-app")

	token, err := m.Issue(7, "ana@club.org", []string{"socio", "profesor"})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "ana@club.org", claims.Email)
	assert.Equal(t, []string{"socio", "profesor"}, claims.Roles)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager([]byte("secret"), time.Hour, "club-app")
	m.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	token, err := m.Issue(7, "ana@club.org", nil)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager([]byte("secret"), time.Hour, "club-app")
	token, err := issuer.Issue(7, "ana@club.org", nil)
	require.NoError(t, err)

	other := NewTokenManager([]byte("other"), time.Hour, "club-app")
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager([]byte("secret"), time.Hour, "club-app")
	claims := Claims{ID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsTokenWithoutExpiry(t *testing.T) {
	m := NewTokenManager([]byte("secret"), time.Hour, "club-app")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
