package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, email := range []string{"a@x.com", "b.user+tag@example.org"} {
		token, err := m.Issue(Identity{Email: email})
		require.NoError(t, err)

		got, err := m.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, Identity{Email: email}, got)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager("test-secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(Identity{Email: "a@x.com"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).Issue(Identity{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := NewManager("s", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	// tokens minted by the previous deployment carried only the email
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@x.com"}).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewManager("s", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
