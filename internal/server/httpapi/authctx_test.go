package httpapi

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSignKey = []byte("test-key")

func signToken(t *testing.T, subject string, key []byte) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestParseBearer_OK(t *testing.T) {
	t.Parallel()
	tok := signToken(t, "alice", testSignKey)

	uid, err := parseBearer("Bearer "+tok, testSignKey)
	require.NoError(t, err)
	require.Equal(t, "alice", uid)
}

func TestParseBearer_Rejects(t *testing.T) {
	t.Parallel()

	_, err := parseBearer("", testSignKey)
	require.Error(t, err)

	_, err = parseBearer("Basic abc", testSignKey)
	require.Error(t, err)

	// Wrong key.
	tok := signToken(t, "alice", []byte("other-key"))
	_, err = parseBearer("Bearer "+tok, testSignKey)
	require.Error(t, err)

	// Expired token.
	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	expired, serr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSignKey)
	require.NoError(t, serr)
	_, err = parseBearer("Bearer "+expired, testSignKey)
	require.Error(t, err)
}

func TestUserIDFromCtx_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithUserID(t.Context(), "alice")
	uid, ok := UserIDFromCtx(ctx)
	require.True(t, ok)
	require.Equal(t, "alice", uid)

	_, ok = UserIDFromCtx(t.Context())
	require.False(t, ok)
}
