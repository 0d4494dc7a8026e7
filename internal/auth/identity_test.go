package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, expires time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(expires).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func callerSeenBy(identity *Identity, req *http.Request) (string, int) {
	var caller string
	w := httptest.NewRecorder()
	identity.Extract(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = Caller(r.Context())
	})).ServeHTTP(w, req)
	return caller, w.Code
}

func TestRemoteUserHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Remote-User", "alice")

	caller, code := callerSeenBy(NewIdentity(""), req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", caller)
}

func TestAnonymousRequestPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	caller, code := callerSeenBy(NewIdentity(testSecret), req)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, caller)
}

func TestBearerTokenSubjectWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Remote-User", "header-user")
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "token-user", time.Hour))

	caller, code := callerSeenBy(NewIdentity(testSecret), req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "token-user", caller)
}

func TestInvalidTokenRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "alice", time.Hour))

	_, code := callerSeenBy(NewIdentity(testSecret), req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestExpiredTokenRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "alice", -time.Hour))

	_, code := callerSeenBy(NewIdentity(testSecret), req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMalformedAuthorizationHeaderRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, code := callerSeenBy(NewIdentity(testSecret), req)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestTokenIgnoredWithoutSecret(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Remote-User", "alice")
	req.Header.Set("Authorization", "Bearer garbage")

	caller, code := callerSeenBy(NewIdentity(""), req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", caller)
}
