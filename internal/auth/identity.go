package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const callerKey = contextKey("caller")

// Identity resolves the caller behind a request. With a JWT secret
// configured, a bearer token's subject claim names the caller; otherwise
// the X-Remote-User header is trusted. Requests without either stay
// anonymous rather than being rejected, since anonymous reads of the
// default domain are allowed.
type Identity struct {
	secret []byte
}

// NewIdentity creates the identity middleware. An empty secret disables
// token verification.
func NewIdentity(secret string) *Identity {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Identity{secret: key}
}

// Extract is the middleware that places the caller name, if any, into the
// request context. A present but invalid bearer token is rejected.
func (m *Identity) Extract(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := r.Header.Get("X-Remote-User")

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && m.secret != nil {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}
			subject, err := m.verify(parts[1])
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			caller = subject
		}

		if caller != "" {
			r = r.WithContext(context.WithValue(r.Context(), callerKey, caller))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Identity) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// Caller returns the authenticated caller name, or empty for anonymous
// requests.
func Caller(ctx context.Context) string {
	if caller, ok := ctx.Value(callerKey).(string); ok {
		return caller
	}
	return ""
}
