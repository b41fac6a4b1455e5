package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

type contextKey string

// callerKey carries the verified external identity (the token's subject)
// through the request context.
const callerKey contextKey = "caller"

// authenticate verifies the bearer token and stores its subject in the
// request context. The core never learns how the identity was verified; it
// only ever receives the opaque subject.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.authSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// caller returns the verified external identity from the request context.
func caller(r *http.Request) string {
	v, _ := r.Context().Value(callerKey).(string)
	return v
}

// requireUser resolves the caller to a registered user. A valid token
// without an account gets 401: signup (POST /api/users) must happen first.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*flowforge.User, bool) {
	u, err := s.users.GetByExternalID(r.Context(), caller(r))
	if err != nil {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return nil, false
	}
	return u, true
}
