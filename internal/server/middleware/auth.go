// Package middleware provides HTTP middleware for authenticating recruiters.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const actorIDKey ContextKey = "actorID"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (ActorIDGetter, error)
}

// ActorIDGetter exposes the recruiter a token was issued to.
type ActorIDGetter interface {
	GetActorID() string
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token's actor id in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			actorID := claims.GetActorID()
			if actorID == "" {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), actorID)))
		})
	}
}

// bearerToken parses "Bearer <token>", accepting any case for the scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="recruit-desk"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}` + "\n"))
}

// WithActorID returns a context carrying actorID.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey, actorID)
}

// GetActorID extracts the authenticated actor id from the request context.
func GetActorID(r *http.Request) (string, error) {
	actorID, ok := r.Context().Value(actorIDKey).(string)
	if !ok || actorID == "" {
		return "", fmt.Errorf("actor ID not found in request context")
	}
	return actorID, nil
}
