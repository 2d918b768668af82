// Package auth verifies Bearer tokens issued by the identity provider and
// exposes the resulting identity to handlers through the request context.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller extracted from token claims.
type Identity struct {
	Subject string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Claims defines the information the identity provider stores in the JWT.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type contextKey struct{}

// Verifier checks token signatures against the provider's shared secret.
type Verifier struct {
	secret []byte
	logger *slog.Logger
}

// NewVerifier creates a Verifier for HMAC-signed tokens.
func NewVerifier(secret string, logger *slog.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), logger: logger}
}

// Middleware rejects requests without a valid Bearer token. All failure
// modes — missing header, bad signature, expired token — get the same 401
// body so nothing about token state leaks.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			v.reject(w, r, "missing bearer token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
		if err != nil || !token.Valid || claims.Subject == "" {
			v.reject(w, r, "invalid bearer token")
			return
		}

		identity := Identity{
			Subject: claims.Subject,
			Email:   claims.Email,
			Name:    claims.Name,
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (v *Verifier) reject(w http.ResponseWriter, r *http.Request, reason string) {
	v.logger.WarnContext(r.Context(), "unauthorized request",
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// WithIdentity stores the identity in a context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the identity stored by Middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
