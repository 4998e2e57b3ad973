package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey is the context key for storing the validated token claims.
const ClaimsKey contextKey = "claims"

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetClaims extracts the token claims from the context.
// Returns nil if the request was not authenticated.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims
}

// GetSubject returns the authenticated subject, or an empty string.
func GetSubject(ctx context.Context) string {
	if claims := GetClaims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

// authenticate validates the Authorization header value. With required unset
// a missing header is allowed, but a malformed or invalid one never is.
func authenticate(jwtManager *auth.JWTManager, header string, required bool) (*auth.Claims, error) {
	if header == "" && !required {
		return nil, nil
	}
	tokenString, err := auth.BearerToken(header)
	if err != nil {
		return nil, err
	}
	return jwtManager.Validate(tokenString)
}

// RequireAuth returns a Connect interceptor that validates JWT tokens and
// requires authentication. The claims are added to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return authInterceptor(jwtManager, true)
}

// OptionalAuth returns a Connect interceptor that validates JWT tokens if
// present, but allows requests without an Authorization header.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return authInterceptor(jwtManager, false)
}

func authInterceptor(jwtManager *auth.JWTManager, required bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			claims, err := authenticate(jwtManager, req.Header().Get("Authorization"), required)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			if claims != nil {
				ctx = WithClaims(ctx, claims)
			}
			return next(ctx, req)
		}
	}
}

// HTTPAuth is the net/http counterpart of the Connect auth interceptors, used
// for the REST routes.
func HTTPAuth(jwtManager *auth.JWTManager, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(jwtManager, r.Header.Get("Authorization"), required)
			if err != nil {
				slog.Warn("Rejected request", "path", r.URL.Path, "error", err)
				writeJSONError(w, http.StatusUnauthorized, connect.CodeUnauthenticated, err.Error())
				return
			}
			if claims != nil {
				r = r.WithContext(WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}
