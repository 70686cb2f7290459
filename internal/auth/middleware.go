package auth

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// ContextWithUser stores the authenticated user in the context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil when the request
// carried no valid token.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(contextKey{}).(*User)
	return user
}

// Middleware decodes the bearer token and attaches the user to the request
// context. Requests without a valid token proceed with a nil user; identity
// only feeds audit events, it does not gate routes here.
func Middleware(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := FromAuthorizationHeader(r.Header.Get("Authorization"))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := verifier.Parse(token)
			if err != nil {
				logger.Warn("invalid bearer token", slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}
