package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

// AuthKey is a custom context key type for storing a caller supplied GitHub token in context.
type AuthKey struct{}

// RequestIDKey is a custom context key type for storing the request ID in context.
type RequestIDKey struct{}

// StoreKey is a custom context key type for storing the Store in context.
type StoreKey struct{}

// PassthroughKey is a custom context key type marking requests that must
// bring their own token.
type PassthroughKey struct{}

// WithRequestID returns a new context with a generated request ID set.
func WithRequestID(ctx context.Context) context.Context {
	reqID := uuid.New().String()
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}

// WithToken returns a new context carrying the given GitHub token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, AuthKey{}, token)
}

// BearerToken returns the token of a "Bearer" Authorization header, or ""
// for a missing header or any other scheme.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthFromRequest extracts a bearer token from the Authorization header
// and stores it in the context. Used for the MCP HTTP transport.
func AuthFromRequest(ctx context.Context, r *http.Request) context.Context {
	return WithToken(ctx, BearerToken(r))
}

// WithoutStoredToken marks ctx so that only a token carried by the context
// is used and the stored token is never read on its behalf.
func WithoutStoredToken(ctx context.Context) context.Context {
	return context.WithValue(ctx, PassthroughKey{}, true)
}

// StoredTokenAllowed reports whether ctx may fall back to the stored token.
func StoredTokenAllowed(ctx context.Context) bool {
	off, _ := ctx.Value(PassthroughKey{}).(bool)
	return !off
}

// AuthFromEnv reads GITHUB_TOKEN and stores it in the context.
// Used for the MCP stdio transport.
func AuthFromEnv(ctx context.Context) context.Context {
	return WithToken(ctx, os.Getenv("GITHUB_TOKEN"))
}

// TokenFromContext retrieves the caller supplied token from the context.
// Returns an error if no non-empty token is present.
func TokenFromContext(ctx context.Context) (string, error) {
	auth, ok := ctx.Value(AuthKey{}).(string)
	if !ok || auth == "" {
		return "", fmt.Errorf("missing auth")
	}
	return auth, nil
}

// LoggerFromCtx returns a slog.Logger with request_id field if present in context.
// If no request ID is found, it returns the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	reqID, _ := ctx.Value(RequestIDKey{}).(string)
	if reqID != "" {
		return slog.Default().With("request_id", reqID)
	}
	return slog.Default()
}

// WithStore returns a new context with the provided Store set.
func WithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, StoreKey{}, store)
}

// StoreFromContext retrieves the Store from the context.
// Returns the Store interface if present, or an error if missing.
func StoreFromContext(ctx context.Context) (Store, error) {
	store, ok := ctx.Value(StoreKey{}).(Store)
	if !ok {
		return nil, fmt.Errorf("missing store")
	}
	return store, nil
}
