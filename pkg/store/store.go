package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-training/gh-notifier/pkg/core"
)

const (
	// Slot names shared by every backend.
	accessTokenKey = "access_token"
	oauthStateKey  = "oauth_state"
)

// ErrEmptyKey is returned when a backend is asked for an unnamed slot.
var ErrEmptyKey = errors.New("slot key cannot be empty")

// backend is the string slot storage a concrete store provides.
// A missing slot reads as "" with a nil error.
type backend interface {
	get(ctx context.Context, key string) (string, error)
	set(ctx context.Context, key, value string) error
	del(ctx context.Context, key string) error
}

// slots maps the core.Store operations onto a backend.
type slots struct {
	b backend
}

// GetAccessToken returns the stored access token, or "" if none is stored.
func (s slots) GetAccessToken(ctx context.Context) (string, error) {
	return s.b.get(ctx, accessTokenKey)
}

// SetAccessToken stores the access token.
func (s slots) SetAccessToken(ctx context.Context, token string) error {
	return s.b.set(ctx, accessTokenKey, token)
}

// ClearAccessToken removes the access token. Clearing an empty slot is not an error.
func (s slots) ClearAccessToken(ctx context.Context) error {
	return s.b.del(ctx, accessTokenKey)
}

// GetOAuthState returns the pending OAuth state nonce, or "" if none is stored.
func (s slots) GetOAuthState(ctx context.Context) (string, error) {
	return s.b.get(ctx, oauthStateKey)
}

// SetOAuthState stores the OAuth state nonce for the next authorization round trip.
func (s slots) SetOAuthState(ctx context.Context, state string) error {
	return s.b.set(ctx, oauthStateKey, state)
}

// ClearOAuthState removes the OAuth state nonce. Clearing an empty slot is not an error.
func (s slots) ClearOAuthState(ctx context.Context) error {
	return s.b.del(ctx, oauthStateKey)
}

// persistenceError wraps err with the given kind so callers can recover it
// with core.PersistenceErrorOf while errors.Is still matches the cause.
func persistenceError(kind core.PersistenceError, op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, kind, err)
}
