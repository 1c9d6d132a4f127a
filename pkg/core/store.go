package core

import "context"

//go:generate mockgen -source=store.go -destination=mock/mock_store.go -package=mock

// AuthToken is the credential returned by the GitHub token endpoint.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

// Store is the persistence gateway for the two string slots the app keeps:
// the GitHub access token and the pending OAuth state nonce.
//
// A slot that was never written, or was cleared, reads back as "".
// Implementations return errors wrapping a PersistenceError kind.
type Store interface {
	GetAccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	ClearAccessToken(ctx context.Context) error

	GetOAuthState(ctx context.Context) (string, error)
	SetOAuthState(ctx context.Context, state string) error
	ClearOAuthState(ctx context.Context) error
}
