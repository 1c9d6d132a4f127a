package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-training/gh-notifier/pkg/core"

	"go.opentelemetry.io/otel/attribute"
)

// tokenResponse is the JSON body of the token endpoint. GitHub reports a bad
// or expired code with a 200 and the error fields set.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangeCodeForToken trades an authorization code for an access token.
// Errors wrap a core.NetworkError kind.
func (c *Client) ExchangeCodeForToken(ctx context.Context, clientID, clientSecret, code string) (_ core.AuthToken, err error) {
	ctx, span := c.startSpan(ctx, "github.ExchangeCodeForToken",
		attribute.String("github.client_id", clientID),
	)
	defer func() { endSpan(span, err) }()

	query := url.Values{}
	query.Set("client_id", clientID)
	query.Set("client_secret", clientSecret)
	query.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oauth.Endpoint.TokenURL+"?"+query.Encode(), nil)
	if err != nil {
		return core.AuthToken{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var body tokenResponse
	if err := c.safeCall(ctx, req, &body); err != nil {
		return core.AuthToken{}, err
	}
	if body.Error != "" {
		return core.AuthToken{}, fmt.Errorf("%w: %s: %s", core.NetworkUnknown, body.Error, body.ErrorDescription)
	}
	if body.AccessToken == "" {
		return core.AuthToken{}, fmt.Errorf("%w: token response without access_token", core.NetworkSerialization)
	}

	return core.AuthToken{
		AccessToken: body.AccessToken,
		Scope:       body.Scope,
		TokenType:   body.TokenType,
	}, nil
}
