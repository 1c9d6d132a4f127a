package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-training/gh-notifier/pkg/core"

	"golang.org/x/oauth2"
)

// GetUser returns the account the access token belongs to.
func (c *Client) GetUser(ctx context.Context) (_ core.User, err error) {
	ctx, span := c.startSpan(ctx, "github.GetUser")
	defer func() { endSpan(span, err) }()

	token, err := c.accessToken(ctx)
	if err != nil {
		return core.User{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.constructURL("/user"), nil)
	if err != nil {
		return core.User{}, fmt.Errorf("failed to create user request: %w", err)
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	var user core.User
	if err := c.safeCall(ctx, req, &user); err != nil {
		return core.User{}, err
	}
	return user, nil
}
