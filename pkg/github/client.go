// Package github is the network gateway to github.com: the OAuth authorize and
// token endpoints and the REST notifications API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com/"
	// DefaultAuthBaseURL is the GitHub web root serving the OAuth endpoints.
	DefaultAuthBaseURL = "https://github.com/"

	apiVersion     = "2022-11-28"
	requestTimeout = 30 * time.Second
	connectTimeout = 15 * time.Second
)

// ErrNotLoggedIn is returned by API calls when no access token is available.
var ErrNotLoggedIn = errors.New("not logged in to GitHub")

// Config configures a Client.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// APIBaseURL overrides DefaultAPIBaseURL. Must end with "/".
	APIBaseURL string
	// AuthBaseURL overrides DefaultAuthBaseURL. Must end with "/".
	AuthBaseURL string
	// HTTPClient overrides the client built by NewHTTPClient.
	HTTPClient *http.Client
}

// Client talks to GitHub on behalf of the logged in user.
type Client struct {
	httpClient *http.Client
	apiBase    string
	oauth      *oauth2.Config
	store      core.Store
	tracer     trace.Tracer
}

// NewHTTPClient returns an HTTP client with the request and connect timeouts
// used for every GitHub call, instrumented with OpenTelemetry.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: connectTimeout}).DialContext
	return &http.Client{
		Timeout:   requestTimeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// New returns a Client. store supplies the access token for API calls.
func New(cfg Config, store core.Store) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	apiBase := cfg.APIBaseURL
	if apiBase == "" {
		apiBase = DefaultAPIBaseURL
	}

	endpoint := githuboauth.Endpoint
	if cfg.AuthBaseURL != "" && cfg.AuthBaseURL != DefaultAuthBaseURL {
		endpoint = oauth2.Endpoint{
			AuthURL:  cfg.AuthBaseURL + "login/oauth/authorize",
			TokenURL: cfg.AuthBaseURL + "login/oauth/access_token",
		}
	}

	return &Client{
		httpClient: httpClient,
		apiBase:    apiBase,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		store:  store,
		tracer: otel.Tracer("github.com/go-training/gh-notifier/pkg/github"),
	}
}

// AuthorizeURL returns the URL the user opens to grant access. state is the
// CSRF nonce GitHub echoes back on the redirect.
func (c *Client) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ClientID returns the OAuth application client id.
func (c *Client) ClientID() string {
	return c.oauth.ClientID
}

// ClientSecret returns the OAuth application client secret.
func (c *Client) ClientSecret() string {
	return c.oauth.ClientSecret
}

// constructURL resolves url against the API base. Absolute URLs already
// pointing at the base are returned unchanged.
func (c *Client) constructURL(url string) string {
	switch {
	case strings.Contains(url, c.apiBase):
		return url
	case strings.HasPrefix(url, "/"):
		return c.apiBase + url[1:]
	default:
		return c.apiBase + url
	}
}

// accessToken prefers a token carried by ctx over the stored one. Contexts
// marked with core.WithoutStoredToken never read the store.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if token, err := core.TokenFromContext(ctx); err == nil {
		return token, nil
	}
	if !core.StoredTokenAllowed(ctx) {
		return "", ErrNotLoggedIn
	}
	token, err := c.store.GetAccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}

func (c *Client) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
