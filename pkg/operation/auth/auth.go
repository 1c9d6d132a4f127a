// Package auth provides MCP tools for logging in to GitHub and inspecting
// the stored session.
package auth

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/login"
	"github.com/go-training/gh-notifier/pkg/setup"

	"github.com/mark3labs/mcp-go/mcp"
)

// GitHub is the part of the GitHub client the login tools need.
type GitHub interface {
	login.Authorizer
	setup.TokenExchanger
}

// Handler serves the auth tools. The store is taken from the request context.
// A Handler must not be copied after first use.
type Handler struct {
	GitHub GitHub
	Creds  setup.Credentials

	// completing is held while complete_login runs.
	completing sync.Mutex
}

// AuthStatusTool reports whether a token is stored.
var AuthStatusTool = mcp.NewTool("auth_status",
	mcp.WithDescription("Report whether gh-notifier holds a GitHub access token. Returns LOGGED_IN or LOGGED_OUT."),
	mcp.WithReadOnlyHintAnnotation(true),
)

// LoginURLTool starts a login.
var LoginURLTool = mcp.NewTool("login_url",
	mcp.WithDescription(`Start a GitHub login.

Stores a fresh CSRF state and returns the GitHub authorize URL carrying it.
Open the URL in a browser, approve the app, then pass the "code" and "state"
query parameters of the redirect to complete_login.`),
)

// CompleteLoginTool finishes a login started with login_url.
var CompleteLoginTool = mcp.NewTool("complete_login",
	mcp.WithDescription(`Complete a GitHub login.

Checks state against the stored CSRF state, exchanges code for an access token
and stores it. Returns the final setup step (SUCCESS or FAILED).`),
	mcp.WithString("code",
		mcp.Description("The authorization code from the redirect."),
		mcp.Required(),
	),
	mcp.WithString("state",
		mcp.Description("The state parameter from the redirect."),
		mcp.Required(),
	),
)

// LogoutTool forgets the stored token.
var LogoutTool = mcp.NewTool("logout",
	mcp.WithDescription("Forget the stored GitHub access token and any pending login."),
	mcp.WithDestructiveHintAnnotation(true),
)

// CompleteLoginResult is the JSON body returned by complete_login.
type CompleteLoginResult struct {
	Step  string `json:"step"`
	Error string `json:"error,omitempty"`
}

// HandleAuthStatus serves auth_status.
func (h *Handler) HandleAuthStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling auth_status tool")

	p, err := h.presenter(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	status, err := p.CheckAuthStatus(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to read access token", err), nil
	}
	return mcp.NewToolResultText(status.String()), nil
}

// HandleLoginURL serves login_url.
func (h *Handler) HandleLoginURL(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling login_url tool")

	p, err := h.presenter(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	authURL, err := p.BeginLogin(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("failed to start login", err), nil
	}
	return mcp.NewToolResultText(authURL), nil
}

// HandleCompleteLogin serves complete_login.
func (h *Handler) HandleCompleteLogin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling complete_login tool")

	code, err := req.RequireString("code")
	if err != nil {
		return nil, err
	}
	state, err := req.RequireString("state")
	if err != nil {
		return nil, err
	}

	store, err := core.StoreFromContext(ctx)
	if err != nil {
		logger.Error("Missing store from context", "error", err)
		return nil, err
	}

	if !h.completing.TryLock() {
		return mcp.NewToolResultErrorFromErr("failed to complete login", setup.ErrSetupInProgress), nil
	}
	defer h.completing.Unlock()

	c := setup.New(h.GitHub, store, h.Creds)
	defer c.Close()

	st, err := c.Run(ctx, code, state)
	if err != nil {
		return nil, err
	}

	result := CompleteLoginResult{Step: st.Step.String()}
	for _, ev := range c.Events().Drain() {
		switch e := ev.(type) {
		case setup.NetworkErrorEvent:
			result.Error = "network: " + e.Err.Error()
		case setup.PersistenceErrorEvent:
			result.Error = "persistence: " + e.Err.Error()
		}
	}
	if st.Step == setup.Failed && result.Error == "" {
		result.Error = "state mismatch or missing login request"
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Error("Failed to marshal result to JSON", "error", err)
		return nil, err
	}
	if st.Step != setup.Success {
		return mcp.NewToolResultError(string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// HandleLogout serves logout.
func (h *Handler) HandleLogout(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling logout tool")

	p, err := h.presenter(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	if err := p.Logout(ctx); err != nil {
		return mcp.NewToolResultErrorFromErr("failed to log out", err), nil
	}
	return mcp.NewToolResultText(login.LoggedOut.String()), nil
}

func (h *Handler) presenter(ctx context.Context) (*login.Presenter, error) {
	store, err := core.StoreFromContext(ctx)
	if err != nil {
		core.LoggerFromCtx(ctx).Error("Missing store from context", "error", err)
		return nil, err
	}
	return login.New(store, h.GitHub), nil
}
