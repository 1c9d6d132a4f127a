package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/core/mock"
	"github.com/go-training/gh-notifier/pkg/setup"
	"github.com/go-training/gh-notifier/pkg/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeGitHub struct {
	token core.AuthToken
	err   error
	codes []string
}

func (f *fakeGitHub) AuthorizeURL(state string) string {
	return "https://github.com/login/oauth/authorize?client_id=id&state=" + url.QueryEscape(state)
}

func (f *fakeGitHub) ExchangeCodeForToken(_ context.Context, _, _, code string) (core.AuthToken, error) {
	f.codes = append(f.codes, code)
	return f.token, f.err
}

func callTool(t *testing.T, ctx context.Context, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := fn(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	txt, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return txt.Text
}

func TestLoginRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := core.WithStore(context.Background(), st)
	gh := &fakeGitHub{token: core.AuthToken{AccessToken: "gho_abc", TokenType: "bearer"}}
	h := &Handler{GitHub: gh, Creds: setup.Credentials{ClientID: "id", ClientSecret: "secret"}}

	res := callTool(t, ctx, h.HandleAuthStatus, nil)
	assert.Equal(t, "LOGGED_OUT", text(t, res))

	res = callTool(t, ctx, h.HandleLoginURL, nil)
	u, err := url.Parse(text(t, res))
	require.NoError(t, err)
	nonce := u.Query().Get("state")
	require.NotEmpty(t, nonce)
	stored, err := st.GetOAuthState(ctx)
	require.NoError(t, err)
	assert.Equal(t, nonce, stored)

	res = callTool(t, ctx, h.HandleCompleteLogin, map[string]any{"code": "the-code", "state": nonce})
	assert.False(t, res.IsError)
	var out CompleteLoginResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, CompleteLoginResult{Step: "SUCCESS"}, out)
	assert.Equal(t, []string{"the-code"}, gh.codes)

	res = callTool(t, ctx, h.HandleAuthStatus, nil)
	assert.Equal(t, "LOGGED_IN", text(t, res))

	res = callTool(t, ctx, h.HandleLogout, nil)
	assert.Equal(t, "LOGGED_OUT", text(t, res))
	token, err := st.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestCompleteLogin_StateMismatch(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := core.WithStore(context.Background(), st)
	require.NoError(t, st.SetOAuthState(ctx, "expected"))
	gh := &fakeGitHub{}
	h := &Handler{GitHub: gh}

	res := callTool(t, ctx, h.HandleCompleteLogin, map[string]any{"code": "c", "state": "forged"})
	assert.True(t, res.IsError)

	var out CompleteLoginResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "FAILED", out.Step)
	assert.Empty(t, gh.codes)
}

func TestCompleteLogin_NetworkError(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := core.WithStore(context.Background(), st)
	require.NoError(t, st.SetOAuthState(ctx, "nonce"))
	h := &Handler{GitHub: &fakeGitHub{err: core.NetworkServerError}}

	res := callTool(t, ctx, h.HandleCompleteLogin, map[string]any{"code": "c", "state": "nonce"})
	assert.True(t, res.IsError)

	var out CompleteLoginResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, CompleteLoginResult{Step: "FAILED", Error: "network: server error"}, out)
}

func TestCompleteLogin_MissingArguments(t *testing.T) {
	ctx := core.WithStore(context.Background(), store.NewMemoryStore())
	h := &Handler{GitHub: &fakeGitHub{}}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"code": "c"}
	_, err := h.HandleCompleteLogin(ctx, req)
	assert.Error(t, err)
}

func TestHandlers_MissingStore(t *testing.T) {
	h := &Handler{GitHub: &fakeGitHub{}}

	_, err := h.HandleAuthStatus(context.Background(), mcp.CallToolRequest{})
	assert.Error(t, err)
	_, err = h.HandleLoginURL(context.Background(), mcp.CallToolRequest{})
	assert.Error(t, err)
	_, err = h.HandleLogout(context.Background(), mcp.CallToolRequest{})
	assert.Error(t, err)
}

func TestLoginURL_PersistenceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mock.NewMockStore(ctrl)
	st.EXPECT().SetOAuthState(gomock.Any(), gomock.Any()).Return(errors.Join(core.PersistenceIO, errors.New("disk full")))

	h := &Handler{GitHub: &fakeGitHub{}}
	res := callTool(t, core.WithStore(context.Background(), st), h.HandleLoginURL, nil)
	assert.True(t, res.IsError)
}

type blockingGitHub struct {
	fakeGitHub
	entered chan struct{}
	release chan struct{}
}

func (b *blockingGitHub) ExchangeCodeForToken(ctx context.Context, id, secret, code string) (core.AuthToken, error) {
	close(b.entered)
	<-b.release
	return b.fakeGitHub.ExchangeCodeForToken(ctx, id, secret, code)
}

func TestCompleteLogin_RejectsConcurrentCall(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := core.WithStore(context.Background(), st)
	require.NoError(t, st.SetOAuthState(ctx, "nonce"))

	gh := &blockingGitHub{
		fakeGitHub: fakeGitHub{token: core.AuthToken{AccessToken: "gho_abc", TokenType: "bearer"}},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	h := &Handler{GitHub: gh}
	args := map[string]any{"code": "c", "state": "nonce"}

	first := make(chan *mcp.CallToolResult, 1)
	go func() {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = args
		res, _ := h.HandleCompleteLogin(ctx, req)
		first <- res
	}()
	<-gh.entered

	res := callTool(t, ctx, h.HandleCompleteLogin, args)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), setup.ErrSetupInProgress.Error())

	close(gh.release)
	res = <-first
	require.NotNil(t, res)
	assert.False(t, res.IsError)
	assert.Equal(t, []string{"c"}, gh.codes)
}
