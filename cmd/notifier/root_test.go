package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/notification"
	"github.com/go-training/gh-notifier/pkg/operation"
	"github.com/go-training/gh-notifier/pkg/operation/notifications"
	"github.com/go-training/gh-notifier/pkg/setup"
	"github.com/go-training/gh-notifier/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	root.SetOut(&out)
	root.SetErr(&out)

	if err := root.ExecuteContext(context.Background()); err != nil {
		return out.String() + err.Error(), exitCode(err)
	}
	return out.String(), ExitCodeSuccess
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "generic", err: errors.New("boom"), want: ExitCodeError},
		{name: "login failed", err: &authError{err: errors.New("login FAILED")}, want: ExitCodeAuth},
		{name: "not logged in", err: fmt.Errorf("list: %w", github.ErrNotLoggedIn), want: ExitCodeAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestStatus_LoggedOut(t *testing.T) {
	out, code := run(t, "status", "--store", "memory")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "LOGGED_OUT")
}

func TestLogout(t *testing.T) {
	out, code := run(t, "logout", "--store", "memory")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Contains(t, out, "Logged out.")
}

func TestNotifications_NotLoggedIn(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	_, code := run(t, "notifications", "--store", "memory")
	assert.Equal(t, ExitCodeAuth, code)
}

func TestNotificationsWatch_NotLoggedIn(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	_, code := run(t, "notifications", "--store", "memory", "--watch", "--interval", "1h")
	assert.Equal(t, ExitCodeAuth, code)
}

func TestWatchInterval(t *testing.T) {
	assert.Equal(t, 30*time.Second, watchInterval(30*time.Second, 5*time.Minute))
	assert.Equal(t, 5*time.Minute, watchInterval(0, 5*time.Minute))
	assert.Equal(t, time.Minute, watchInterval(0, 0))
}

func TestServe_InvalidTransport(t *testing.T) {
	out, code := run(t, "serve", "--store", "memory", "--transport", "carrier-pigeon")
	assert.Equal(t, ExitCodeError, code)
	assert.Contains(t, out, "invalid transport type")
}

func TestInvalidStore(t *testing.T) {
	_, code := run(t, "status", "--store", "sqlite")
	assert.Equal(t, ExitCodeError, code)
}

func TestVersion(t *testing.T) {
	out, code := run(t, "--version")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Equal(t, "notifier version dev\n", out)
}

func TestRenderNotifications(t *testing.T) {
	var buf bytes.Buffer
	renderNotifications(&buf, []notification.View{
		{ID: "1", RepoInfo: "octo/hello #12", Title: "Fix the thing", Description: "You were mentioned in this issue.", Icon: notification.IconIssue, RelativeTime: "3h", URL: "https://github.com/octo/hello/issues/12"},
		{ID: "2", RepoInfo: "octo/world #4", Title: "Docs", Icon: notification.IconPullRequest, RelativeTime: "2d", IsRead: true},
	})

	out := buf.String()
	assert.Contains(t, out, "octo/hello #12")
	assert.Contains(t, out, "Fix the thing")
	assert.Contains(t, out, "https://github.com/octo/hello/issues/12")
	assert.Contains(t, out, "octo/world #4")
	assert.Contains(t, strings.ToUpper(out), "1 UNREAD OF 2")
}

func TestRenderNotifications_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderNotifications(&buf, nil)
	assert.Contains(t, buf.String(), "No notifications.")
}

func TestPrintSetupEvents(t *testing.T) {
	var buf bytes.Buffer
	printSetupEvents(&buf, []setup.Event{
		setup.NetworkErrorEvent{Err: core.NetworkNoInternet},
		setup.PersistenceErrorEvent{Err: core.PersistenceIO},
		setup.NavigateToHome{},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "no internet connection")
	assert.Contains(t, lines[1], "io error")
	assert.Contains(t, lines[2], "Logged in to GitHub.")
}

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.0"}}}`

func postMCP(h http.Handler, authorization, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if session != "" {
		req.Header.Set("Mcp-Session-Id", session)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestMCPServer_Router(t *testing.T) {
	s := NewMCPServer(store.NewMemoryStore(), &operation.Deps{}, true)

	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = postMCP(router, "Bearer gho_caller", "", initializeBody)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gh-notifier")
}

func TestMCPServer_HTTPRequiresBearer(t *testing.T) {
	router := NewMCPServer(store.NewMemoryStore(), &operation.Deps{}, true).Router()

	tests := []struct {
		name          string
		authorization string
	}{
		{name: "no header", authorization: ""},
		{name: "basic scheme", authorization: "Basic dXNlcjpwYXNz"},
		{name: "bare token", authorization: "gho_caller"},
		{name: "empty bearer", authorization: "Bearer "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postMCP(router, tt.authorization, "", initializeBody)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestMCPServer_HTTPNeverUsesStoredToken(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.SetAccessToken(context.Background(), "stored-secret"))

	var (
		mu   sync.Mutex
		seen []string
	)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(api.Close)

	gh := github.New(github.Config{
		APIBaseURL:  api.URL + "/",
		AuthBaseURL: api.URL + "/",
		HTTPClient:  api.Client(),
	}, st)
	router := NewMCPServer(st, &operation.Deps{
		Notifications: notifications.Handler{Source: gh},
	}, true).Router()

	callBody := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_notifications","arguments":{}}}`

	w := postMCP(router, "", "", callBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postMCP(router, "Bearer gho_caller", "", initializeBody)
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get("Mcp-Session-Id")
	require.NotEmpty(t, session)

	w = postMCP(router, "Bearer gho_caller", session, callBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"text":"[]"`)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer gho_caller"}, seen)
}
