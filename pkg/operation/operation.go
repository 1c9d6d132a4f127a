package operation

import (
	"github.com/go-training/gh-notifier/pkg/operation/auth"
	"github.com/go-training/gh-notifier/pkg/operation/notifications"

	"github.com/mark3labs/mcp-go/server"
)

/*
Deps holds the tool handlers. The store is not part of it: each request
carries it in its context (see core.WithStore).

Fields:
  - Auth: serves auth_status, login_url, complete_login and logout.
  - Notifications: serves list_notifications.
*/
type Deps struct {
	Auth          auth.Handler
	Notifications notifications.Handler
}

/*
RegisterAuthTool adds the login tools to tool.

Parameters:
  - tool: The collection the tools are added to.
  - h: Handler serving the tools.

auth_status is a read; login_url, complete_login and logout change the stored session.
*/
func RegisterAuthTool(tool *Tool, h *auth.Handler) {
	tool.RegisterRead(server.ServerTool{
		Tool:    auth.AuthStatusTool,
		Handler: h.HandleAuthStatus,
	})
	tool.RegisterWrite(server.ServerTool{
		Tool:    auth.LoginURLTool,
		Handler: h.HandleLoginURL,
	})
	tool.RegisterWrite(server.ServerTool{
		Tool:    auth.CompleteLoginTool,
		Handler: h.HandleCompleteLogin,
	})
	tool.RegisterWrite(server.ServerTool{
		Tool:    auth.LogoutTool,
		Handler: h.HandleLogout,
	})
}

// RegisterNotificationTool adds list_notifications to tool.
func RegisterNotificationTool(tool *Tool, h *notifications.Handler) {
	tool.RegisterRead(server.ServerTool{
		Tool:    notifications.ListNotificationsTool,
		Handler: h.HandleListNotifications,
	})
}

/*
Register adds every gh-notifier tool to s.

Parameters:
  - s: Pointer to the MCPServer instance where the tools will be registered.
  - deps: The handlers serving the tools.
  - readOnly: When true only read tools are registered, so clients cannot
    start, complete or end a login.
*/
func Register(s *server.MCPServer, deps *Deps, readOnly bool) {
	tool := &Tool{}
	RegisterAuthTool(tool, &deps.Auth)
	RegisterNotificationTool(tool, &deps.Notifications)

	if readOnly {
		s.AddTools(tool.ReadOnly()...)
		return
	}
	s.AddTools(tool.Tools()...)
}

/*
Tool manages collections of tools to be registered with an MCPServer.

Fields:
  - write: Stores all ServerTools registered as write operations.
  - read: Stores all ServerTools registered as read operations.
*/
type Tool struct {
	write []server.ServerTool
	read  []server.ServerTool
}

/*
RegisterWrite registers a ServerTool as a write operation.

Parameters:
  - s: The ServerTool instance to register.

Write tools change the stored session (token or pending login state).
*/
func (t *Tool) RegisterWrite(s server.ServerTool) {
	t.write = append(t.write, s)
}

/*
RegisterRead registers a ServerTool as a read operation.

Parameters:
  - s: The ServerTool instance to register.
*/
func (t *Tool) RegisterRead(s server.ServerTool) {
	t.read = append(t.read, s)
}

/*
Tools returns all registered ServerTools.

Returns:
  - []server.ServerTool: A slice containing all write and read tools, with write tools first followed by read tools.
*/
func (t *Tool) Tools() []server.ServerTool {
	tools := make([]server.ServerTool, 0, len(t.write)+len(t.read))
	tools = append(tools, t.write...)
	tools = append(tools, t.read...)
	return tools
}

// ReadOnly returns only the read tools.
func (t *Tool) ReadOnly() []server.ServerTool {
	return append([]server.ServerTool(nil), t.read...)
}
