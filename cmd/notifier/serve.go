package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/logger"
	"github.com/go-training/gh-notifier/pkg/operation"
	"github.com/go-training/gh-notifier/pkg/operation/auth"
	"github.com/go-training/gh-notifier/pkg/operation/notifications"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// Serve-specific flags
var (
	serveTransport string
	serveAddr      string
	serveReadOnly  bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GitHub notifications over MCP",
		Long: `Start an MCP server exposing auth_status, login_url, complete_login,
logout and list_notifications.

With the stdio transport a GITHUB_TOKEN environment variable takes
precedence over the stored token. The http transport never uses the stored
token: every request to /mcp must carry its own GitHub token as
"Authorization: Bearer <token>", and only the read tools are registered.

Examples:
  notifier serve                              # stdio
  notifier serve --transport http --addr 127.0.0.1:8080
  notifier serve --read-only                  # only auth_status and list_notifications`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "transport type: stdio or http (default from config, stdio)")
	cmd.Flags().StringVar(&serveAddr, "addr", "", "address to listen on for the http transport (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&serveReadOnly, "read-only", false, "register only tools that do not change the stored session (always on for http)")
	return cmd
}

// MCPServer wraps the underlying MCP server instance.
type MCPServer struct {
	server *server.MCPServer
	store  core.Store
}

// NewMCPServer creates the MCP server and registers the tools.
func NewMCPServer(store core.Store, deps *operation.Deps, readOnly bool) *MCPServer {
	mcpServer := server.NewMCPServer(
		"gh-notifier",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(operation.MCPToolHandlerMiddleware()),
	)

	operation.Register(mcpServer, deps, readOnly)

	return &MCPServer{
		server: mcpServer,
		store:  store,
	}
}

// ServeHTTP returns a streamable HTTP server that injects the store and the
// auth token from HTTP requests into the context. The stored token is never
// used on behalf of an HTTP caller.
func (s *MCPServer) ServeHTTP() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s.server,
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return core.WithoutStoredToken(core.AuthFromRequest(core.WithStore(ctx, s.store), r))
		}),
	)
}

// ServeStdio starts the MCP server using stdio transport, injecting the
// store and the auth token from the environment into the context.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.server,
		server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return core.AuthFromEnv(core.WithStore(ctx, s.store))
		}),
	)
}

// Router returns the gin engine routing /mcp to the streamable HTTP server.
func (s *MCPServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(slog.Default(), "/healthz"))

	h := gin.WrapH(s.ServeHTTP())
	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		router.Handle(method, "/mcp", requireBearer, h)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

// requireBearer rejects requests without a bearer token.
func requireBearer(c *gin.Context) {
	if core.BearerToken(c.Request) == "" {
		c.Header("WWW-Authenticate", `Bearer realm="gh-notifier"`)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	c.Next()
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	transport := serveTransport
	if transport == "" {
		transport = a.cfg.Server.Transport
	}
	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	gh := a.github("")
	s := NewMCPServer(a.store, &operation.Deps{
		Auth:          auth.Handler{GitHub: gh, Creds: a.credentials()},
		Notifications: notifications.Handler{Source: gh},
	}, serveReadOnly || transport == "http")

	switch transport {
	case "stdio":
		if err := s.ServeStdio(); err != nil {
			return fmt.Errorf("stdio server: %w", err)
		}
		return nil
	case "http":
		return serveHTTP(s, addr)
	default:
		return fmt.Errorf("invalid transport type %q: use stdio or http", transport)
	}
}

// newGracefulManager returns the process-wide shutdown manager, logging
// through slog.
func newGracefulManager() *graceful.Manager {
	return graceful.NewManager(
		graceful.WithLogger(graceful.NewSlogLogger(graceful.WithSlog(slog.Default()))),
	)
}

func serveHTTP(s *MCPServer, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	m := newGracefulManager()
	m.AddRunningJob(func(ctx context.Context) error {
		slog.Info("MCP HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return err
		}
		return nil
	})
	m.AddShutdownJob(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down MCP HTTP server")
		return srv.Shutdown(ctx)
	})

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-m.Done():
		return nil
	}
}
