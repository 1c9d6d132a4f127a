// Package callback receives the OAuth redirect on a loopback HTTP server.
package callback

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-training/gh-notifier/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultAddr matches the redirect URI registered for the OAuth app.
	DefaultAddr = "127.0.0.1:8085"
	// Path is the route GitHub redirects to.
	Path = "/oauth/callback"
	// Timeout bounds how long a login waits for the browser.
	Timeout = 10 * time.Minute
)

// ErrClosed is returned by Wait when the server stopped before a callback arrived.
var ErrClosed = errors.New("callback server closed")

// Result carries the query parameters of the redirect.
type Result struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// IsError reports whether the provider denied the authorization.
func (r Result) IsError() bool {
	return r.Error != ""
}

var page = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>gh-notifier</title></head>
<body>
{{if .Error}}<h1>Authorization failed</h1>
<p>{{.Error}}{{if .Description}}: {{.Description}}{{end}}</p>
{{else}}<h1>Authorization received</h1>
<p>You can close this window and return to the terminal.</p>
{{end}}</body>
</html>
`))

// Server accepts exactly one redirect and hands it to Wait.
type Server struct {
	srv      *http.Server
	listener net.Listener
	result   chan Result
	errs     chan error
	once     sync.Once
	stop     sync.Once
	done     chan struct{}
}

// Listen binds addr and starts serving. Use "127.0.0.1:0" for a random port.
func Listen(addr string) (*Server, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server on %s: %w", addr, err)
	}

	s := &Server{
		listener: ln,
		result:   make(chan Result, 1),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errs <- err:
			default:
			}
		}
	}()

	return s, nil
}

// Handler returns the gin engine serving the callback route.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(slog.Default()), securityHeaders)
	r.GET(Path, s.handleCallback)
	return r
}

// RedirectURL is the URL to register as the OAuth redirect.
func (s *Server) RedirectURL() string {
	return "http://" + s.listener.Addr().String() + Path
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Wait blocks until the redirect arrives, the server fails, or ctx is done.
func (s *Server) Wait(ctx context.Context) (Result, error) {
	select {
	case r := <-s.result:
		return r, nil
	case err := <-s.errs:
		return Result{}, err
	case <-s.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Shutdown stops the server, letting in-flight responses finish.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stop.Do(func() {
		err = s.srv.Shutdown(ctx)
		close(s.done)
	})
	return err
}

func (s *Server) handleCallback(c *gin.Context) {
	handled := false
	s.once.Do(func() {
		handled = true
		res := Result{
			Code:             c.Query("code"),
			State:            c.Query("state"),
			Error:            c.Query("error"),
			ErrorDescription: c.Query("error_description"),
		}

		status := http.StatusOK
		if res.IsError() {
			status = http.StatusBadRequest
		}
		c.Status(status)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(c.Writer, map[string]string{
			"Error":       res.Error,
			"Description": res.ErrorDescription,
		}); err != nil {
			slog.Error("render callback page", "error", err)
		}

		s.result <- res
	})

	if !handled {
		c.String(http.StatusConflict, "callback already processed")
	}
}

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	c.Header("Referrer-Policy", "no-referrer")
	c.Header("Cache-Control", "no-store")
	c.Next()
}
