package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-training/gh-notifier/pkg/callback"
	"github.com/go-training/gh-notifier/pkg/config"
	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/logger"
	"github.com/go-training/gh-notifier/pkg/setup"
	"github.com/go-training/gh-notifier/pkg/store"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	// ExitCodeAuth is returned when a login fails or a command needs one.
	ExitCodeAuth = 2
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flags
var (
	configPath string
	logLevel   string
	storeType  string
)

// authError marks failures that map to ExitCodeAuth.
type authError struct {
	err error
}

func (e *authError) Error() string { return e.err.Error() }
func (e *authError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notifier",
		Short: "GitHub notifications on your desktop",
		Long: `notifier signs in to GitHub with OAuth, lists your notification threads,
raises desktop notifications for new ones and exposes them to MCP clients.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "notifier version %s\n" .Version}}`)

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/gh-notifier/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&storeType, "store", "", "credential store: file, memory or redis")

	root.AddCommand(
		newLoginCmd(),
		newStatusCmd(),
		newLogoutCmd(),
		newNotificationsCmd(),
		newServeCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return exitCode(err)
	}
	return ExitCodeSuccess
}

func exitCode(err error) int {
	var authErr *authError
	if errors.As(err, &authErr) || errors.Is(err, github.ErrNotLoggedIn) {
		return ExitCodeAuth
	}
	return ExitCodeError
}

// app holds what every command builds from flags and config.
type app struct {
	cfg   config.Config
	store core.Store
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if storeType != "" {
		cfg.Store.Type = storeType
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger.NewWithLevel(cfg.Log.Level)

	st, err := store.NewStore(cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
	}
	return &app{cfg: cfg, store: st}, nil
}

func (a *app) Close() {
	store.Close(a.store)
}

// github returns a client whose redirect URL points at redirectURL, or at
// the configured callback address when empty.
func (a *app) github(redirectURL string) *github.Client {
	if redirectURL == "" {
		redirectURL = "http://" + a.cfg.GitHub.CallbackAddr + callback.Path
	}
	return github.New(a.cfg.GitHubConfig(redirectURL), a.store)
}

func (a *app) credentials() setup.Credentials {
	return setup.Credentials{
		ClientID:     a.cfg.GitHub.ClientID,
		ClientSecret: a.cfg.GitHub.ClientSecret,
	}
}
