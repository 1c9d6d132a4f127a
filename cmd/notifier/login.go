package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-training/gh-notifier/pkg/callback"
	"github.com/go-training/gh-notifier/pkg/login"
	"github.com/go-training/gh-notifier/pkg/setup"

	"github.com/cli/browser"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Login-specific flags
var (
	loginNoBrowser bool
	loginForce     bool
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to GitHub",
		Long: `Sign in to GitHub with OAuth.

A loopback server receives the redirect, the state parameter is checked
against the one stored when the login started, and the access token is
saved in the configured store.

Examples:
  notifier login                # opens the browser
  notifier login --no-browser   # prints the URL to open instead
  notifier login --force        # sign in again even when a token is stored`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
	cmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
	cmd.Flags().BoolVar(&loginForce, "force", false, "sign in even when already logged in")
	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.ValidateLogin(); err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	srv, err := callback.Listen(a.cfg.GitHub.CallbackAddr)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	gh := a.github(srv.RedirectURL())
	lp := login.New(a.store, gh)
	defer lp.Close()

	if !loginForce {
		status, err := lp.CheckAuthStatus(ctx)
		if err != nil {
			return err
		}
		if status == login.LoggedIn {
			fmt.Fprintln(out, text.FgGreen.Sprint("Already logged in."), "Use --force to sign in again.")
			return nil
		}
	}

	authURL, err := lp.BeginLogin(ctx)
	if err != nil {
		return err
	}
	openAuthURL(cmd, authURL)

	waitCtx, cancel := context.WithTimeout(ctx, callback.Timeout)
	defer cancel()
	res, err := srv.Wait(waitCtx)
	if err != nil {
		return &authError{err: fmt.Errorf("waiting for GitHub redirect: %w", err)}
	}
	if res.IsError() {
		return &authError{err: fmt.Errorf("github denied authorization: %s %s", res.Error, res.ErrorDescription)}
	}

	c := setup.New(gh, a.store, a.credentials())
	defer c.Close()

	st, err := c.Run(ctx, res.Code, res.State)
	if err != nil {
		return err
	}
	if st.Step == setup.Success {
		c.ContinueToHome()
		lp.UserLoggedIn()
	}
	printSetupEvents(out, c.Events().Drain())

	if st.Step != setup.Success {
		return &authError{err: fmt.Errorf("login %s", st.Step)}
	}
	return nil
}

func openAuthURL(cmd *cobra.Command, authURL string) {
	out := cmd.OutOrStdout()
	if loginNoBrowser {
		fmt.Fprintf(out, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)
		return
	}

	browser.Stdout = cmd.ErrOrStderr()
	browser.Stderr = cmd.ErrOrStderr()
	if err := browser.OpenURL(authURL); err != nil {
		fmt.Fprintf(out, "Could not open a browser (%v). Open this URL to sign in:\n\n  %s\n\n", err, authURL)
		return
	}
	fmt.Fprintln(out, "Opened GitHub in your browser. Waiting for authorization...")
}

func printSetupEvents(w io.Writer, events []setup.Event) {
	for _, ev := range events {
		switch e := ev.(type) {
		case setup.NavigateToHome:
			fmt.Fprintln(w, text.FgGreen.Sprint("Logged in to GitHub."))
		case setup.NetworkErrorEvent:
			fmt.Fprintln(w, text.FgRed.Sprint("Token exchange failed:"), e.Err)
		case setup.PersistenceErrorEvent:
			fmt.Fprintln(w, text.FgRed.Sprint("Saving the token failed:"), e.Err)
		}
	}
}
