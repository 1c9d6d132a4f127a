package main

import (
	"fmt"

	"github.com/go-training/gh-notifier/pkg/login"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var statusVerify bool

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a GitHub token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			gh := a.github("")
			lp := login.New(a.store, gh)
			defer lp.Close()

			status, err := lp.CheckAuthStatus(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Store:   %s\n", a.cfg.Store.Type)
			if status == login.LoggedIn {
				fmt.Fprintf(out, "Status:  %s\n", text.FgGreen.Sprint(status))
				if statusVerify {
					user, err := gh.GetUser(cmd.Context())
					if err != nil {
						fmt.Fprintf(out, "Account: %s (%v)\n", text.FgRed.Sprint("unverified"), err)
						return nil
					}
					fmt.Fprintf(out, "Account: %s\n", user.Login)
				}
				return nil
			}
			fmt.Fprintf(out, "Status:  %s\n", text.FgYellow.Sprint(status))
			fmt.Fprintln(out, "Run 'notifier login' to sign in.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusVerify, "verify", true, "check the token against the GitHub API and show the account")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			lp := login.New(a.store, a.github(""))
			defer lp.Close()

			if err := lp.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
