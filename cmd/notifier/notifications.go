package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/notification"
	"github.com/go-training/gh-notifier/pkg/notify"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// Notifications-specific flags
var (
	listAll           bool
	listParticipating bool
	listNotify        bool
	listWatch         bool
	listInterval      time.Duration
)

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"ls"},
		Short:   "List GitHub notifications",
		Long: `List your GitHub notification threads.

Examples:
  notifier notifications                # unread threads
  notifier notifications --all          # include read threads
  notifier notifications --notify       # also raise a desktop notification per unread thread
  notifier notifications --watch        # keep polling at notify.interval and notify about new threads
  notifier notifications --watch --interval 30s`,
		Args: cobra.NoArgs,
		RunE: runNotifications,
	}
	cmd.Flags().BoolVar(&listAll, "all", false, "include notifications already marked as read")
	cmd.Flags().BoolVar(&listParticipating, "participating", false, "only threads you participate in or are mentioned in")
	cmd.Flags().BoolVar(&listNotify, "notify", false, "raise a desktop notification for each unread thread")
	cmd.Flags().BoolVar(&listWatch, "watch", false, "keep polling and raise desktop notifications for new threads")
	cmd.Flags().DurationVar(&listInterval, "interval", 0, "poll interval for --watch (default from config notify.interval, 1m)")
	return cmd
}

func runNotifications(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	gh := a.github("")
	if listWatch {
		return watchNotifications(cmd.Context(), gh, a.newNotifyHandler(), watchInterval(listInterval, a.cfg.Notify.Interval))
	}

	p := notification.New(gh)
	defer p.Close()

	views, err := p.Load(cmd.Context(), github.ListOptions{All: listAll, Participating: listParticipating})
	if err != nil {
		return err
	}
	renderNotifications(cmd.OutOrStdout(), views)

	if listNotify {
		return showUnread(cmd.Context(), a.newNotifyHandler(), views)
	}
	return nil
}

func (a *app) newNotifyHandler() *notify.Handler {
	h := notify.NewHandler(notify.BeeepBackend{Icon: a.cfg.Notify.Icon}, "gh-notifier")
	h.CreateChannels()
	return h
}

func showUnread(ctx context.Context, h *notify.Handler, views []notification.View) error {
	for _, v := range views {
		if v.IsRead {
			continue
		}
		if err := h.Show(ctx, v.ID, v.RepoInfo+" "+v.Title, v.Description, notify.GitHubChannel.ID, v.URL); err != nil {
			return err
		}
	}
	return nil
}

// watchInterval returns flag when set, then configured, then one minute.
func watchInterval(flag, configured time.Duration) time.Duration {
	switch {
	case flag > 0:
		return flag
	case configured > 0:
		return configured
	default:
		return time.Minute
	}
}

func watchNotifications(ctx context.Context, source notification.Source, h *notify.Handler, interval time.Duration) error {
	w := notify.NewWatcher(source, h, interval)
	core.LoggerFromCtx(ctx).Info("watching notifications", "interval", interval)

	errCh := make(chan error, 1)
	m := newGracefulManager()
	m.AddRunningJob(func(jobCtx context.Context) error {
		if err := w.Run(jobCtx); err != nil {
			errCh <- err
			return err
		}
		return nil
	})

	select {
	case err := <-errCh:
		return err
	case <-m.Done():
		return nil
	}
}

var iconGlyph = map[notification.Icon]string{
	notification.IconPullRequest: "PR",
	notification.IconIssue:       "IS",
	notification.IconDiscussion:  "DI",
}

// renderNotifications writes views as a table, unread threads highlighted.
func renderNotifications(w io.Writer, views []notification.View) {
	if len(views) == 0 {
		fmt.Fprintln(w, text.FgYellow.Sprint("No notifications."))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		"",
		text.FgHiCyan.Sprint("REPOSITORY"),
		text.FgHiCyan.Sprint("TITLE"),
		text.FgHiCyan.Sprint("REASON"),
		text.FgHiCyan.Sprint("UPDATED"),
		text.FgHiCyan.Sprint("URL"),
	})

	unread := 0
	for _, v := range views {
		title := v.Title
		if !v.IsRead {
			unread++
			title = text.Bold.Sprint(title)
		}
		t.AppendRow(table.Row{
			iconGlyph[v.Icon],
			v.RepoInfo,
			title,
			v.Description,
			v.RelativeTime,
			v.URL,
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d unread of %d", unread, len(views))})
	t.Render()
}
