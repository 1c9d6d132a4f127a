package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/notification"
)

// Watcher polls GitHub and shows a desktop notification for every unread
// thread it has not shown yet, or that was updated since it was shown.
type Watcher struct {
	source   notification.Source
	handler  *Handler
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewWatcher returns a Watcher polling every interval.
func NewWatcher(source notification.Source, handler *Handler, interval time.Duration) *Watcher {
	return &Watcher{
		source:   source,
		handler:  handler,
		interval: interval,
		now:      time.Now,
		seen:     make(map[string]time.Time),
	}
}

// Poll fetches unread notifications once and shows the new ones. It returns
// how many were shown.
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	notifications, err := w.source.GetNotifications(ctx, github.ListOptions{})
	if err != nil {
		return 0, err
	}

	now := w.now()
	shown := 0
	var errs []error
	for _, n := range notifications {
		if !n.Unread || !w.isNew(n) {
			continue
		}
		v := notification.ToView(n, now)
		if err := w.handler.Show(ctx, n.ID, v.RepoInfo+" "+v.Title, v.Description, GitHubChannel.ID, v.URL); err != nil {
			errs = append(errs, err)
			continue
		}
		w.markSeen(n)
		shown++
	}
	return shown, errors.Join(errs...)
}

// Run polls until ctx is done. Poll errors are logged and do not stop the
// loop, except github.ErrNotLoggedIn, which Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	logger := core.LoggerFromCtx(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if n, err := w.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, github.ErrNotLoggedIn) {
				return err
			}
			logger.Warn("poll notifications failed", "error", err)
		} else if n > 0 {
			logger.Info("new notifications", "count", n)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Watcher) isNew(n core.Notification) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	last, ok := w.seen[n.ID]
	return !ok || n.UpdatedAt.After(last)
}

func (w *Watcher) markSeen(n core.Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[n.ID] = n.UpdatedAt
}
