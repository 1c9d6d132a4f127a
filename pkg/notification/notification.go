// Package notification loads the user's GitHub notifications and prepares
// them for display.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/presenter"
)

//go:generate mockgen -source=notification.go -destination=mock_source_test.go -package=notification

// Source lists notifications from GitHub.
type Source interface {
	GetNotifications(ctx context.Context, opts github.ListOptions) ([]core.Notification, error)
}

// State is the notification list screen state.
type State struct {
	IsLoading     bool
	Notifications []View
}

// Event is a one-shot signal emitted by the presenter.
type Event interface {
	notificationEvent()
}

// NetworkErrorEvent reports a failed fetch.
type NetworkErrorEvent struct {
	Err core.NetworkError
}

// NotLoggedIn reports that no access token is available.
type NotLoggedIn struct{}

// OpenURL asks the UI to open a notification in the browser.
type OpenURL struct {
	URL string
}

func (NetworkErrorEvent) notificationEvent() {}
func (NotLoggedIn) notificationEvent()       {}
func (OpenURL) notificationEvent()           {}

// Presenter drives the notification list.
type Presenter struct {
	*presenter.Base[State, Event]

	source Source
	now    func() time.Time
}

// New returns a Presenter with an empty list.
func New(source Source) *Presenter {
	return &Presenter{
		Base:   presenter.New[State, Event](State{}),
		source: source,
		now:    time.Now,
	}
}

// Load fetches notifications and replaces the list. On failure the previous
// list is kept and an event is emitted.
func (p *Presenter) Load(ctx context.Context, opts github.ListOptions) ([]View, error) {
	p.UpdateState(func(st State) State {
		st.IsLoading = true
		return st
	})
	defer p.UpdateState(func(st State) State {
		st.IsLoading = false
		return st
	})

	notifications, err := p.source.GetNotifications(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, github.ErrNotLoggedIn):
			p.SendEvent(NotLoggedIn{})
		case ctx.Err() != nil:
		default:
			core.LoggerFromCtx(ctx).Error("failed to load notifications", "error", err)
			p.SendEvent(NetworkErrorEvent{Err: core.NetworkErrorOf(err)})
		}
		return nil, err
	}

	now := p.now()
	views := make([]View, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, ToView(n, now))
	}
	p.UpdateState(func(st State) State {
		st.Notifications = views
		return st
	})
	core.LoggerFromCtx(ctx).Debug("notifications loaded", "count", len(views))
	return views, nil
}

// Open emits OpenURL for the notification with the given id. It reports
// false if the id is not in the current list.
func (p *Presenter) Open(id string) bool {
	for _, v := range p.State().Notifications {
		if v.ID == id {
			p.SendEvent(OpenURL{URL: v.URL})
			return true
		}
	}
	return false
}
