// Package login decides whether the user is signed in to GitHub and starts
// the OAuth round trip when they are not.
package login

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/presenter"

	"github.com/google/uuid"
)

// Status is the authentication status shown by the UI.
type Status int

const (
	Loading Status = iota
	LoggedIn
	LoggedOut
)

func (s Status) String() string {
	switch s {
	case LoggedIn:
		return "LOGGED_IN"
	case LoggedOut:
		return "LOGGED_OUT"
	default:
		return "LOADING"
	}
}

// State is the login screen state.
type State struct {
	Status Status
}

// Event is a one-shot signal emitted by the presenter.
type Event interface {
	loginEvent()
}

// NavigateToGitHubAuth asks the UI to open the GitHub authorize page.
type NavigateToGitHubAuth struct {
	URL string
}

// NavigateToHome asks the UI to show the notification list.
type NavigateToHome struct{}

// PersistenceErrorEvent reports a failed read or write of the local credentials.
type PersistenceErrorEvent struct {
	Err core.PersistenceError
}

func (NavigateToGitHubAuth) loginEvent()  {}
func (NavigateToHome) loginEvent()        {}
func (PersistenceErrorEvent) loginEvent() {}

// Authorizer builds the GitHub authorize URL for a state nonce.
type Authorizer interface {
	AuthorizeURL(state string) string
}

// Presenter drives the login screen.
type Presenter struct {
	*presenter.Base[State, Event]

	store      core.Store
	authorizer Authorizer
	newNonce   func() string
}

// New returns a Presenter in the Loading status.
func New(store core.Store, authorizer Authorizer) *Presenter {
	return &Presenter{
		Base:       presenter.New[State, Event](State{Status: Loading}),
		store:      store,
		authorizer: authorizer,
		newNonce:   func() string { return uuid.New().String() },
	}
}

// CheckAuthStatus reads the stored token: blank means logged out.
func (p *Presenter) CheckAuthStatus(ctx context.Context) (Status, error) {
	token, err := p.store.GetAccessToken(ctx)
	if err != nil {
		core.LoggerFromCtx(ctx).Error("failed to read access token", "error", err)
		p.SendEvent(PersistenceErrorEvent{Err: core.PersistenceErrorOf(err)})
		return p.setStatus(LoggedOut), err
	}
	if strings.TrimSpace(token) == "" {
		return p.setStatus(LoggedOut), nil
	}
	return p.setStatus(LoggedIn), nil
}

// BeginLogin stores a fresh state nonce and emits NavigateToGitHubAuth with an
// authorize URL carrying it. It returns the URL.
func (p *Presenter) BeginLogin(ctx context.Context) (string, error) {
	nonce := p.newNonce()
	if err := p.store.SetOAuthState(ctx, nonce); err != nil {
		core.LoggerFromCtx(ctx).Error("failed to save oauth state", "error", err)
		p.SendEvent(PersistenceErrorEvent{Err: core.PersistenceErrorOf(err)})
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}

	authURL := p.authorizer.AuthorizeURL(nonce)
	p.SendEvent(NavigateToGitHubAuth{URL: authURL})
	return authURL, nil
}

// UserLoggedIn emits NavigateToHome.
func (p *Presenter) UserLoggedIn() {
	p.setStatus(LoggedIn)
	p.SendEvent(NavigateToHome{})
}

// Logout forgets the token and any pending nonce.
func (p *Presenter) Logout(ctx context.Context) error {
	if err := p.store.ClearAccessToken(ctx); err != nil {
		p.SendEvent(PersistenceErrorEvent{Err: core.PersistenceErrorOf(err)})
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	if err := p.store.ClearOAuthState(ctx); err != nil {
		p.SendEvent(PersistenceErrorEvent{Err: core.PersistenceErrorOf(err)})
		return fmt.Errorf("failed to clear oauth state: %w", err)
	}
	p.setStatus(LoggedOut)
	return nil
}

func (p *Presenter) setStatus(s Status) Status {
	p.UpdateState(func(st State) State {
		st.Status = s
		return st
	})
	return s
}
