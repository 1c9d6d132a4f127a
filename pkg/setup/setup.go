// Package setup completes a GitHub OAuth login: it validates the state nonce
// returned on the redirect, exchanges the authorization code for a token and
// persists it.
//
// Progress is published as a latest-value State; observers sampling it may
// skip intermediate steps. Navigation and error signals are delivered on an
// unbounded event queue and are never dropped.
package setup

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/presenter"
)

//go:generate mockgen -source=setup.go -destination=mock_exchanger_test.go -package=setup

// Step is the progress of a setup attempt.
type Step int

const (
	FetchingToken Step = iota
	SavingToken
	Success
	Failed
)

func (s Step) String() string {
	switch s {
	case FetchingToken:
		return "FETCHING_TOKEN"
	case SavingToken:
		return "SAVING_TOKEN"
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// State is what a UI renders for the setup screen.
type State struct {
	Step  Step
	Token *core.AuthToken
}

// Event is a one-shot signal emitted by the controller.
type Event interface {
	setupEvent()
}

// NavigateToHome asks the UI to leave the setup screen.
type NavigateToHome struct{}

// NetworkErrorEvent reports a failed token exchange.
type NetworkErrorEvent struct {
	Err core.NetworkError
}

// PersistenceErrorEvent reports a failed token write.
type PersistenceErrorEvent struct {
	Err core.PersistenceError
}

func (NavigateToHome) setupEvent()        {}
func (NetworkErrorEvent) setupEvent()     {}
func (PersistenceErrorEvent) setupEvent() {}

// ErrSetupInProgress is returned by Run while another attempt is running on the same controller.
var ErrSetupInProgress = errors.New("setup already in progress")

// TokenExchanger trades an authorization code for a token.
type TokenExchanger interface {
	ExchangeCodeForToken(ctx context.Context, clientID, clientSecret, code string) (core.AuthToken, error)
}

// Credentials identify the OAuth application.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Controller drives one setup attempt at a time.
type Controller struct {
	*presenter.Base[State, Event]

	exchanger TokenExchanger
	store     core.Store
	creds     Credentials
	running   atomic.Bool
}

// New returns a Controller in the FetchingToken step with no token.
func New(exchanger TokenExchanger, store core.Store, creds Credentials) *Controller {
	return &Controller{
		Base:      presenter.New[State, Event](State{Step: FetchingToken}),
		exchanger: exchanger,
		store:     store,
		creds:     creds,
	}
}

// Start runs the setup on the controller's lifecycle scope. Close cancels it.
func (c *Controller) Start(code, receivedState string) {
	c.Launch(func(ctx context.Context) {
		if _, err := c.Run(ctx, code, receivedState); err != nil {
			core.LoggerFromCtx(ctx).Debug("setup not completed", "error", err)
		}
	})
}

// Run validates receivedState against the stored nonce, consumes the nonce,
// exchanges code for a token and stores it. The outcome is reported through
// the returned State (and the published state and events), not the error.
//
// The error is ErrSetupInProgress when another attempt is running, or the
// context error when ctx is cancelled. A cancelled attempt stops at the
// pending step without changing state or emitting events.
func (c *Controller) Run(ctx context.Context, code, receivedState string) (State, error) {
	if !c.running.CompareAndSwap(false, true) {
		return c.State(), ErrSetupInProgress
	}
	defer c.running.Store(false)

	logger := core.LoggerFromCtx(ctx)

	if err := ctx.Err(); err != nil {
		return c.State(), err
	}
	c.set(State{Step: FetchingToken})

	if isBlank(code) || isBlank(receivedState) {
		logger.Warn("oauth redirect without code or state")
		return c.fail(), nil
	}

	savedState, err := c.store.GetOAuthState(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return c.State(), ctxErr
	}
	if err != nil {
		logger.Error("failed to read oauth state", "error", err)
		return c.fail(), nil
	}
	if isBlank(savedState) || receivedState != savedState {
		logger.Warn("oauth state mismatch")
		return c.fail(), nil
	}

	err = c.store.ClearOAuthState(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return c.State(), ctxErr
	}
	if err != nil {
		logger.Error("failed to clear oauth state", "error", err)
		return c.fail(), nil
	}

	token, err := c.exchanger.ExchangeCodeForToken(ctx, c.creds.ClientID, c.creds.ClientSecret, code)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return c.State(), ctxErr
	}
	if err != nil {
		kind := core.NetworkErrorOf(err)
		logger.Error("failed to exchange code for token", "kind", kind.Error(), "error", err)
		st := c.fail()
		c.SendEvent(NetworkErrorEvent{Err: kind})
		return st, nil
	}
	c.set(State{Step: SavingToken, Token: &token})

	err = c.store.SetAccessToken(ctx, token.AccessToken)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return c.State(), ctxErr
	}
	if err != nil {
		kind := core.PersistenceErrorOf(err)
		logger.Error("failed to save access token", "kind", kind.Error(), "error", err)
		st := c.fail()
		c.SendEvent(PersistenceErrorEvent{Err: kind})
		return st, nil
	}

	logger.Info("github login completed", "scope", token.Scope)
	return c.setStep(Success), nil
}

// ContinueToHome emits NavigateToHome. It may be called in any state.
func (c *Controller) ContinueToHome() {
	c.SendEvent(NavigateToHome{})
}

func (c *Controller) set(st State) {
	c.UpdateState(func(State) State { return st })
}

// setStep changes the step and keeps the token.
func (c *Controller) setStep(step Step) State {
	var out State
	c.UpdateState(func(st State) State {
		st.Step = step
		out = st
		return st
	})
	return out
}

func (c *Controller) fail() State {
	return c.setStep(Failed)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
