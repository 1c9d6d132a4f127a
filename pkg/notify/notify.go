// Package notify raises desktop notifications for GitHub activity.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-training/gh-notifier/pkg/core"

	"github.com/gen2brain/beeep"
)

// Channel groups notifications of one kind, mirroring the channels mobile
// platforms require before a notification can be posted.
type Channel struct {
	ID          string
	Name        string
	Description string
}

// GitHubChannel is the channel every GitHub notification is posted on.
var GitHubChannel = Channel{
	ID:          "github_channel",
	Name:        "GitHub Notifications",
	Description: "Channel for GitHub related notifications",
}

// ErrUnknownChannel is returned by Show for a channel that was never created.
var ErrUnknownChannel = errors.New("notification channel not registered")

// Backend posts a notification to the desktop.
type Backend interface {
	Notify(title, message string) error
}

// BeeepBackend posts through the OS notification service.
type BeeepBackend struct {
	// Icon is a path to an image shown with the notification. Empty uses the default.
	Icon string
}

// Notify implements Backend.
func (b BeeepBackend) Notify(title, message string) error {
	return beeep.Notify(title, message, b.Icon)
}

// Handler posts notifications on registered channels.
type Handler struct {
	mu       sync.RWMutex
	channels map[string]Channel
	backend  Backend
}

// NewHandler returns a Handler posting through backend. appName is shown by
// the OS as the notification source.
func NewHandler(backend Backend, appName string) *Handler {
	if appName != "" {
		beeep.AppName = appName
	}
	return &Handler{
		channels: make(map[string]Channel),
		backend:  backend,
	}
}

// CreateChannels registers channels. With no arguments it registers GitHubChannel.
// Registering an existing id replaces it.
func (h *Handler) CreateChannels(channels ...Channel) {
	if len(channels) == 0 {
		channels = []Channel{GitHubChannel}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range channels {
		h.channels[c.ID] = c
	}
}

// Channel returns the registered channel for id.
func (h *Handler) Channel(id string) (Channel, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.channels[id]
	return c, ok
}

// Show posts a notification. url, when set, is appended to the message so
// the user can follow it from the notification.
func (h *Handler) Show(ctx context.Context, id, title, message, channelID, url string) error {
	if _, ok := h.Channel(channelID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, channelID)
	}

	body := message
	if url != "" {
		body = message + "\n" + url
	}
	if err := h.backend.Notify(title, body); err != nil {
		return fmt.Errorf("failed to show notification %s: %w", id, err)
	}
	core.LoggerFromCtx(ctx).Debug("notification shown", "id", id, "channel", channelID)
	return nil
}
