// Package notifications provides the MCP tool listing GitHub notifications.
package notifications

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/go-training/gh-notifier/pkg/github"
	"github.com/go-training/gh-notifier/pkg/notification"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListNotificationsTool lists the user's notification threads.
var ListNotificationsTool = mcp.NewTool("list_notifications",
	mcp.WithDescription(`List GitHub notifications

Output:
  A JSON array of notifications, newest first, each with id, repo_info
  ("owner/repo #number"), title, description, icon, relative_time, is_read
  and the browser url of the thread.

Error Conditions:
  - Not logged in: run login_url and complete_login first.
  - Network failures are reported by category (request timeout, too many
    requests, no internet connection, server error, serialization error).`),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithBoolean("unread_only",
		mcp.Description("Only return unread notifications."),
		mcp.DefaultBool(true),
	),
	mcp.WithBoolean("participating",
		mcp.Description("Only return notifications where the user is directly participating or mentioned."),
		mcp.DefaultBool(false),
	),
)

// Item is one notification in the tool output.
type Item struct {
	ID           string `json:"id"`
	RepoInfo     string `json:"repo_info"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	RelativeTime string `json:"relative_time"`
	IsRead       bool   `json:"is_read"`
	URL          string `json:"url"`
}

// Handler serves list_notifications.
type Handler struct {
	Source notification.Source
}

// HandleListNotifications serves list_notifications.
func (h *Handler) HandleListNotifications(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := core.LoggerFromCtx(ctx)
	logger.Info("Handling list_notifications tool")

	opts := github.ListOptions{
		All:           !req.GetBool("unread_only", true),
		Participating: req.GetBool("participating", false),
	}

	p := notification.New(h.Source)
	defer p.Close()

	views, err := p.Load(ctx, opts)
	if err != nil {
		if errors.Is(err, github.ErrNotLoggedIn) {
			if !core.StoredTokenAllowed(ctx) {
				return mcp.NewToolResultError("not logged in to GitHub: send a GitHub token as an Authorization bearer token"), nil
			}
			return mcp.NewToolResultError("not logged in to GitHub: run login_url and complete_login first"), nil
		}
		return mcp.NewToolResultErrorFromErr(core.NetworkErrorOf(err).Error(), err), nil
	}

	items := make([]Item, 0, len(views))
	for _, v := range views {
		items = append(items, Item{
			ID:           v.ID,
			RepoInfo:     v.RepoInfo,
			Title:        v.Title,
			Description:  v.Description,
			Icon:         string(v.Icon),
			RelativeTime: v.RelativeTime,
			IsRead:       v.IsRead,
			URL:          v.URL,
		})
	}

	data, err := json.Marshal(items)
	if err != nil {
		logger.Error("Failed to marshal notifications to JSON", "error", err)
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
