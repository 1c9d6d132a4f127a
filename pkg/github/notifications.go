package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
)

// ListOptions filters GetNotifications.
type ListOptions struct {
	// All includes notifications already marked as read.
	All bool
	// Participating limits results to threads the user participates in or is mentioned in.
	Participating bool
	// PerPage caps the page size. Zero uses the API default.
	PerPage int
}

type ownerDto struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
	Type      string `json:"type"`
	SiteAdmin bool   `json:"site_admin"`
}

type repositoryDto struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Owner       ownerDto `json:"owner"`
	Private     bool     `json:"private"`
	HTMLURL     string   `json:"html_url"`
	Description *string  `json:"description"`
	Fork        bool     `json:"fork"`
	URL         string   `json:"url"`
}

type subjectDto struct {
	Title            string  `json:"title"`
	URL              *string `json:"url"`
	LatestCommentURL *string `json:"latest_comment_url"`
	Type             string  `json:"type"`
}

type notificationDto struct {
	ID              string        `json:"id"`
	Repository      repositoryDto `json:"repository"`
	Subject         subjectDto    `json:"subject"`
	Reason          string        `json:"reason"`
	Unread          bool          `json:"unread"`
	UpdatedAt       string        `json:"updated_at"`
	LastReadAt      *string       `json:"last_read_at"`
	URL             string        `json:"url"`
	SubscriptionURL string        `json:"subscription_url"`
}

// GetNotifications lists the notification threads of the authenticated user.
// Errors from the API wrap a core.NetworkError kind; ErrNotLoggedIn is
// returned when no token is available.
func (c *Client) GetNotifications(ctx context.Context, opts ListOptions) (_ []core.Notification, err error) {
	ctx, span := c.startSpan(ctx, "github.GetNotifications",
		attribute.Bool("github.all", opts.All),
	)
	defer func() { endSpan(span, err) }()

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if opts.All {
		query.Set("all", "true")
	}
	if opts.Participating {
		query.Set("participating", "true")
	}
	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	endpoint := c.constructURL("/notifications")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifications request: %w", err)
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	var body []notificationDto
	if err := c.safeCall(ctx, req, &body); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("github.notifications", len(body)))
	notifications := make([]core.Notification, 0, len(body))
	for _, dto := range body {
		notifications = append(notifications, dto.toNotification())
	}
	return notifications, nil
}

func (d notificationDto) toNotification() core.Notification {
	return core.Notification{
		ID: d.ID,
		Repository: core.Repository{
			ID:       d.Repository.ID,
			Name:     d.Repository.Name,
			FullName: d.Repository.FullName,
			Owner: core.Owner{
				Login:     d.Repository.Owner.Login,
				ID:        d.Repository.Owner.ID,
				AvatarURL: d.Repository.Owner.AvatarURL,
				HTMLURL:   d.Repository.Owner.HTMLURL,
				Type:      d.Repository.Owner.Type,
				SiteAdmin: d.Repository.Owner.SiteAdmin,
			},
			Private:     d.Repository.Private,
			HTMLURL:     d.Repository.HTMLURL,
			Description: deref(d.Repository.Description),
			Fork:        d.Repository.Fork,
			URL:         d.Repository.URL,
		},
		Subject: core.Subject{
			Title:            d.Subject.Title,
			URL:              deref(d.Subject.URL),
			LatestCommentURL: deref(d.Subject.LatestCommentURL),
			Type:             d.Subject.Type,
		},
		Reason:          d.Reason,
		Unread:          d.Unread,
		UpdatedAt:       parseTime(d.UpdatedAt),
		LastReadAt:      parseTime(deref(d.LastReadAt)),
		URL:             d.URL,
		SubscriptionURL: d.SubscriptionURL,
	}
}

// parseTime parses an RFC 3339 timestamp, falling back to the Unix epoch.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
