package notification

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
)

// Icon identifies the glyph shown next to a notification.
type Icon string

const (
	IconPullRequest Icon = "pull-request"
	IconIssue       Icon = "issue"
	IconDiscussion  Icon = "discussion"
)

// View is a notification prepared for display.
type View struct {
	ID           string
	RepoInfo     string
	Title        string
	Description  string
	Icon         Icon
	UpdatedAt    time.Time
	RelativeTime string
	IsRead       bool
	URL          string
	AvatarURL    string
}

var subjectURLPattern = regexp.MustCompile(`https://api\.github\.com/repos/([^/]+)/([^/]+)/([^/]+)/(.+)`)

// ToView maps a notification for display relative to now.
func ToView(n core.Notification, now time.Time) View {
	return View{
		ID:           n.ID,
		RepoInfo:     RepoInfo(n),
		Title:        n.Subject.Title,
		Description:  Describe(n.Reason, n.Subject.Type),
		Icon:         IconFor(n.Subject.Type),
		UpdatedAt:    n.UpdatedAt,
		RelativeTime: RelativeTime(n.UpdatedAt, now),
		IsRead:       !n.Unread,
		URL:          HTMLURL(n.Subject.URL, n.Repository.HTMLURL),
		AvatarURL:    n.Repository.Owner.AvatarURL,
	}
}

// IconFor picks the icon for a subject type. Unknown types use the issue icon.
func IconFor(subjectType string) Icon {
	switch subjectType {
	case "PullRequest":
		return IconPullRequest
	case "Discussion":
		return IconDiscussion
	default:
		return IconIssue
	}
}

// RepoInfo renders "owner/repo #N" where N is the last segment of the subject URL.
func RepoInfo(n core.Notification) string {
	url := n.Subject.URL
	number := url[strings.LastIndex(url, "/")+1:]
	return fmt.Sprintf("%s #%s", n.Repository.FullName, number)
}

// Describe explains why the user received the notification.
func Describe(reason, subjectType string) string {
	kind := strings.ToLower(subjectType)
	switch reason {
	case "assign":
		return fmt.Sprintf("You were assigned to this %s.", kind)
	case "author":
		return fmt.Sprintf("You're the author of this %s.", kind)
	case "comment":
		return fmt.Sprintf("Someone commented on this %s.", kind)
	case "invitation":
		return "You've been invited to collaborate on this repository."
	case "manual":
		return fmt.Sprintf("You manually subscribed to this %s.", kind)
	case "mention":
		return fmt.Sprintf("You were mentioned in this %s.", kind)
	case "review_requested":
		return "You were requested to review this pull request."
	case "security_alert":
		return "There is a security alert related to this repository."
	case "state_change":
		return fmt.Sprintf("This %s was updated.", kind)
	case "subscribed":
		return fmt.Sprintf("You are subscribed to updates on this %s.", kind)
	case "team_mention":
		return fmt.Sprintf("Your team was mentioned in this %s.", kind)
	default:
		return fmt.Sprintf("There’s an update to this %s.", kind)
	}
}

// RelativeTime renders the distance between t and now as "Ns", "Nm", "Nh",
// "Nd" or "Nw". Times in the future are treated like times in the past.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int64(d/(24*time.Hour)))
	default:
		return fmt.Sprintf("%dw", int64(d/(7*24*time.Hour)))
	}
}

// HTMLURL converts a subject API URL into the github.com page for it.
// URLs of unknown kinds fall back to repoHTMLURL.
func HTMLURL(apiURL, repoHTMLURL string) string {
	m := subjectURLPattern.FindStringSubmatch(apiURL)
	if m == nil {
		return repoHTMLURL
	}
	owner, repo, kind, rest := m[1], m[2], m[3], m[4]

	var segment string
	switch kind {
	case "pulls":
		segment = "pull"
	case "issues":
		segment = "issues"
	case "commits":
		segment = "commit"
	case "releases":
		segment = "releases"
	case "discussions":
		segment = "discussions"
	case "comments":
		segment = "issues/comments"
	default:
		return repoHTMLURL
	}
	return fmt.Sprintf("https://github.com/%s/%s/%s/%s", owner, repo, segment, rest)
}
