// Package incident correlates issue-tracker records with monitors:
// it queries incidents by label, reconstructs their timing from
// markers embedded in the issue body, and reshapes them for the
// status page.
package incident

import (
	"context"
	"time"
)

// Issue is a raw issue-tracker record.
type Issue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Labels    []string   `json:"labels"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
}

// IssueComment is a raw comment on an issue.
type IssueComment struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueQuery selects issues by labels, state, and creation window.
type IssueQuery struct {
	// Labels must all be present on a matching issue.
	Labels []string

	// State is "open", "closed", or "all".
	State string

	// Since drops issues created before it. The zero value means no
	// lower bound.
	Since time.Time
}

// IssueStore is the issue tracker the incidents live in. The tracker
// itself is an external collaborator; this package only reads and
// reshapes what it returns.
type IssueStore interface {
	ListIssues(ctx context.Context, q IssueQuery) ([]Issue, error)
	CreateIssue(ctx context.Context, issue Issue) (Issue, error)
	UpdateIssue(ctx context.Context, number int, issue Issue) (Issue, error)
	ListComments(ctx context.Context, number int) ([]IssueComment, error)
	CreateComment(ctx context.Context, number int, body string) (IssueComment, error)
}
