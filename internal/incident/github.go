package incident

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const githubAPIBase = "https://api.github.com"

// defaultTrackerTimeout bounds one tracker call so a slow tracker can
// never block a page render forever.
const defaultTrackerTimeout = 10 * time.Second

// GitHubConfig holds credentials for the repository that tracks
// incidents as issues.
type GitHubConfig struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// Token is a bearer token. Empty means unauthenticated requests,
	// which GitHub rate-limits aggressively.
	Token string `yaml:"-"`

	// BaseURL overrides the API host for GitHub Enterprise or tests.
	BaseURL string `yaml:"baseURL,omitempty"`
}

// GitHubStore implements IssueStore over the GitHub REST API.
type GitHubStore struct {
	cfg    GitHubConfig
	client *http.Client
}

// NewGitHubStore makes a store with a bounded request timeout.
func NewGitHubStore(cfg GitHubConfig) *GitHubStore {
	return &GitHubStore{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTrackerTimeout},
	}
}

func (g *GitHubStore) baseURL() string {
	if g.cfg.BaseURL != "" {
		return strings.TrimSuffix(g.cfg.BaseURL, "/")
	}
	return githubAPIBase
}

func (g *GitHubStore) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := g.baseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return kenererr.New(api.ErrUpstream, err, "failed to encode tracker request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return kenererr.New(api.ErrUpstream, err, "failed to build tracker request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return kenererr.New(api.ErrUpstream, err, "tracker call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return kenererr.New(api.ErrUpstream, nil, "tracker returned %s for %s %s", resp.Status, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return kenererr.New(api.ErrUpstream, err, "malformed tracker response")
		}
	}
	return nil
}

// githubIssue is the wire shape of an issue; labels arrive as objects.
type githubIssue struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	Labels    []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct{} `json:"pull_request"`
}

func (gi githubIssue) toIssue() Issue {
	labels := make([]string, 0, len(gi.Labels))
	for _, l := range gi.Labels {
		labels = append(labels, l.Name)
	}
	return Issue{
		Number:    gi.Number,
		Title:     gi.Title,
		Body:      gi.Body,
		Labels:    labels,
		State:     gi.State,
		CreatedAt: gi.CreatedAt,
		ClosedAt:  gi.ClosedAt,
	}
}

func (g *GitHubStore) repoPath(suffix string) string {
	return fmt.Sprintf("/repos/%s/%s/issues%s", g.cfg.Owner, g.cfg.Repo, suffix)
}

// pageSize is the GitHub API maximum per page. A response shorter
// than this is the last page.
const pageSize = 100

// ListIssues lists issues carrying every label in the query,
// following pagination until the last page.
func (g *GitHubStore) ListIssues(ctx context.Context, q IssueQuery) ([]Issue, error) {
	query := url.Values{}
	query.Set("labels", strings.Join(q.Labels, ","))
	query.Set("per_page", strconv.Itoa(pageSize))
	state := q.State
	if state == "" {
		state = "all"
	}
	query.Set("state", state)
	if !q.Since.IsZero() {
		query.Set("since", q.Since.UTC().Format(time.RFC3339))
	}

	var issues []Issue
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))

		var raw []githubIssue
		if err := g.do(ctx, http.MethodGet, g.repoPath(""), query, nil, &raw); err != nil {
			return nil, err
		}

		for _, gi := range raw {
			// The issues endpoint also returns pull requests.
			if gi.PullRequest != nil {
				continue
			}
			// GitHub's since filter matches updated time, not creation.
			if !q.Since.IsZero() && gi.CreatedAt.Before(q.Since) {
				continue
			}
			issues = append(issues, gi.toIssue())
		}

		if len(raw) < pageSize {
			return issues, nil
		}
	}
}

func (g *GitHubStore) CreateIssue(ctx context.Context, issue Issue) (Issue, error) {
	payload := map[string]any{
		"title":  issue.Title,
		"body":   issue.Body,
		"labels": issue.Labels,
	}
	var raw githubIssue
	if err := g.do(ctx, http.MethodPost, g.repoPath(""), nil, payload, &raw); err != nil {
		return Issue{}, err
	}
	return raw.toIssue(), nil
}

func (g *GitHubStore) UpdateIssue(ctx context.Context, number int, issue Issue) (Issue, error) {
	payload := map[string]any{
		"title":  issue.Title,
		"body":   issue.Body,
		"labels": issue.Labels,
	}
	if issue.State != "" {
		payload["state"] = issue.State
	}
	var raw githubIssue
	if err := g.do(ctx, http.MethodPatch, g.repoPath(fmt.Sprintf("/%d", number)), nil, payload, &raw); err != nil {
		return Issue{}, err
	}
	return raw.toIssue(), nil
}

type githubComment struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ListComments returns the issue's comments in creation order,
// following pagination until the last page.
func (g *GitHubStore) ListComments(ctx context.Context, number int) ([]IssueComment, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(pageSize))

	var comments []IssueComment
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))

		var raw []githubComment
		if err := g.do(ctx, http.MethodGet, g.repoPath(fmt.Sprintf("/%d/comments", number)), query, nil, &raw); err != nil {
			return nil, err
		}

		for _, c := range raw {
			comments = append(comments, IssueComment{Body: c.Body, CreatedAt: c.CreatedAt})
		}

		if len(raw) < pageSize {
			return comments, nil
		}
	}
}

func (g *GitHubStore) CreateComment(ctx context.Context, number int, body string) (IssueComment, error) {
	var raw githubComment
	err := g.do(ctx, http.MethodPost, g.repoPath(fmt.Sprintf("/%d/comments", number)), nil, map[string]any{"body": body}, &raw)
	if err != nil {
		return IssueComment{}, err
	}
	return IssueComment{Body: raw.Body, CreatedAt: raw.CreatedAt}, nil
}
