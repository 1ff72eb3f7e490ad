package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
)

// Issue is a tracker issue to open.
type Issue struct {
	Title  string
	Body   string
	Labels []string
}

// IssueTracker opens issues and returns a link to the new one.
type IssueTracker interface {
	CreateIssue(ctx context.Context, is Issue) (string, error)
}

type GitHubIssues struct {
	client *github.Client
	owner  string
	repo   string
}

func NewGitHubIssues(hc *http.Client, token, owner, repo string) *GitHubIssues {
	c := github.NewClient(hc)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &GitHubIssues{client: c, owner: owner, repo: repo}
}

func (g *GitHubIssues) CreateIssue(ctx context.Context, is Issue) (string, error) {
	req := &github.IssueRequest{
		Title: github.String(is.Title),
		Body:  github.String(is.Body),
	}
	if len(is.Labels) > 0 {
		req.Labels = &is.Labels
	}
	created, _, err := g.client.Issues.Create(ctx, g.owner, g.repo, req)
	if err != nil {
		return "", fmt.Errorf("create issue in %s/%s: %w", g.owner, g.repo, err)
	}
	return created.GetHTMLURL(), nil
}
