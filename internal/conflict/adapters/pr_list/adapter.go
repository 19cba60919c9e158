package prlist

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// Adapter lists open pull requests by querying the GitHub API.
type Adapter struct {
	client *github.Client
}

// New creates a new PR listing adapter.
func New(client *github.Client) *Adapter {
	return &Adapter{client: client}
}

// ListOpen returns the repository's open, non-draft pull requests, ascending
// by number. When baseBranch is non-empty, only PRs targeting it are kept.
func (a *Adapter) ListOpen(ctx context.Context, owner, repo, baseBranch string) ([]domain.PullRequest, error) {
	client := a.client

	opts := &github.PullRequestListOptions{
		State:     "open",
		Base:      baseBranch,
		Sort:      "created",
		Direction: "asc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var prs []domain.PullRequest
	for {
		page, resp, err := client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests: %w", err)
		}

		for _, pr := range page {
			if pr.GetDraft() {
				continue
			}
			prs = append(prs, domain.PullRequest{
				Number:  pr.GetNumber(),
				Title:   pr.GetTitle(),
				BaseRef: pr.GetBase().GetRef(),
				HeadRef: pr.GetHead().GetRef(),
				HeadSHA: pr.GetHead().GetSHA(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return prs, nil
}
