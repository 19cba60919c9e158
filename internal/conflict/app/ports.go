// Package app orchestrates pairwise merge trials into a conflict matrix.
package app

import (
	"context"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// Workspace is the port trial merges are driven through. An implementation
// owns one disposable clone; no call may leak state into the next, and a
// single workspace must not be used from more than one goroutine at a time.
type Workspace interface {
	// PrepareBase hard-resets the workspace to the pinned base commit.
	PrepareBase(ctx context.Context) error

	// FetchHead makes the PR's head commit available under a scoped local
	// ref without altering the current checkout.
	FetchHead(ctx context.Context, pr domain.PullRequest) (string, error)

	// Apply merges ref into the current checkout and keeps the result.
	// A conflicting merge is aborted and reported in the MergeOutcome.
	Apply(ctx context.Context, ref string) (domain.MergeOutcome, error)

	// Probe attempts to merge ref into the current checkout and always
	// undoes the attempt before returning.
	Probe(ctx context.Context, ref string) (domain.MergeOutcome, error)
}
