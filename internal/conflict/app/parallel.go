package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// runParallel distributes pair trials across the workspace pool. Execution
// order is unconstrained; matrix content is not, because every trial writes
// only its own slot and trials share no cross-trial state.
func (b *Builder) runParallel(
	ctx context.Context,
	pairs [][2]domain.PullRequest,
	results []domain.MergeTrialResult,
) error {
	slots := make(chan Workspace, len(b.workspaces))
	for _, ws := range b.workspaces {
		slots <- ws
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(b.workspaces))

	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			var ws Workspace
			select {
			case ws = <-slots:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { slots <- ws }()

			r, err := b.prober.Trial(gctx, ws, pair[0], pair[1])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	return g.Wait()
}
