package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// Builder drives the prober across all unordered pairs of PRs and assembles
// the symmetric conflict matrix. With one workspace all trials run
// sequentially; with more, pair trials fan out across the pool.
type Builder struct {
	workspaces []Workspace
	prober     *Prober
	log        *slog.Logger
}

// NewBuilder creates a builder over the given workspace pool.
func NewBuilder(workspaces []Workspace, log *slog.Logger) (*Builder, error) {
	if len(workspaces) == 0 {
		return nil, errors.New("builder needs at least one workspace")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		workspaces: workspaces,
		prober:     NewProber(log),
		log:        log,
	}, nil
}

// Build runs the whole pipeline for the given PRs: input validation,
// per-PR precondition checks, then one trial per unordered viable pair.
//
// The returned matrix covers every input PR. PRs failing preconditions are
// marked unavailable and their cells are ERROR entries with no trial spent.
// Build returns an error only for structural input problems or when ctx is
// done; a cancelled run yields no partial matrix.
func (b *Builder) Build(ctx context.Context, prs []domain.PullRequest) (*domain.ConflictMatrix, error) {
	if len(prs) == 0 {
		return nil, domain.ErrNoPullRequests
	}

	sorted := make([]domain.PullRequest, len(prs))
	copy(sorted, prs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Number == sorted[i-1].Number {
			return nil, &domain.DuplicatePRError{Number: sorted[i].Number}
		}
	}

	numbers := make([]int, len(sorted))
	for i, pr := range sorted {
		numbers[i] = pr.Number
	}
	matrix := domain.NewConflictMatrix(numbers)

	viable, err := b.precheck(ctx, sorted, matrix)
	if err != nil {
		return nil, err
	}
	b.log.Info("preconditions checked", "total", len(sorted), "viable", len(viable))

	b.fillUnavailable(sorted, matrix)

	var pairs [][2]domain.PullRequest
	for i := range viable {
		for j := i + 1; j < len(viable); j++ {
			pairs = append(pairs, [2]domain.PullRequest{viable[i], viable[j]})
		}
	}

	results := make([]domain.MergeTrialResult, len(pairs))
	if len(b.workspaces) > 1 {
		err = b.runParallel(ctx, pairs, results)
	} else {
		err = b.runSequential(ctx, pairs, results)
	}
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		matrix.Record(r)
	}
	return matrix, nil
}

// precheck confirms each PR fetches and applies cleanly onto the base.
// Failures mark the PR unavailable instead of failing the run, so a broken
// PR costs one probe instead of n-1 pairwise trials.
func (b *Builder) precheck(
	ctx context.Context,
	prs []domain.PullRequest,
	matrix *domain.ConflictMatrix,
) ([]domain.PullRequest, error) {
	ws := b.workspaces[0]
	var viable []domain.PullRequest

	for _, pr := range prs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		ref, err := ws.FetchHead(ctx, pr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			matrix.MarkUnavailable(pr.Number, fmt.Sprintf("fetch failed: %v", err))
			b.log.Warn("pull request unavailable", "pr", pr.Number, "error", err)
			continue
		}

		if err := ws.PrepareBase(ctx); err != nil {
			// Not tied to this PR: the workspace itself is broken.
			return nil, fmt.Errorf("preparing base: %w", err)
		}

		outcome, err := ws.Probe(ctx, ref)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			matrix.MarkUnavailable(pr.Number, fmt.Sprintf("tool failure: %v", err))
			b.log.Warn("pull request unavailable", "pr", pr.Number, "error", err)
		case outcome.Conflicted:
			matrix.MarkUnavailable(pr.Number,
				fmt.Sprintf("does not apply cleanly onto base (conflicts: %v)", outcome.Files))
			b.log.Warn("pull request conflicts with base", "pr", pr.Number, "files", outcome.Files)
		default:
			viable = append(viable, pr)
		}
	}
	return viable, nil
}

// fillUnavailable records ERROR cells for every pair touching an unavailable
// PR, naming which side is broken. No trial merge is spent on these pairs.
func (b *Builder) fillUnavailable(prs []domain.PullRequest, matrix *domain.ConflictMatrix) {
	for i, prA := range prs {
		for _, prB := range prs[i+1:] {
			var broken []string
			for _, pr := range []domain.PullRequest{prA, prB} {
				if matrix.Availability(pr.Number) == domain.Unavailable {
					broken = append(broken,
						fmt.Sprintf("PR #%d unavailable: %s", pr.Number, matrix.UnavailableReason(pr.Number)))
				}
			}
			if len(broken) > 0 {
				matrix.Record(domain.ErrorTrial(prA.Number, prB.Number, "%s", strings.Join(broken, "; ")))
			}
		}
	}
}

func (b *Builder) runSequential(
	ctx context.Context,
	pairs [][2]domain.PullRequest,
	results []domain.MergeTrialResult,
) error {
	ws := b.workspaces[0]
	for i, pair := range pairs {
		r, err := b.prober.Trial(ctx, ws, pair[0], pair[1])
		if err != nil {
			return err
		}
		results[i] = r
	}
	return nil
}
