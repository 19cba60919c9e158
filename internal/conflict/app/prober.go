package app

import (
	"context"
	"log/slog"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// Prober classifies one unordered pair of viable PRs against a shared base.
type Prober struct {
	log *slog.Logger
}

// NewProber creates a prober. A nil logger falls back to slog.Default.
func NewProber(log *slog.Logger) *Prober {
	if log == nil {
		log = slog.Default()
	}
	return &Prober{log: log}
}

// Trial produces exactly one classified result for the pair (a, b): the
// lower-numbered PR is applied onto the base, then the other is probed on
// top, so results are reproducible across runs regardless of input order.
//
// Tool-level failures are captured as ERROR trials rather than returned;
// the error return is non-nil only when ctx is done, which aborts the run.
func (p *Prober) Trial(ctx context.Context, ws Workspace, a, b domain.PullRequest) (domain.MergeTrialResult, error) {
	if b.Number < a.Number {
		a, b = b, a
	}

	errTrial := func(format string, args ...any) (domain.MergeTrialResult, error) {
		if ctx.Err() != nil {
			return domain.MergeTrialResult{}, ctx.Err()
		}
		return domain.ErrorTrial(a.Number, b.Number, format, args...), nil
	}

	refA, err := ws.FetchHead(ctx, a)
	if err != nil {
		return errTrial("PR #%d: %v", a.Number, err)
	}
	refB, err := ws.FetchHead(ctx, b)
	if err != nil {
		return errTrial("PR #%d: %v", b.Number, err)
	}

	if err := ws.PrepareBase(ctx); err != nil {
		return errTrial("preparing base: %v", err)
	}

	applied, err := ws.Apply(ctx, refA)
	if err != nil {
		return errTrial("applying PR #%d onto base: %v", a.Number, err)
	}
	if applied.Conflicted {
		// Passed the viability precheck but conflicts now: the branch moved
		// under us. The pair cannot be meaningfully compared.
		return errTrial("PR #%d no longer applies cleanly onto base", a.Number)
	}

	probe, err := ws.Probe(ctx, refB)
	if err != nil {
		return errTrial("probing PR #%d on top of PR #%d: %v", b.Number, a.Number, err)
	}

	if err := ws.PrepareBase(ctx); err != nil {
		if ctx.Err() != nil {
			return domain.MergeTrialResult{}, ctx.Err()
		}
		p.log.Warn("restoring workspace after trial failed", "pair", []int{a.Number, b.Number}, "error", err)
	}

	result := domain.MergeTrialResult{Pair: domain.NewPairKey(a.Number, b.Number)}
	if probe.Conflicted {
		result.Outcome = domain.OutcomeConflict
		result.Files = probe.Files
		result.Detail = probe.Diff
		p.log.Debug("pair conflicts", "a", a.Number, "b", b.Number, "files", probe.Files)
	} else {
		result.Outcome = domain.OutcomeClean
		p.log.Debug("pair merges cleanly", "a", a.Number, "b", b.Number)
	}
	return result, nil
}
