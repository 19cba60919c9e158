package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// fakeRepo is the shared scenario behind one or more fake workspaces. It
// scripts which pairs conflict and which PRs are broken, and counts how
// often each PR takes part in a pairwise trial.
type fakeRepo struct {
	mu sync.Mutex

	conflicts     map[domain.PairKey][]string // pair -> conflicting files
	baseConflicts map[int][]string            // pr -> files conflicting with base
	fetchFails    map[int]string              // pr -> fetch error message
	toolFails     map[domain.PairKey]bool     // pairwise probe hits a tool error

	appliedFirst []int       // which PR each trial applied first
	trialTouches map[int]int // pairwise trial participation per PR
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		conflicts:     make(map[domain.PairKey][]string),
		baseConflicts: make(map[int][]string),
		fetchFails:    make(map[int]string),
		toolFails:     make(map[domain.PairKey]bool),
		trialTouches:  make(map[int]int),
	}
}

func (r *fakeRepo) workspace() *fakeWorkspace {
	return &fakeWorkspace{repo: r}
}

func (r *fakeRepo) workspaces(n int) []Workspace {
	out := make([]Workspace, n)
	for i := range out {
		out[i] = r.workspace()
	}
	return out
}

func (r *fakeRepo) touches(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trialTouches[n]
}

// fakeWorkspace tracks only the merges stacked since the last PrepareBase;
// everything else lives in the shared fakeRepo.
type fakeWorkspace struct {
	repo    *fakeRepo
	applied []int
}

func fakeRef(n int) string { return fmt.Sprintf("pr-%d", n) }

func fakeRefNum(ref string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(ref, "pr-"))
	return n
}

func (ws *fakeWorkspace) PrepareBase(_ context.Context) error {
	ws.applied = nil
	return nil
}

func (ws *fakeWorkspace) FetchHead(_ context.Context, pr domain.PullRequest) (string, error) {
	ws.repo.mu.Lock()
	msg, failed := ws.repo.fetchFails[pr.Number]
	ws.repo.mu.Unlock()
	if failed {
		return "", domain.NewWorkspaceError(domain.FetchFailed, "fetch", pr.HeadRef, errors.New(msg))
	}
	return fakeRef(pr.Number), nil
}

func (ws *fakeWorkspace) Apply(_ context.Context, ref string) (domain.MergeOutcome, error) {
	n := fakeRefNum(ref)

	ws.repo.mu.Lock()
	if len(ws.applied) == 0 {
		ws.repo.appliedFirst = append(ws.repo.appliedFirst, n)
	}
	ws.repo.trialTouches[n]++
	baseFiles := ws.repo.baseConflicts[n]
	ws.repo.mu.Unlock()

	if len(ws.applied) == 0 && len(baseFiles) > 0 {
		return domain.MergeOutcome{Conflicted: true, Files: baseFiles}, nil
	}
	for _, m := range ws.applied {
		if files := ws.repo.pairFiles(m, n); len(files) > 0 {
			return domain.MergeOutcome{Conflicted: true, Files: files}, nil
		}
	}
	ws.applied = append(ws.applied, n)
	return domain.MergeOutcome{}, nil
}

func (ws *fakeWorkspace) Probe(_ context.Context, ref string) (domain.MergeOutcome, error) {
	n := fakeRefNum(ref)

	if len(ws.applied) == 0 {
		// Viability probe against the bare base.
		ws.repo.mu.Lock()
		baseFiles := ws.repo.baseConflicts[n]
		ws.repo.mu.Unlock()
		if len(baseFiles) > 0 {
			return domain.MergeOutcome{Conflicted: true, Files: baseFiles}, nil
		}
		return domain.MergeOutcome{}, nil
	}

	ws.repo.mu.Lock()
	ws.repo.trialTouches[n]++
	ws.repo.mu.Unlock()

	for _, m := range ws.applied {
		key := domain.NewPairKey(m, n)
		ws.repo.mu.Lock()
		toolFail := ws.repo.toolFails[key]
		ws.repo.mu.Unlock()
		if toolFail {
			return domain.MergeOutcome{}, domain.NewWorkspaceError(
				domain.ToolFailure, "merge", ref, errors.New("index.lock held"))
		}
		if files := ws.repo.pairFiles(m, n); len(files) > 0 {
			return domain.MergeOutcome{
				Conflicted: true,
				Files:      files,
				Diff:       fmt.Sprintf("diff between #%d and #%d", key.Lo, key.Hi),
			}, nil
		}
	}
	return domain.MergeOutcome{}, nil
}

func (r *fakeRepo) pairFiles(a, b int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conflicts[domain.NewPairKey(a, b)]
}
