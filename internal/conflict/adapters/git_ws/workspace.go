// Package gitws manages disposable git clones for trial merges. It is the
// only component that touches checkout state; callers see the result of an
// operation, never the raw repository state.
package gitws

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	linediff "github.com/nathantilsley/merge-sentry/internal/conflict/adapters/line_diff"
	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// DefaultGitTimeout bounds each individual git invocation. A hung invocation
// fails only the trial it belongs to, never the whole run.
const DefaultGitTimeout = 60 * time.Second

// Options configures a workspace clone.
type Options struct {
	BaseBranch string        // empty = remote default branch
	GitTimeout time.Duration // per git invocation, DefaultGitTimeout when zero
	Logger     *slog.Logger
}

// Workspace is a single disposable clone. One checkout at a time: operations
// must not be interleaved from multiple goroutines. Use ClonePool for
// parallel probing.
type Workspace struct {
	dir        string
	baseBranch string
	baseSHA    string
	timeout    time.Duration
	log        *slog.Logger
	differ     *linediff.Adapter
	fetched    map[int]string // PR number -> scoped local ref
}

// Clone creates a fresh clone of repoURL in a temp directory and pins the
// base branch to a commit SHA; every later trial anchors to that SHA.
// The caller must invoke cleanup() when done to remove the clone.
func Clone(ctx context.Context, repoURL string, opts Options) (*Workspace, func(), error) {
	if opts.GitTimeout <= 0 {
		opts.GitTimeout = DefaultGitTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	tmpDir, err := os.MkdirTemp("", "merge-sentry-*")
	if err != nil {
		return nil, nil, domain.NewWorkspaceError(domain.IOFailure, "mkdir", "", err)
	}
	//nolint:errcheck // Cleanup function, error not actionable
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	w := &Workspace{
		dir:     tmpDir,
		timeout: opts.GitTimeout,
		log:     opts.Logger,
		differ:  linediff.New(),
		fetched: make(map[int]string),
	}

	if _, err := w.run(ctx, "clone", "--quiet", repoURL, "."); err != nil {
		cleanup()
		return nil, nil, domain.NewWorkspaceError(domain.FetchFailed, "clone", repoURL, err)
	}

	w.baseBranch = opts.BaseBranch
	if w.baseBranch == "" {
		w.baseBranch = w.defaultBranch(ctx)
	}

	sha, err := w.run(ctx, "rev-parse", "origin/"+w.baseBranch)
	if err != nil {
		cleanup()
		return nil, nil, domain.NewWorkspaceError(domain.RefNotFound, "rev-parse", "origin/"+w.baseBranch, err)
	}
	w.baseSHA = sha

	// Trial merges commit locally; the clone needs an identity.
	for _, kv := range [][2]string{
		{"user.name", "merge-sentry"},
		{"user.email", "merge-sentry@localhost"},
		{"advice.detachedHead", "false"},
	} {
		if _, err := w.run(ctx, "config", kv[0], kv[1]); err != nil {
			cleanup()
			return nil, nil, domain.NewWorkspaceError(domain.IOFailure, "config", kv[0], err)
		}
	}

	w.log.Debug("workspace ready", "dir", tmpDir, "base", w.baseBranch, "sha", sha)
	return w, cleanup, nil
}

// Dir returns the clone's directory on disk.
func (w *Workspace) Dir() string { return w.dir }

// BaseBranch returns the branch all trials anchor to.
func (w *Workspace) BaseBranch() string { return w.baseBranch }

// BaseSHA returns the pinned base commit.
func (w *Workspace) BaseSHA() string { return w.baseSHA }

// defaultBranch resolves the remote HEAD branch, falling back to "main".
func (w *Workspace) defaultBranch(ctx context.Context) string {
	out, err := w.run(ctx, "symbolic-ref", "--short", "refs/remotes/origin/HEAD")
	if err == nil {
		// output is "origin/main" — strip the remote prefix
		if _, after, ok := strings.Cut(out, "/"); ok {
			return after
		}
	}
	return "main"
}

// PrepareBase hard-resets the workspace to the pinned base commit,
// discarding any modified or untracked files.
func (w *Workspace) PrepareBase(ctx context.Context) error {
	// Abort whatever a previous trial may have left in flight. Best effort:
	// the common case is that no merge is in progress.
	_, _ = w.run(ctx, "merge", "--abort")

	for _, args := range [][]string{
		{"checkout", "--detach", w.baseSHA},
		{"reset", "--hard", w.baseSHA},
		{"clean", "-fdx"},
	} {
		if _, err := w.run(ctx, args...); err != nil {
			kind := domain.IOFailure
			if refMissing(err) {
				kind = domain.RefNotFound
			}
			return domain.NewWorkspaceError(kind, args[0], w.baseSHA, err)
		}
	}
	return nil
}

// FetchHead makes the PR's head commit available under a scoped local ref
// without altering the current checkout. Fetches are cached per PR number.
func (w *Workspace) FetchHead(ctx context.Context, pr domain.PullRequest) (string, error) {
	if ref, ok := w.fetched[pr.Number]; ok {
		return ref, nil
	}

	local := fmt.Sprintf("refs/merge-sentry/pr-%d", pr.Number)
	spec := "+" + pr.HeadRef + ":" + local
	if _, err := w.run(ctx, "fetch", "--quiet", "origin", spec); err != nil {
		return "", domain.NewWorkspaceError(domain.FetchFailed, "fetch", pr.HeadRef, err)
	}

	// The branch may have moved since the PR was listed. Pin the ref to the
	// listed head commit when it is reachable, so reruns stay comparable.
	if pr.HeadSHA != "" {
		if _, err := w.run(ctx, "cat-file", "-e", pr.HeadSHA+"^{commit}"); err == nil {
			if _, err := w.run(ctx, "update-ref", local, pr.HeadSHA); err != nil {
				return "", domain.NewWorkspaceError(domain.ToolFailure, "update-ref", local, err)
			}
		}
	}

	w.fetched[pr.Number] = local
	return local, nil
}

// Apply merges ref into the current checkout and keeps the result as a local
// commit. A conflicting merge is aborted and reported as a MergeOutcome, not
// an error.
func (w *Workspace) Apply(ctx context.Context, ref string) (domain.MergeOutcome, error) {
	_, err := w.run(ctx, "merge", "--no-ff", "-m", "trial merge "+ref, ref)
	if err == nil {
		return domain.MergeOutcome{}, nil
	}
	return w.classifyMergeFailure(ctx, ref, err)
}

// Probe attempts to merge ref into the current checkout and always undoes
// the attempt before returning, success or failure.
func (w *Workspace) Probe(ctx context.Context, ref string) (domain.MergeOutcome, error) {
	head, err := w.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return domain.MergeOutcome{}, domain.NewWorkspaceError(domain.ToolFailure, "rev-parse", "HEAD", err)
	}
	defer w.restore(ctx, head)

	_, err = w.run(ctx, "merge", "--no-commit", "--no-ff", ref)
	if err == nil {
		return domain.MergeOutcome{}, nil
	}
	return w.classifyMergeFailure(ctx, ref, err)
}

// classifyMergeFailure separates a legitimate conflict from an unexpected
// tool error. Either way the in-flight merge is aborted.
func (w *Workspace) classifyMergeFailure(ctx context.Context, ref string, mergeErr error) (domain.MergeOutcome, error) {
	files, err := w.conflictedFiles(ctx)
	if err == nil && len(files) > 0 {
		diff := w.conflictDiff(files[0])
		_, _ = w.run(ctx, "merge", "--abort")
		return domain.MergeOutcome{Conflicted: true, Files: files, Diff: diff}, nil
	}
	_, _ = w.run(ctx, "merge", "--abort")
	return domain.MergeOutcome{}, domain.NewWorkspaceError(domain.ToolFailure, "merge", ref, mergeErr)
}

// conflictedFiles lists paths with unresolved conflicts, sorted.
func (w *Workspace) conflictedFiles(ctx context.Context) ([]string, error) {
	out, err := w.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	files := strings.Split(out, "\n")
	sort.Strings(files)
	return files, nil
}

// restore undoes a probe regardless of how the merge attempt ended.
func (w *Workspace) restore(ctx context.Context, head string) {
	_, _ = w.run(ctx, "merge", "--abort")
	if _, err := w.run(ctx, "reset", "--hard", head); err != nil {
		w.log.Warn("workspace reset failed", "dir", w.dir, "error", err)
	}
	if _, err := w.run(ctx, "clean", "-fd"); err != nil {
		w.log.Warn("workspace clean failed", "dir", w.dir, "error", err)
	}
}

// run executes one git command inside the clone with a per-invocation
// timeout. On failure git's own message becomes the error text.
func (w *Workspace) run(ctx context.Context, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", args...)
	cmd.Dir = w.dir
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return text, fmt.Errorf("git %s timed out after %s", args[0], w.timeout)
		}
		if text != "" {
			return text, fmt.Errorf("%s", text)
		}
		return text, err
	}
	return text, nil
}

func refMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{"unknown revision", "bad revision", "did not match any"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
