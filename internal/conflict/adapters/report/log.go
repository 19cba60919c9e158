package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

// Meta identifies the run a log belongs to.
type Meta struct {
	RepoURL    string
	BaseBranch string
	BaseSHA    string
}

// WriteLog writes the textual execution log: run identity, per-PR
// availability, one line per trial with its diagnostics, and a summary.
// Output is deterministic for a given matrix.
func WriteLog(w io.Writer, meta Meta, matrix *domain.ConflictMatrix, prs []domain.PullRequest) error {
	titles := make(map[int]string, len(prs))
	for _, pr := range prs {
		titles[pr.Number] = pr.Title
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "repository: %s\n", meta.RepoURL)
	fmt.Fprintf(&sb, "base: %s @ %s\n", meta.BaseBranch, meta.BaseSHA)
	fmt.Fprintf(&sb, "pull requests: %d\n\n", len(matrix.Numbers()))

	for _, n := range matrix.Numbers() {
		fmt.Fprintf(&sb, "#%d %s", n, titles[n])
		if matrix.Availability(n) == domain.Unavailable {
			fmt.Fprintf(&sb, " [unavailable: %s]", matrix.UnavailableReason(n))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, r := range matrix.Results() {
		fmt.Fprintf(&sb, "#%d x #%d: %s", r.Pair.Lo, r.Pair.Hi, r.Outcome)
		if len(r.Files) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(r.Files, ", "))
		}
		sb.WriteString("\n")
		if r.Detail != "" {
			for _, line := range strings.Split(r.Detail, "\n") {
				fmt.Fprintf(&sb, "    %s\n", line)
			}
		}
	}

	clean, conflicts, errored := domain.CountByOutcome(matrix.Results())
	fmt.Fprintf(&sb, "\nsummary: %d clean, %d conflicting, %d not evaluated\n", clean, conflicts, errored)

	_, err := io.WriteString(w, sb.String())
	return err
}
