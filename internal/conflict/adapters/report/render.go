// Package report turns a finished conflict matrix into human-readable
// output: a styled terminal table and a plain-text execution log.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathantilsley/merge-sentry/internal/conflict/domain"
)

var (
	headStyle     = lipgloss.NewStyle().Bold(true)
	cleanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

const (
	cellClean    = "ok"
	cellConflict = "XX"
	cellError    = "!?"
	cellSelf     = "--"
)

// Render lays the matrix out as a terminal table with one row and column per
// PR, followed by a legend and any unavailability notes.
func Render(matrix *domain.ConflictMatrix) string {
	nums := matrix.Numbers()
	if len(nums) == 0 {
		return dimStyle.Render("no pull requests to compare") + "\n"
	}

	width := len(cellConflict)
	labels := make([]string, len(nums))
	for i, n := range nums {
		labels[i] = fmt.Sprintf("#%d", n)
		if len(labels[i]) > width {
			width = len(labels[i])
		}
	}

	var sb strings.Builder

	sb.WriteString(strings.Repeat(" ", width))
	for _, label := range labels {
		sb.WriteString("  ")
		sb.WriteString(headStyle.Render(pad(label, width)))
	}
	sb.WriteString("\n")

	for i, a := range nums {
		sb.WriteString(headStyle.Render(pad(labels[i], width)))
		for _, b := range nums {
			sb.WriteString("  ")
			sb.WriteString(cell(matrix, a, b, width))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s merges cleanly   %s conflict   %s could not be evaluated\n",
		cleanStyle.Render(cellClean), conflictStyle.Render(cellConflict), warnStyle.Render(cellError)))

	for _, n := range nums {
		if matrix.Availability(n) == domain.Unavailable {
			sb.WriteString(warnStyle.Render(fmt.Sprintf("#%d unavailable: %s", n, matrix.UnavailableReason(n))))
			sb.WriteString("\n")
		}
	}

	clean, conflicts, errored := domain.CountByOutcome(matrix.Results())
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d pairs: %d clean, %d conflicting, %d not evaluated",
		clean+conflicts+errored, clean, conflicts, errored)))
	sb.WriteString("\n")

	return sb.String()
}

func cell(matrix *domain.ConflictMatrix, a, b, width int) string {
	if a == b {
		return dimStyle.Render(pad(cellSelf, width))
	}
	r, ok := matrix.At(a, b)
	if !ok {
		return dimStyle.Render(pad("??", width))
	}
	switch r.Outcome {
	case domain.OutcomeConflict:
		return conflictStyle.Render(pad(cellConflict, width))
	case domain.OutcomeError:
		return warnStyle.Render(pad(cellError, width))
	default:
		return cleanStyle.Render(pad(cellClean, width))
	}
}

func pad(s string, width int) string {
	return fmt.Sprintf("%*s", width, s)
}
