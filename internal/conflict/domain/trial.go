package domain

import "fmt"

// Outcome classifies a single pairwise merge trial.
type Outcome int

const (
	OutcomeClean    Outcome = iota // Both PRs combine without conflict
	OutcomeConflict                // Textual conflict between the two PRs
	OutcomeError                   // Pair could not be evaluated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClean:
		return "clean"
	case OutcomeConflict:
		return "conflict"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// MergeOutcome is the result of one merge attempt inside a workspace.
// A conflict is an expected, first-class result, not an error.
type MergeOutcome struct {
	Conflicted bool
	Files      []string // conflicting paths, sorted
	Diff       string   // unified diff of the first conflicted file's sides, may be empty
}

// PairKey identifies an unordered pair of PRs. Lo < Hi always holds.
type PairKey struct {
	Lo, Hi int
}

// NewPairKey normalises two PR numbers into a canonical unordered key.
func NewPairKey(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// MergeTrialResult is the classified outcome for one unordered pair of PRs.
// Created by the prober, consumed by the matrix builder; immutable.
type MergeTrialResult struct {
	Pair    PairKey
	Outcome Outcome
	Files   []string // conflicting paths when Outcome == OutcomeConflict
	Detail  string   // conflict diff or error diagnostic
}

// ErrorTrial builds an ERROR result for a pair that could not be evaluated.
func ErrorTrial(a, b int, format string, args ...any) MergeTrialResult {
	return MergeTrialResult{
		Pair:    NewPairKey(a, b),
		Outcome: OutcomeError,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// CountByOutcome returns counts of trial results grouped by outcome.
func CountByOutcome(results []MergeTrialResult) (clean, conflict, errored int) {
	for _, r := range results {
		switch r.Outcome {
		case OutcomeClean:
			clean++
		case OutcomeConflict:
			conflict++
		case OutcomeError:
			errored++
		}
	}
	return
}
