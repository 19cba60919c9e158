package domain

import "sort"

// Availability records whether a PR passed the precondition checks
// (fetchable, applies cleanly onto the base) and so took part in
// pairwise probing.
type Availability int

const (
	Viable Availability = iota
	Unavailable
)

func (a Availability) String() string {
	if a == Unavailable {
		return "unavailable"
	}
	return "viable"
}

// ConflictMatrix is the symmetric relation over all input PRs. Cell (i,j)
// with i != j holds the trial result for that unordered pair; the diagonal
// is excluded. Built incrementally by the matrix builder and treated as
// read-only once returned.
type ConflictMatrix struct {
	numbers      []int // ascending
	availability map[int]Availability
	reasons      map[int]string
	cells        map[PairKey]MergeTrialResult
}

// NewConflictMatrix creates an empty matrix over the given PR numbers.
// Every PR starts out viable with no cells populated.
func NewConflictMatrix(numbers []int) *ConflictMatrix {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)

	m := &ConflictMatrix{
		numbers:      sorted,
		availability: make(map[int]Availability, len(sorted)),
		reasons:      make(map[int]string),
		cells:        make(map[PairKey]MergeTrialResult),
	}
	for _, n := range sorted {
		m.availability[n] = Viable
	}
	return m
}

// Record stores a trial result for its pair, both orientations at once.
func (m *ConflictMatrix) Record(r MergeTrialResult) {
	m.cells[r.Pair] = r
}

// MarkUnavailable flags a PR that failed precondition checks and records why.
func (m *ConflictMatrix) MarkUnavailable(number int, reason string) {
	m.availability[number] = Unavailable
	m.reasons[number] = reason
}

// Numbers returns the PR numbers on both axes, ascending.
func (m *ConflictMatrix) Numbers() []int {
	out := make([]int, len(m.numbers))
	copy(out, m.numbers)
	return out
}

// At returns the trial result for the unordered pair (a, b).
// At(a, b) == At(b, a) by construction. The second return is false for
// the diagonal and for pairs that were never evaluated.
func (m *ConflictMatrix) At(a, b int) (MergeTrialResult, bool) {
	if a == b {
		return MergeTrialResult{}, false
	}
	r, ok := m.cells[NewPairKey(a, b)]
	return r, ok
}

// Availability reports whether the PR took part in pairwise probing.
func (m *ConflictMatrix) Availability(number int) Availability {
	return m.availability[number]
}

// UnavailableReason returns the recorded precondition failure for a PR,
// or "" if it is viable.
func (m *ConflictMatrix) UnavailableReason(number int) string {
	return m.reasons[number]
}

// Results returns every recorded trial in canonical pair order.
func (m *ConflictMatrix) Results() []MergeTrialResult {
	out := make([]MergeTrialResult, 0, len(m.cells))
	for i, a := range m.numbers {
		for _, b := range m.numbers[i+1:] {
			if r, ok := m.cells[NewPairKey(a, b)]; ok {
				out = append(out, r)
			}
		}
	}
	return out
}

// Complete reports whether every off-diagonal pair has exactly one trial.
func (m *ConflictMatrix) Complete() bool {
	n := len(m.numbers)
	return len(m.cells) == n*(n-1)/2
}

// ConflictCount returns the number of conflicting pairs.
func (m *ConflictMatrix) ConflictCount() int {
	_, conflicts, _ := CountByOutcome(m.Results())
	return conflicts
}
