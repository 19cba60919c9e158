package domain

import (
	"errors"
	"fmt"
)

// WorkspaceErrorKind classifies operational failures against the local
// repository and its tooling.
type WorkspaceErrorKind int

const (
	RefNotFound WorkspaceErrorKind = iota // Ref does not resolve in the clone
	FetchFailed                           // Head could not be fetched (deleted branch, etc.)
	ToolFailure                           // Unexpected git failure, incl. per-invocation timeout
	IOFailure                             // Filesystem or process-level failure
)

func (k WorkspaceErrorKind) String() string {
	switch k {
	case RefNotFound:
		return "ref not found"
	case FetchFailed:
		return "fetch failed"
	case ToolFailure:
		return "tool failure"
	case IOFailure:
		return "io failure"
	default:
		return "unknown"
	}
}

// WorkspaceError represents a failed workspace operation.
type WorkspaceError struct {
	Kind WorkspaceErrorKind
	Op   string // git operation, e.g. "merge", "fetch"
	Ref  string // ref involved, may be empty
	Err  error  // underlying cause, may be nil
}

func (e *WorkspaceError) Error() string {
	msg := fmt.Sprintf("git %s: %s", e.Op, e.Kind)
	if e.Ref != "" {
		msg = fmt.Sprintf("git %s %s: %s", e.Op, e.Ref, e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WorkspaceError) Unwrap() error {
	return e.Err
}

// NewWorkspaceError creates a WorkspaceError for the given operation.
func NewWorkspaceError(kind WorkspaceErrorKind, op, ref string, err error) *WorkspaceError {
	return &WorkspaceError{Kind: kind, Op: op, Ref: ref, Err: err}
}

func isWorkspaceKind(err error, kind WorkspaceErrorKind) bool {
	var wsErr *WorkspaceError
	return errors.As(err, &wsErr) && wsErr.Kind == kind
}

// IsRefNotFound checks if an error is or wraps a RefNotFound workspace error.
func IsRefNotFound(err error) bool { return isWorkspaceKind(err, RefNotFound) }

// IsFetchFailed checks if an error is or wraps a FetchFailed workspace error.
// Fetch failures are recoverable at the builder level, not fatal to the run.
func IsFetchFailed(err error) bool { return isWorkspaceKind(err, FetchFailed) }

// IsToolFailure checks if an error is or wraps a ToolFailure workspace error.
func IsToolFailure(err error) bool { return isWorkspaceKind(err, ToolFailure) }

// IsIOFailure checks if an error is or wraps an IOFailure workspace error.
func IsIOFailure(err error) bool { return isWorkspaceKind(err, IOFailure) }

// DuplicatePRError reports two input PRs sharing one identifier. Fatal for
// the whole run: no meaningful matrix exists over duplicate axes.
type DuplicatePRError struct {
	Number int
}

func (e *DuplicatePRError) Error() string {
	return fmt.Sprintf("duplicate pull request #%d in input", e.Number)
}

// IsDuplicatePR checks if an error is or wraps a DuplicatePRError.
func IsDuplicatePR(err error) bool {
	var dupErr *DuplicatePRError
	return errors.As(err, &dupErr)
}

// ErrNoPullRequests is returned when the input PR set is empty.
var ErrNoPullRequests = errors.New("no pull requests to compare")
