package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestWorkspaceError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *WorkspaceError
		want string
	}{
		{
			name: "with ref and cause",
			err:  NewWorkspaceError(FetchFailed, "fetch", "feature/login", errors.New("exit status 128")),
			want: "git fetch feature/login: fetch failed: exit status 128",
		},
		{
			name: "without ref",
			err:  NewWorkspaceError(IOFailure, "clone", "", errors.New("no space left on device")),
			want: "git clone: io failure: no space left on device",
		},
		{
			name: "without cause",
			err:  NewWorkspaceError(RefNotFound, "checkout", "origin/main", nil),
			want: "git checkout origin/main: ref not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkspaceErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			pred: IsRefNotFound,
			want: false,
		},
		{
			name: "typed RefNotFound",
			err:  NewWorkspaceError(RefNotFound, "rev-parse", "origin/gone", nil),
			pred: IsRefNotFound,
			want: true,
		},
		{
			name: "wrapped FetchFailed",
			err:  fmt.Errorf("preparing PR: %w", NewWorkspaceError(FetchFailed, "fetch", "pr-7", nil)),
			pred: IsFetchFailed,
			want: true,
		},
		{
			name: "kind mismatch",
			err:  NewWorkspaceError(ToolFailure, "merge", "pr-7", nil),
			pred: IsFetchFailed,
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("permission denied"),
			pred: IsToolFailure,
			want: false,
		},
		{
			name: "wrapped IOFailure",
			err:  fmt.Errorf("workspace: %w", NewWorkspaceError(IOFailure, "clean", "", errors.New("disk error"))),
			pred: IsIOFailure,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsDuplicatePR(t *testing.T) {
	err := fmt.Errorf("validating input: %w", &DuplicatePRError{Number: 42})
	if !IsDuplicatePR(err) {
		t.Errorf("IsDuplicatePR(%v) = false, want true", err)
	}
	if IsDuplicatePR(errors.New("duplicate pull request #42 in input")) {
		t.Error("IsDuplicatePR matched on message text, want typed match only")
	}

	want := "duplicate pull request #42 in input"
	if got := (&DuplicatePRError{Number: 42}).Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
