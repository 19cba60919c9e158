// Package linediff computes unified line diffs using go-difflib.
package linediff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Adapter produces unified diffs for conflict diagnostics.
type Adapter struct{}

// New creates a new line-based diff adapter.
func New() *Adapter {
	return &Adapter{}
}

// ComputeDiff returns a unified diff between base and head with 3 context
// lines, labelled with the given names. Returns "" when the inputs are equal.
func (a *Adapter) ComputeDiff(baseName, headName string, base, head []byte) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(base)),
		B:        difflib.SplitLines(string(head)),
		FromFile: baseName,
		ToFile:   headName,
		Context:  3,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return ""
	}
	return strings.TrimSpace(text)
}
